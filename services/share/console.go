package sharesvc

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/ratiba/core"
)

// ConsoleService prints share messages instead of delivering them.
type ConsoleService struct {
	out        io.Writer
	subjPrefix string
	logger     core.Logger

	wg   sync.WaitGroup
	mu   sync.Mutex
	sent []core.ShareMessage
}

var _ core.ShareService = (*ConsoleService)(nil)

func NewConsoleService(out io.Writer, appName string, logger core.Logger) *ConsoleService {
	return &ConsoleService{
		out:        out,
		subjPrefix: "[" + appName + "] ",
		logger:     logger,
	}
}

func (svc *ConsoleService) Share(messages ...*core.ShareMessage) {
	for _, msg := range messages {
		svc.wg.Add(1)
		go func(msg *core.ShareMessage) {
			defer svc.wg.Done()
			svc.share(msg)
		}(msg)
	}
}

// Wait blocks until every message handed to Share is printed.
func (svc *ConsoleService) Wait() {
	svc.wg.Wait()
}

func (svc *ConsoleService) share(msg *core.ShareMessage) {
	if !msg.HasRecipients() || !msg.HasContent() {
		svc.logger.Warn("share message dropped", map[string]interface{}{"subject": msg.Subject, "recipients": len(msg.To)})
		return
	}
	svc.print(*msg)
	svc.mu.Lock()
	svc.sent = append(svc.sent, *msg)
	svc.mu.Unlock()
}

func (svc *ConsoleService) print(msg core.ShareMessage) {
	if svc.out == nil {
		return
	}
	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", strings.Join(msg.To, ", "))
	_, _ = fmt.Fprint(body, "\r\n")
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.Body)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	_, _ = io.WriteString(svc.out, body.String())
}

// Sent returns a copy of the messages shared so far.
func (svc *ConsoleService) Sent() []core.ShareMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]core.ShareMessage(nil), svc.sent...)
}

type ConsoleServiceMock struct {
	*ConsoleService
}

// NewConsoleServiceMock returns a silent console service sharing synchronously.
func NewConsoleServiceMock(logger core.Logger) *ConsoleServiceMock {
	return &ConsoleServiceMock{
		ConsoleService: &ConsoleService{subjPrefix: "[test] ", logger: logger},
	}
}

func (svc *ConsoleServiceMock) Share(messages ...*core.ShareMessage) {
	for _, msg := range messages {
		// run synchronously
		svc.share(msg)
	}
}
