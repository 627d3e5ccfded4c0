package logsvc

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trezcool/ratiba/core"
)

type ZerologLogger struct {
	zl zerolog.Logger
}

var _ core.Logger = (*ZerologLogger)(nil)

// NewZerologLogger writes leveled JSON lines (or human-readable lines when pretty) to out (os.Stdout when nil).
// Unknown levels default to info.
func NewZerologLogger(out io.Writer, level string, pretty bool) *ZerologLogger {
	if out == nil {
		out = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	writer := out
	if pretty {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
	}
	return &ZerologLogger{
		zl: zerolog.New(writer).Level(lvl).With().Timestamp().Logger(),
	}
}

// NewNopLogger discards everything.
func NewNopLogger() *ZerologLogger {
	return &ZerologLogger{zl: zerolog.Nop()}
}

// expected fmt: msg | error, map[string]interface{}, anything printable
func (l ZerologLogger) log(evt *zerolog.Event, msg string, args []interface{}) {
	for i, arg := range args {
		switch v := arg.(type) {
		case error:
			evt = evt.Err(v)
		case map[string]interface{}:
			evt = evt.Fields(v)
		default:
			evt = evt.Interface(fmt.Sprintf("arg%d", i), v)
		}
	}
	evt.Msg(msg)
}

func (l ZerologLogger) Debug(msg string, args ...interface{}) { l.log(l.zl.Debug(), msg, args) }
func (l ZerologLogger) Info(msg string, args ...interface{})  { l.log(l.zl.Info(), msg, args) }
func (l ZerologLogger) Warn(msg string, args ...interface{})  { l.log(l.zl.Warn(), msg, args) }
func (l ZerologLogger) Error(msg string, args ...interface{}) { l.log(l.zl.Error(), msg, args) }
func (l ZerologLogger) Fatal(msg string, args ...interface{}) { l.log(l.zl.Fatal(), msg, args) }
