package core

import "strings"

type (
	// ShareMessage is a plain-text digest handed to a share channel (WhatsApp, SMS, email..).
	ShareMessage struct {
		To      []string
		Subject string
		Body    string
	}

	// ShareService is any collaborator able to deliver share messages.
	ShareService interface {
		// Share delivers messages; delivery may happen asynchronously.
		Share(messages ...*ShareMessage)
	}
)

func (m *ShareMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *ShareMessage) HasContent() bool    { return strings.TrimSpace(m.Body) != "" }
