package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/mailersend/mailersend-go"
)

var ErrNotConfigured = errors.New("mailersend not configured")

type MailerSendClient struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	enabled bool
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSendClient {
	m := &MailerSendClient{
		enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}

	if m.enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}

	return m
}

func (m *MailerSendClient) Send(ctx context.Context, to, subject, html string) error {
	if !m.enabled {
		return ErrNotConfigured
	}

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: strings.TrimSpace(to)}})
	msg.SetSubject(subject)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
