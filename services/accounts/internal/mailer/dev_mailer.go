package mailer

import (
	"context"

	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
)

// DevMailer logs messages instead of delivering them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) Send(ctx context.Context, to, subject, html string) error {
	logger.InfoContext(ctx, "[DEV MAIL] email",
		"to", to,
		"subject", subject,
		"html", html,
	)
	return nil
}
