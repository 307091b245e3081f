package sms

import (
	"context"

	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
)

// Sender delivers a one-time code to a phone number.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// DevSender logs codes instead of texting them.
type DevSender struct{}

func NewDevSender() *DevSender {
	return &DevSender{}
}

func (DevSender) SendCode(ctx context.Context, phone, code string) error {
	logger.InfoContext(ctx, "[DEV SMS] verification code", "phone", phone, "code", code)
	return nil
}
