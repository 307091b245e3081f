package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/mailer"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/sms"
)

const verificationSubject = "Your verification code"

var verificationEmail = template.Must(template.New("verification").Parse(`<p>Dear User,</p>
<p>Thank you for registering with us! To complete your registration and verify your email address, please use the following code:</p>
<h2><strong>{{.Code}}</strong></h2>
<p>If you didn't request this verification, please ignore this email. Your email address will remain unverified.</p>
<p>If you need assistance, feel free to contact our support team.</p>
<br>
<p>Best regards,</p>
<p>Your Company Name</p>
<p>Your Company Contact Information</p>`))

func renderVerificationEmail(code string) (string, error) {
	var buf bytes.Buffer
	if err := verificationEmail.Execute(&buf, struct{ Code string }{code}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Dispatcher delivers codes over the requested channel. Email goes out in
// the background; SMS is sent before Dispatch returns.
type Dispatcher struct {
	email       mailer.Sender
	sms         sms.Sender
	sendTimeout time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(email mailer.Sender, texts sms.Sender, sendTimeout time.Duration) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &Dispatcher{email: email, sms: texts, sendTimeout: sendTimeout}
}

func (d *Dispatcher) Dispatch(ctx context.Context, method domain.VerificationMethod, code, email, phone string) (string, error) {
	switch method {
	case domain.MethodEmail:
		html, err := renderVerificationEmail(code)
		if err != nil {
			return "", internalError("render verification email", err)
		}
		d.sendEmail(ctx, email, html)
		return fmt.Sprintf("Verification code successfully sent on %s", email), nil

	case domain.MethodPhone:
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
		if err := d.sms.SendCode(sendCtx, phone, code); err != nil {
			logger.ErrorContext(ctx, "Failed to send verification SMS", "error", err, "phone", phone)
			return "", domain.WrapError(domain.ErrDeliveryFailure, domain.MsgDeliveryFailed, err)
		}
		return fmt.Sprintf("OTP sent on %s", phone), nil

	default:
		return "", domain.NewError(domain.ErrInvalidMethod, domain.MsgInvalidMethod)
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, to, html string) {
	// Detach from the request so the send outlives the response.
	bg := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(bg, d.sendTimeout)
		defer cancel()
		if err := d.email.Send(sendCtx, to, verificationSubject, html); err != nil {
			logger.ErrorContext(bg, "Failed to send verification email", "error", err, "to", to)
			return
		}
		logger.DebugContext(bg, "Verification email sent", "to", to)
	}()
}

// Wait blocks until background sends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
