package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

var ErrNotConfigured = errors.New("twilio not configured")

type verificationCreator interface {
	CreateVerification(serviceSid string, params *verify.CreateVerificationParams) (*verify.VerifyV2Verification, error)
}

// TwilioSender sends our own code through a Twilio Verify service, so the
// code checked at verification is the one we stored.
type TwilioSender struct {
	api        verificationCreator
	serviceSID string
}

func NewTwilioSender(accountSID, authToken, serviceSID string) (*TwilioSender, error) {
	if accountSID == "" || authToken == "" || serviceSID == "" {
		return nil, ErrNotConfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{api: client.VerifyV2, serviceSID: serviceSID}, nil
}

func (s *TwilioSender) SendCode(ctx context.Context, phone, code string) error {
	params := &verify.CreateVerificationParams{}
	params.SetTo(phone)
	params.SetChannel("sms")
	params.SetCustomCode(code)

	type result struct {
		v   *verify.VerifyV2Verification
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := s.api.CreateVerification(s.serviceSID, params)
		done <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		if r.v != nil && r.v.Status != nil && *r.v.Status == "canceled" {
			return fmt.Errorf("verification to %s was canceled", phone)
		}
		return nil
	}
}
