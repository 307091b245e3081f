package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type Account struct {
	ID           string     `json:"id"`
	Name         string     `json:"user"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	Verified     bool       `json:"accountVerified"`
	OTPCode      *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewAccount is the write model for a pending registration. The password
// must already be hashed.
type NewAccount struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	OTPCode      string
	OTPExpiresAt time.Time
}

type VerificationMethod string

const (
	MethodEmail VerificationMethod = "email"
	MethodPhone VerificationMethod = "phone"
)

type RegisterRequest struct {
	User               string `json:"user"`
	Password           string `json:"password"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
	VerificationMethod string `json:"verificationMethod"`
}

type VerifyRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VerifyResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// UnmarshalJSON accepts the code as a JSON string or a JSON number.
func (r *VerifyRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Phone string          `json:"phone"`
		Email string          `json:"email"`
		OTP   json.RawMessage `json:"otp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Phone, r.Email, r.OTP = raw.Phone, raw.Email, ""

	otp := bytes.TrimSpace(raw.OTP)
	switch {
	case len(otp) == 0 || bytes.Equal(otp, []byte("null")):
	case otp[0] == '"':
		return json.Unmarshal(otp, &r.OTP)
	default:
		var n json.Number
		if err := json.Unmarshal(otp, &n); err != nil {
			return err
		}
		r.OTP = n.String()
	}
	return nil
}

// Normalize methods. Phone and verification method are left as sent so
// that padded values fail validation.
func (r *RegisterRequest) Normalize() {
	r.User = strings.TrimSpace(r.User)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *VerifyRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.OTP = strings.TrimSpace(r.OTP)
}

// Validation methods
func (r *RegisterRequest) Validate(phones PhonePolicy) error {
	if r.User == "" || r.Password == "" || r.Phone == "" || r.Email == "" || r.VerificationMethod == "" {
		return NewError(ErrValidation, MsgFieldsRequired)
	}
	if !phones.Valid(r.Phone) {
		return NewError(ErrValidation, MsgInvalidPhone)
	}
	return nil
}

func (r *VerifyRequest) Validate(phones PhonePolicy) error {
	if r.Phone == "" || r.Email == "" || r.OTP == "" {
		return NewError(ErrValidation, MsgFieldsRequired)
	}
	if !phones.Valid(r.Phone) {
		return NewError(ErrValidation, MsgInvalidPhone)
	}
	return nil
}

// CodeMatches reports whether the stored one-time code equals code.
func (a *Account) CodeMatches(code string) bool {
	return a.OTPCode != nil && *a.OTPCode == code
}

// CodeExpired reports whether now is past the stored expiry. A missing
// expiry counts as expired.
func (a *Account) CodeExpired(now time.Time) bool {
	return a.OTPExpiresAt == nil || now.After(*a.OTPExpiresAt)
}
