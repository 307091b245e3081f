package domain

import "errors"

// Error kinds. Compare with errors.Is; the HTTP layer maps each kind to a
// status and code.
var (
	ErrValidation        = errors.New("validation error")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrTooManyAttempts   = errors.New("too many attempts")
	ErrNotFound          = errors.New("not found")
	ErrInvalidCode       = errors.New("invalid code")
	ErrCodeExpired       = errors.New("code expired")
	ErrInvalidMethod     = errors.New("invalid verification method")
	ErrDeliveryFailure   = errors.New("delivery failure")
	ErrInternal          = errors.New("internal error")
)

// Error pairs a kind with the message shown to the caller.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Messages returned to clients.
const (
	MsgFieldsRequired    = "All fields are required"
	MsgInvalidPhone      = "Invalid phone number"
	MsgAlreadyRegistered = "Phone or Email is already registered, Please try to log in"
	MsgTooManyAttempts   = "Registration attempts exceeded, Please try again after sometime"
	MsgUserNotFound      = "User not found"
	MsgInvalidOTP        = "Invalid OTP"
	MsgOTPExpired        = "OTP expired"
	MsgInvalidMethod     = "Invalid verification method"
	MsgDeliveryFailed    = "Failed to send OTP, Please try again later"
	MsgInternal          = "Something went wrong. Please try again later."
)
