package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP_RangeAndExpiry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 1000; i++ {
		code, expiresAt := GenerateOTP(now)

		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, OTPMin)
		assert.LessOrEqual(t, n, OTPMax)
		assert.Equal(t, 300*time.Second, expiresAt.Sub(now))
	}
}

func TestPhonePolicy(t *testing.T) {
	p := DefaultPhonePolicy()
	tests := []struct {
		phone string
		want  bool
	}{
		{"+911234567890", true},
		{"911234567890", false},
		{"+91123456789", false},
		{"+9112345678901", false},
		{"+91123456789a", false},
		{"+91 1234567890", false},
		{" +911234567890 ", false},
		{"+911234567890\n", false},
		{"\t+911234567890", false},
		{"+11234567890", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Valid(tt.phone))
		})
	}

	us := PhonePolicy{CountryCode: "1", Digits: 10}
	assert.True(t, us.Valid("+12025550123"))
	assert.False(t, us.Valid("+912025550123"))
}

func TestRegisterRequest_Validate(t *testing.T) {
	valid := RegisterRequest{User: "a", Password: "p", Phone: "+911234567890", Email: "a@x.com", VerificationMethod: "email"}
	require.NoError(t, valid.Validate(DefaultPhonePolicy()))

	missing := valid
	missing.Password = ""
	err := missing.Validate(DefaultPhonePolicy())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgFieldsRequired, err.Error())

	badPhone := valid
	badPhone.Phone = "1234567890"
	err = badPhone.Validate(DefaultPhonePolicy())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgInvalidPhone, err.Error())
}

func TestRegisterRequest_Normalize(t *testing.T) {
	r := RegisterRequest{User: " Ann ", Email: " A@X.com ", Phone: " +911234567890 ", VerificationMethod: " email "}
	r.Normalize()
	assert.Equal(t, "Ann", r.User)
	assert.Equal(t, "a@x.com", r.Email)
	assert.Equal(t, " +911234567890 ", r.Phone)
	assert.Equal(t, " email ", r.VerificationMethod)

	err := r.Validate(DefaultPhonePolicy())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgInvalidPhone, err.Error())
}

func TestVerifyRequest_PaddedPhoneRejected(t *testing.T) {
	r := VerifyRequest{Phone: "+911234567890\n", Email: "a@x.com", OTP: "123456"}
	r.Normalize()
	err := r.Validate(DefaultPhonePolicy())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, MsgInvalidPhone, err.Error())
}

func TestVerifyRequest_UnmarshalOTP(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"otp":"123456"}`, "123456"},
		{"number", `{"otp":123456}`, "123456"},
		{"null", `{"otp":null}`, ""},
		{"missing", `{"phone":"+911234567890","email":"a@x.com"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r VerifyRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			assert.Equal(t, tt.want, r.OTP)
		})
	}

	var r VerifyRequest
	require.NoError(t, json.Unmarshal([]byte(`{"phone":"+911234567890","email":"a@x.com","otp":654321}`), &r))
	assert.Equal(t, VerifyRequest{Phone: "+911234567890", Email: "a@x.com", OTP: "654321"}, r)

	assert.Error(t, json.Unmarshal([]byte(`{"otp":true}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`{"otp":{}}`), &r))
}

func TestVerifyRequest_Validate(t *testing.T) {
	r := VerifyRequest{Phone: "+911234567890", Email: "a@x.com", OTP: "123456"}
	require.NoError(t, r.Validate(DefaultPhonePolicy()))

	r.Phone = "+91123"
	assert.ErrorIs(t, r.Validate(DefaultPhonePolicy()), ErrValidation)

	r = VerifyRequest{Phone: "+911234567890", Email: "a@x.com"}
	assert.ErrorIs(t, r.Validate(DefaultPhonePolicy()), ErrValidation)
}

func TestAccount_CodeChecks(t *testing.T) {
	now := time.Now()
	code := "123456"
	exp := now.Add(time.Minute)
	a := &Account{OTPCode: &code, OTPExpiresAt: &exp}

	assert.True(t, a.CodeMatches("123456"))
	assert.False(t, a.CodeMatches("654321"))
	assert.False(t, a.CodeExpired(now))
	assert.False(t, a.CodeExpired(exp))
	assert.True(t, a.CodeExpired(exp.Add(time.Nanosecond)))

	cleared := &Account{}
	assert.False(t, cleared.CodeMatches(""))
	assert.True(t, cleared.CodeExpired(now))
}

func TestError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("smtp down")
	err := fmt.Errorf("dispatch: %w", WrapError(ErrDeliveryFailure, "smtp down", cause))

	assert.ErrorIs(t, err, ErrDeliveryFailure)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrValidation)

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "smtp down", de.Message)
}
