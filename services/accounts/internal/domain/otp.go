package domain

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	OTPMin = 100000
	OTPMax = 999999
	OTPTTL = 5 * time.Minute
)

// GenerateOTP returns a 6-digit code and its expiry, exactly OTPTTL after now.
// The code only proves control of a channel, so math/rand is enough.
func GenerateOTP(now time.Time) (string, time.Time) {
	code := OTPMin + rand.IntN(OTPMax-OTPMin+1)
	return strconv.Itoa(code), now.Add(OTPTTL)
}
