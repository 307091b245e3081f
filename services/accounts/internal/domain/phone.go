package domain

import "strings"

// PhonePolicy accepts numbers shaped "+<CountryCode><Digits digits>".
type PhonePolicy struct {
	CountryCode string
	Digits      int
}

func DefaultPhonePolicy() PhonePolicy {
	return PhonePolicy{CountryCode: "91", Digits: 10}
}

func (p PhonePolicy) Valid(phone string) bool {
	prefix := "+" + p.CountryCode
	if !strings.HasPrefix(phone, prefix) {
		return false
	}
	rest := phone[len(prefix):]
	if len(rest) != p.Digits {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}
