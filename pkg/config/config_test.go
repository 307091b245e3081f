package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Registration.MaxPendingAttempts != 3 {
		t.Fatalf("expected 3 pending attempts, got %d", cfg.Registration.MaxPendingAttempts)
	}
	if cfg.Registration.PhoneCountryCode != "91" || cfg.Registration.PhoneDigits != 10 {
		t.Fatalf("unexpected phone policy: +%s/%d", cfg.Registration.PhoneCountryCode, cfg.Registration.PhoneDigits)
	}
	if cfg.Auth.CookieName != "token" {
		t.Fatalf("expected token cookie, got %q", cfg.Auth.CookieName)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MAX_PENDING_ATTEMPTS", "5")
	t.Setenv("PHONE_COUNTRY_CODE", "1")
	t.Setenv("JWT_EXPIRE", "2h")
	t.Setenv("FRONTEND_URL", "https://a.example, ,https://b.example")
	t.Setenv("SMS_DEV_MODE", "false")

	cfg := Load()

	if cfg.Registration.MaxPendingAttempts != 5 {
		t.Fatalf("expected 5, got %d", cfg.Registration.MaxPendingAttempts)
	}
	if cfg.Registration.PhoneCountryCode != "1" {
		t.Fatalf("expected country code 1, got %q", cfg.Registration.PhoneCountryCode)
	}
	if cfg.Auth.SessionTTL != 2*time.Hour {
		t.Fatalf("expected 2h, got %s", cfg.Auth.SessionTTL)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.SMS.DevMode {
		t.Fatal("expected SMS dev mode off")
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("PHONE_DIGITS", "ten")
	t.Setenv("IDENTITY_LOCK_WAIT", "soon")

	cfg := Load()

	if cfg.Registration.PhoneDigits != 10 {
		t.Fatalf("expected fallback 10, got %d", cfg.Registration.PhoneDigits)
	}
	if cfg.Registration.LockWait != 3*time.Second {
		t.Fatalf("expected fallback 3s, got %s", cfg.Registration.LockWait)
	}
}
