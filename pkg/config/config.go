package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	NATS         NATSConfig
	Auth         AuthConfig
	Registration RegistrationConfig
	Email        EmailConfig
	SMS          SMSConfig
	CORS         CORSConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL         string // empty selects the in-memory store
	MaxConns    int
	MinConns    int
	MaxLifetime time.Duration
	Migrate     bool
}

type RedisConfig struct {
	URL string // empty selects the in-process identity lock
}

type NATSConfig struct {
	URL string // empty disables event publishing
}

type AuthConfig struct {
	JWTSecret    string
	JWTIssuer    string
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool
}

type RegistrationConfig struct {
	MaxPendingAttempts int
	PhoneCountryCode   string
	PhoneDigits        int
	LockTTL            time.Duration
	LockWait           time.Duration
	SweepInterval      time.Duration
	PendingRetention   time.Duration
}

type EmailConfig struct {
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPFrom      string
	SMTPUseTLS    bool
	MailerSendKey string
	FromName      string
	SendTimeout   time.Duration
	DevMode       bool // log emails instead of sending
}

type SMSConfig struct {
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioServiceSID string
	DevMode          bool // log codes instead of sending
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8081"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", ""),
			MaxConns:    getInt("DB_MAX_CONNS", 10),
			MinConns:    getInt("DB_MIN_CONNS", 1),
			MaxLifetime: getDuration("DB_MAX_LIFETIME", time.Hour),
			Migrate:     getBool("DB_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET_KEY", "dev-only-secret-change-in-prod"),
			JWTIssuer:    getEnv("JWT_ISSUER", "luxsuv-accounts"),
			SessionTTL:   getDuration("JWT_EXPIRE", 7*24*time.Hour),
			CookieName:   getEnv("TOKEN_COOKIE_NAME", "token"),
			CookieSecure: getBool("TOKEN_COOKIE_SECURE", false),
		},
		Registration: RegistrationConfig{
			MaxPendingAttempts: getInt("MAX_PENDING_ATTEMPTS", 3),
			PhoneCountryCode:   getEnv("PHONE_COUNTRY_CODE", "91"),
			PhoneDigits:        getInt("PHONE_DIGITS", 10),
			LockTTL:            getDuration("IDENTITY_LOCK_TTL", 10*time.Second),
			LockWait:           getDuration("IDENTITY_LOCK_WAIT", 3*time.Second),
			SweepInterval:      getDuration("PENDING_SWEEP_INTERVAL", time.Hour),
			PendingRetention:   getDuration("PENDING_RETENTION", 24*time.Hour),
		},
		Email: EmailConfig{
			SMTPHost:      getEnv("SMTP_HOST", "localhost"),
			SMTPPort:      getInt("SMTP_PORT", 1025),
			SMTPUser:      getEnv("SMTP_USER", ""),
			SMTPPass:      getEnv("SMTP_PASS", ""),
			SMTPFrom:      getEnv("SMTP_FROM", "noreply@luxsuv.local"),
			SMTPUseTLS:    getBool("SMTP_USE_TLS", false),
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			FromName:      getEnv("MAIL_FROM_NAME", "LuxSUV"),
			SendTimeout:   getDuration("MAIL_SEND_TIMEOUT", 10*time.Second),
			DevMode:       getBool("EMAIL_DEV_MODE", true),
		},
		SMS: SMSConfig{
			TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioServiceSID: getEnv("TWILIO_SERVICE_SID", ""),
			DevMode:          getBool("SMS_DEV_MODE", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("FRONTEND_URL", []string{"http://localhost:5173"}),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getList splits a comma-separated variable, dropping empty entries.
func getList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
