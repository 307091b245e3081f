package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diagnosis/luxsuv-accounts/pkg/auth"
	"github.com/diagnosis/luxsuv-accounts/pkg/config"
	"github.com/diagnosis/luxsuv-accounts/pkg/database"
	"github.com/diagnosis/luxsuv-accounts/pkg/events"
	"github.com/diagnosis/luxsuv-accounts/pkg/lock"
	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
	mw "github.com/diagnosis/luxsuv-accounts/pkg/middleware"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/handlers"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/mailer"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/repository"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/service"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/sms"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/migrations"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const serviceName = "accounts"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}
	cfg := config.Load()
	logger.SetDefault(logger.New(os.Stdout, os.Getenv("LOG_LEVEL")))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	var repo repository.AccountRepository
	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, pool, migrations.FS); err != nil {
				logger.Error("Failed to run migrations", "error", err)
				os.Exit(1)
			}
		}
		repo = repository.NewAccountRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory account store")
		repo = repository.NewMemoryRepository()
	}

	// Identity lock
	var locker lock.Locker
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		locker = lock.NewRedisLocker(rdb, cfg.Registration.LockTTL, cfg.Registration.LockWait)
	} else {
		locker = lock.NewLocalLocker(cfg.Registration.LockWait)
	}

	// Event bus
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := events.NewNATSPublisher(cfg.NATS.URL, serviceName)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		publisher = nc
	}
	defer publisher.Close()

	// Delivery
	dispatcher := service.NewDispatcher(newMailer(cfg.Email), newSMSSender(cfg.SMS), cfg.Email.SendTimeout)

	accounts := service.NewAccountService(
		repo,
		locker,
		dispatcher,
		auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.SessionTTL),
		publisher,
		service.Options{
			MaxPendingAttempts: cfg.Registration.MaxPendingAttempts,
			Phones: domain.PhonePolicy{
				CountryCode: cfg.Registration.PhoneCountryCode,
				Digits:      cfg.Registration.PhoneDigits,
			},
		},
	)

	sweeper := service.NewSweeper(repo, publisher, cfg.Registration.SweepInterval, cfg.Registration.PendingRetention)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	h := handlers.New(accounts, cfg.Auth)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName(serviceName))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(mw.CORS(cfg.CORS.AllowedOrigins))
	r.Use(mw.Health)

	r.Mount("/api/v1/user", h.Routes())
	r.Mount("/", h.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting accounts service", "port", cfg.Server.Port)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Accounts service error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down accounts service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Accounts service shutdown error", "error", err)
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("Pending verification emails abandoned", "error", err)
	}
	<-sweepDone
}

func newMailer(cfg config.EmailConfig) mailer.Sender {
	switch {
	case cfg.DevMode:
		return mailer.NewDevMailer()
	case cfg.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
}

func newSMSSender(cfg config.SMSConfig) sms.Sender {
	if cfg.DevMode {
		return sms.NewDevSender()
	}
	sender, err := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioServiceSID)
	if err != nil {
		logger.Error("Failed to configure SMS sender", "error", err)
		os.Exit(1)
	}
	return sender
}
