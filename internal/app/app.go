package app

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cradoe/verime/internal/auth"
	"github.com/cradoe/verime/internal/cache"
	"github.com/cradoe/verime/internal/config"
	"github.com/cradoe/verime/internal/env"
	"github.com/cradoe/verime/internal/errHandler"
	"github.com/cradoe/verime/internal/helper"
	"github.com/cradoe/verime/internal/repository"
	"github.com/cradoe/verime/internal/risk"
	"github.com/cradoe/verime/internal/smtp"
	"github.com/cradoe/verime/internal/stream"
	"github.com/cradoe/verime/internal/verification"
	"github.com/joho/godotenv"
)

// Essential services and resources are exposed to the application
// this makes it possible for methods to have access to these items as and when they need them
type Application struct {
	Config        config.Config
	DB            repository.Database
	Logger        *slog.Logger
	Mailer        *smtp.Mailer
	WG            sync.WaitGroup
	Kafka         *stream.KafkaStream
	Cache         *cache.Cache
	Lifecycle     *verification.Lifecycle
	Assessor      *risk.Assessor
	Authenticator *auth.Authenticator
	errorHandler  *errHandler.ErrorHandler
	helper        *helper.HelperRepository
}

func NewApplication(logger *slog.Logger) (*Application, error) {
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", "error", err)
	}

	var cfg config.Config

	// config values are loaded from the .env file
	// Default values are provided for these items and these should strictly be values for development mode only
	// make sure no production-level value is exposed as default value here
	cfg.BaseURL = env.GetString("BASE_URL", "http://localhost:4444")
	cfg.HttpPort = env.GetInt("HTTP_PORT", 4444)

	cfg.Db.Dsn = env.GetString("DB_DSN", "user:pass@localhost:5432/db")
	cfg.Db.Automigrate = env.GetBool("DB_AUTOMIGRATE", true)

	cfg.Jwt.SecretKey = env.GetString("JWT_SECRET_KEY", "ajf5nx3qmp6zquevllxocxqvyz42ypuo")

	// server errors won't be sent via email if the NOTIFICATIONS_EMAIL wasn't set in the .env file
	cfg.Notifications.Email = env.GetString("NOTIFICATIONS_EMAIL", "")

	cfg.Smtp.Host = env.GetString("SMTP_HOST", "example.smtp.host")
	cfg.Smtp.Port = env.GetInt("SMTP_PORT", 25)
	cfg.Smtp.Username = env.GetString("SMTP_USERNAME", "example_username")
	cfg.Smtp.Password = env.GetString("SMTP_PASSWORD", "pa55word")
	cfg.Smtp.From = env.GetString("SMTP_FROM", "Example Name <no_reply@example.org>")

	cfg.Otp.Length = env.GetInt("OTP_LENGTH", 6)
	cfg.Otp.ExpirySeconds = env.GetInt("OTP_EXPIRY_SECONDS", 300)
	cfg.Otp.EchoCodes = env.GetBool("OTP_ECHO_CODES", false)

	cfg.Auth.MaxLoginAttempts = env.GetInt("MAX_LOGIN_ATTEMPTS", 5)
	cfg.Auth.LockDurationSeconds = env.GetInt("LOCK_DURATION_SECONDS", 1800)

	cfg.Verification.ValidityDays = env.GetInt("VERIFICATION_VALIDITY_DAYS", 365)

	cfg.SweepIntervalSeconds = env.GetInt("SWEEP_INTERVAL_SECONDS", 300)

	cfg.KafkaServers = env.GetString("KAFKA_SERVERS", "localhost:9092")
	cfg.RedisServer = env.GetString("REDIS_SERVER", "localhost:6379")

	db, err := repository.New(cfg.Db.Dsn, cfg.Db.Automigrate)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	mailer, err := smtp.NewMailer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.Username, cfg.Smtp.Password, cfg.Smtp.From)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}

	errorHandler := errHandler.New(cfg.Notifications.Email, cfg.BaseURL, mailer, logger)

	kafkaStream := stream.New(cfg.KafkaServers)

	redisCache := cache.New(cfg.RedisServer, 0)

	app := &Application{
		Config:       cfg,
		DB:           db,
		Logger:       logger,
		Mailer:       mailer,
		Kafka:        kafkaStream,
		Cache:        redisCache,
		errorHandler: errorHandler,
	}

	app.helper = helper.New(&cfg.BaseURL, &app.WG, errorHandler)

	app.Lifecycle = verification.New(&verification.Lifecycle{
		VerificationRepo: db.Verification(),
		ActivityRepo:     db.Activity(),
		Cache:            redisCache,
		Stream:           kafkaStream,
		ValidityDays:     cfg.Verification.ValidityDays,
	})

	app.Assessor = risk.New(&risk.Assessor{
		ScreeningRepo:    db.Screening(),
		VerificationRepo: db.Verification(),
		ActivityRepo:     db.Activity(),
	})

	app.Authenticator = auth.New(&auth.Authenticator{
		UserRepo:         db.User(),
		OtpRepo:          db.Otp(),
		ActivityRepo:     db.Activity(),
		Stream:           kafkaStream,
		OtpLength:        cfg.Otp.Length,
		OtpExpirySeconds: cfg.Otp.ExpirySeconds,
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     time.Duration(cfg.Auth.LockDurationSeconds) * time.Second,
	})

	return app, nil
}
