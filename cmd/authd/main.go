package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/harborlabs/harbor-idm/pkg/hashing"
	"github.com/harborlabs/harbor-idm/pkg/notification"
	"github.com/harborlabs/harbor-idm/pkg/totp"
	"github.com/harborlabs/harbor-idm/pkg/twofactor"
	twofactorapi "github.com/harborlabs/harbor-idm/pkg/twofactor/api"
	"github.com/harborlabs/harbor-idm/pkg/user"
)

type DbConfig struct {
	Host     string `env:"AUTH_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"AUTH_PG_PORT" env-default:"5432"`
	Database string `env:"AUTH_PG_DATABASE" env-default:"auth_db"`
	User     string `env:"AUTH_PG_USER" env-default:"auth"`
	Password string `env:"AUTH_PG_PASSWORD" env-default:"pwd"`
	Schema   string `env:"AUTH_PG_SCHEMA" env-default:"public"`
}

func (d DbConfig) toDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s,public",
		d.User, d.Password, d.Host, d.Port, d.Database, d.Schema)
}

type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     uint16 `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:"noreply@example.com"`
	Password string `env:"EMAIL_PASSWORD" env-default:"pwd"`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
}

type TwofaConfig struct {
	Issuer          string `env:"TWOFA_ISSUER" env-default:"harbor-idm"`
	Persistence     string `env:"TWOFA_PERSISTENCE" env-default:"postgres"`
	DataDir         string `env:"TWOFA_DATA_DIR" env-default:"./data"`
	SmsCodeTTL      string `env:"TWOFA_SMS_CODE_TTL" env-default:"10m"`
	BackupCodeCount int    `env:"TWOFA_BACKUP_CODE_COUNT" env-default:"10"`
}

type Config struct {
	Host         string `env:"HOST" env-default:"0.0.0.0"`
	Port         uint16 `env:"PORT" env-default:"4000"`
	JwtSecret    string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	DbConfig     DbConfig
	EmailConfig  EmailConfig
	TwilioConfig notification.TwilioConfig
	TwofaConfig  TwofaConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	// Load .env file if it exists (before reading environment variables)
	if err := godotenv.Load(); err == nil {
		slog.Info("Configuration loaded from .env file")
	}

	config := Config{}
	cleanenv.ReadEnv(&config)

	// Storage
	var pool *pgxpool.Pool
	switch config.TwofaConfig.Persistence {
	case "postgres", "postgresql":
		var err error
		pool, err = pgxpool.New(context.Background(), config.DbConfig.toDatabaseURL())
		if err != nil {
			slog.Error("Failed creating dbpool", "db", config.DbConfig.Database, "host", config.DbConfig.Host, "port", config.DbConfig.Port, "user", config.DbConfig.User, "error", err)
			os.Exit(-1)
		}
		defer pool.Close()
	}

	twofaRepo, err := twofactor.NewRepository(config.TwofaConfig.Persistence, twofactor.RepositoryConfig{
		Pool:    pool,
		DataDir: config.TwofaConfig.DataDir,
	})
	if err != nil {
		slog.Error("Failed creating two-factor repository", "persistence", config.TwofaConfig.Persistence, "error", err)
		os.Exit(-1)
	}

	var userRepo user.Repository
	if pool != nil {
		userRepo = user.NewPostgresRepository(pool)
	} else {
		userRepo = user.NewInMemoryRepository()
	}

	// Notification manager with email and SMS delivery
	notificationManager, err := notification.NewNotificationManagerWithOptions(
		notification.WithSMTP(notification.SMTPConfig{
			Host:     config.EmailConfig.Host,
			Port:     int(config.EmailConfig.Port),
			Username: config.EmailConfig.Username,
			Password: config.EmailConfig.Password,
			From:     config.EmailConfig.From,
			TLS:      config.EmailConfig.TLS,
		}),
		notification.WithTwilio(config.TwilioConfig),
		notification.WithDefaultTemplates(),
	)
	if err != nil {
		slog.Error("Failed initialize notification manager", "err", err)
		os.Exit(-1)
	}

	smsCodeTTL, err := time.ParseDuration(config.TwofaConfig.SmsCodeTTL)
	if err != nil {
		slog.Error("Invalid TWOFA_SMS_CODE_TTL", "value", config.TwofaConfig.SmsCodeTTL, "error", err)
		os.Exit(-1)
	}

	twofaService := twofactor.NewService(
		twofaRepo,
		userRepo,
		totp.NewGenerator(config.TwofaConfig.Issuer),
		hashing.NewBcryptHasher(0),
		twofactor.NewNotificationSmsSender(notificationManager),
		twofactor.WithSmsCodeTTL(smsCodeTTL),
		twofactor.WithBackupCodeCount(config.TwofaConfig.BackupCodeCount),
		twofactor.WithNotificationManager(notificationManager),
	)

	jwtAuth := jwtauth.New("HS256", []byte(config.JwtSecret), nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(jwtAuth))
		r.Use(jwtauth.Authenticator(jwtAuth))
		r.Mount("/api/2fa", twofactorapi.Routes(twofactorapi.NewHandler(twofaService)))
	})

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("Starting auth service", "addr", addr, "persistence", config.TwofaConfig.Persistence)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server failed", "error", err)
		os.Exit(-1)
	}
}
