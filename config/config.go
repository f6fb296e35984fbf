package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"eventra/model"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

var loadEnvOnce sync.Once

func loadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, using process environment")
		}
	})
}

// Config returns the value of a single environment key, reading .env first.
func Config(key string) string {
	loadEnv()
	return os.Getenv(key)
}

type Settings struct {
	Env       string
	Port      string
	ClientURL string
	JWTSecret string

	DBHost     string
	DBPort     uint64
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFrom      string
	MailTransport string

	TempDir   string
	AssetsDir string

	SnapshotCron       string
	BulkTicketsPerZone int
	SeedTicketsPerZone int

	AdminEmail    string
	AdminPassword string

	CloudinaryURL string
}

func (s *Settings) IsProduction() bool {
	return s.Env == "production"
}

func (s *Settings) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		s.DBHost, s.DBPort, s.DBUser, s.DBPassword, s.DBName, s.DBSSLMode)
}

// Load reads the full application configuration.
func Load() (*Settings, error) {
	loadEnv()

	s := &Settings{
		Env:           getOr("APP_ENV", "development"),
		Port:          getOr("PORT", "5000"),
		ClientURL:     getOr("CLIENT_URL", "http://localhost:5173"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		DBHost:        getOr("DB_HOST", "localhost"),
		DBUser:        getOr("DB_USER", "postgres"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getOr("DB_NAME", "eventra"),
		DBSSLMode:     getOr("DB_SSLMODE", "disable"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
		MailTransport: strings.ToLower(getOr("MAIL_TRANSPORT", "gomail")),
		TempDir:       getOr("TEMP_DIR", "temp"),
		AssetsDir:     getOr("ASSETS_DIR", "assets"),
		SnapshotCron:  getOr("SNAPSHOT_CRON", "*/15 * * * *"),
		AdminEmail:    strings.ToLower(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
	}

	var err error
	if s.DBPort, err = strconv.ParseUint(getOr("DB_PORT", "5432"), 10, 32); err != nil {
		return nil, fmt.Errorf("failed to parse DB_PORT: %w", err)
	}
	if s.RedisDB, err = atoiOr("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if s.SMTPPort, err = atoiOr("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if s.BulkTicketsPerZone, err = atoiOr("BULK_TICKETS_PER_ZONE", 1); err != nil {
		return nil, err
	}
	if s.SeedTicketsPerZone, err = atoiOr("SEED_TICKETS_PER_ZONE", 0); err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	if s.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if s.SnapshotCron != "" {
		if _, err := cron.ParseStandard(s.SnapshotCron); err != nil {
			return fmt.Errorf("invalid SNAPSHOT_CRON %q: %w", s.SnapshotCron, err)
		}
	}
	if s.MailTransport != "gomail" && s.MailTransport != "email" {
		return fmt.Errorf("MAIL_TRANSPORT must be gomail or email, got %q", s.MailTransport)
	}
	if s.BulkTicketsPerZone < 0 || s.SeedTicketsPerZone < 0 {
		return fmt.Errorf("ticket counts must not be negative")
	}
	if s.BulkTicketsPerZone > model.MaxBulkPerZone {
		return fmt.Errorf("BULK_TICKETS_PER_ZONE must be at most %d", model.MaxBulkPerZone)
	}
	return nil
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func atoiOr(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}
