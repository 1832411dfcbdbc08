// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Supported store drivers.
const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	AppPort   int    `env:"APP_PORT" envDefault:"8080"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api"`

	// Document store. MONGO_URL/DB_NAME are used by the mongo driver,
	// DATABASE_URL by the postgres driver.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURL    string `env:"MONGO_URL"`
	DBName      string `env:"DB_NAME"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Redis (notification queue, rate limiting)
	RedisURL string `env:"REDIS_URL,notEmpty"`

	// Notification relay
	EmailHostUser        string        `env:"EMAIL_HOST_USER"`
	EmailHostPassword    string        `env:"EMAIL_HOST_PASSWORD"`
	EmailRecipient       string        `env:"EMAIL_RECIPIENT"`
	SMTPHost             string        `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort             int           `env:"SMTP_PORT" envDefault:"587"`
	NotifyRequired       bool          `env:"NOTIFY_REQUIRED" envDefault:"false"`
	NotifySendTimeout    time.Duration `env:"NOTIFY_SEND_TIMEOUT" envDefault:"15s"`
	NotifyPublishTimeout time.Duration `env:"NOTIFY_PUBLISH_TIMEOUT" envDefault:"500ms"`

	// Notification worker. NOTIFY_CLAIM_IDLE must exceed the longest time a
	// batch can spend sending, otherwise in-flight messages get reclaimed.
	NotifyBatchSize     int           `env:"NOTIFY_BATCH_SIZE" envDefault:"10"`
	NotifyClaimInterval time.Duration `env:"NOTIFY_CLAIM_INTERVAL" envDefault:"30s"`
	NotifyClaimIdle     time.Duration `env:"NOTIFY_CLAIM_IDLE" envDefault:"5m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Contact form rate limiting (per client IP)
	RateLimitContactEnabled   bool `env:"RATE_LIMIT_CONTACT_ENABLED" envDefault:"true"`
	RateLimitContactPerMinute int  `env:"RATE_LIMIT_CONTACT_PER_MINUTE" envDefault:"5"`
	RateLimitContactBurst     int  `env:"RATE_LIMIT_CONTACT_BURST" envDefault:"3"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	// Request body size limit in bytes (default 64KB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// Validation errors.
var (
	ErrUnknownStoreDriver   = errors.New("unknown store driver")
	ErrMissingStoreURL      = errors.New("store connection settings missing")
	ErrNotificationRequired = errors.New("notification is required but relay settings are incomplete")
	ErrInvalidNotifyWorker  = errors.New("invalid notification worker settings")
)

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// NotificationConfigured reports whether relay credentials and the
// operator recipient are all present.
func (c *Config) NotificationConfigured() bool {
	return c.EmailHostUser != "" && c.EmailHostPassword != "" && c.EmailRecipient != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks rules that span several fields.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMongo:
		if c.MongoURL == "" || c.DBName == "" {
			return fmt.Errorf("%w: MONGO_URL and DB_NAME are required for the mongo driver", ErrMissingStoreURL)
		}
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for the postgres driver", ErrMissingStoreURL)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreDriver, c.StoreDriver)
	}

	if c.NotifyRequired && !c.NotificationConfigured() {
		return ErrNotificationRequired
	}

	if c.NotifyBatchSize < 1 {
		return fmt.Errorf("%w: NOTIFY_BATCH_SIZE must be at least 1", ErrInvalidNotifyWorker)
	}
	if c.NotifyClaimInterval <= 0 {
		return fmt.Errorf("%w: NOTIFY_CLAIM_INTERVAL must be positive", ErrInvalidNotifyWorker)
	}
	if budget := time.Duration(c.NotifyBatchSize) * c.NotifySendTimeout; c.NotifyClaimIdle <= budget {
		return fmt.Errorf("%w: NOTIFY_CLAIM_IDLE (%s) must exceed NOTIFY_BATCH_SIZE x NOTIFY_SEND_TIMEOUT (%s)",
			ErrInvalidNotifyWorker, c.NotifyClaimIdle, budget)
	}

	return nil
}

// Load reads an optional .env file, parses environment variables and
// returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
