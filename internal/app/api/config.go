package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/lecturer-recruitment/internal/domains/enrollment/adapters/email"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port                   string        `env:"PORT" envDefault:"8080"`
	PostgresDSN            string        `env:"POSTGRES_DSN"`
	TemporalAddress        string        `env:"TEMPORAL_ADDRESS"`
	TemporalNamespace      string        `env:"TEMPORAL_NAMESPACE"`
	TemporalDisabled       bool          `env:"TEMPORAL_DISABLED"`
	TimeZone               string        `env:"TIMEZONE" envDefault:"Europe/Warsaw"`
	ReminderLeadHours      int           `env:"REMINDER_LEAD_HOURS" envDefault:"24"`
	ProjectionPollInterval time.Duration `env:"PROJECTION_POLL_INTERVAL" envDefault:"2s"`
	CommandRetryLimit      int           `env:"COMMAND_RETRY_LIMIT" envDefault:"3"`
	IdempotencyRetention   time.Duration `env:"IDEMPOTENCY_RETENTION" envDefault:"72h"`
	IdempotencyPurgeEvery  time.Duration `env:"IDEMPOTENCY_PURGE_INTERVAL" envDefault:"1h"`
	ShutdownTimeout        time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CatalogSeedFile        string        `env:"CATALOG_SEED_FILE"`
	SMTP                   SMTPConfig    `envPrefix:"SMTP_"`
}

// SMTPConfig is optional; an empty Addr selects the logging mailer.
type SMTPConfig struct {
	Addr     string `env:"ADDR"`
	From     string `env:"FROM"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.PostgresDSN = strings.TrimSpace(cfg.PostgresDSN)
	if strings.TrimSpace(cfg.TemporalAddress) == "" {
		cfg.TemporalAddress = client.DefaultHostPort
	}
	if strings.TrimSpace(cfg.TemporalNamespace) == "" {
		cfg.TemporalNamespace = client.DefaultNamespace
	}
	if cfg.ReminderLeadHours <= 0 {
		return Config{}, fmt.Errorf("REMINDER_LEAD_HOURS must be a positive integer")
	}
	if cfg.CommandRetryLimit <= 0 {
		return Config{}, fmt.Errorf("COMMAND_RETRY_LIMIT must be a positive integer")
	}
	if cfg.ProjectionPollInterval <= 0 {
		return Config{}, fmt.Errorf("PROJECTION_POLL_INTERVAL must be positive")
	}
	if cfg.IdempotencyRetention <= 0 || cfg.IdempotencyPurgeEvery <= 0 {
		return Config{}, fmt.Errorf("IDEMPOTENCY_RETENTION and IDEMPOTENCY_PURGE_INTERVAL must be positive")
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return Config{}, fmt.Errorf("TIMEZONE %q: %w", cfg.TimeZone, err)
	}
	if cfg.SMTP.Addr != "" && strings.TrimSpace(cfg.SMTP.From) == "" {
		return Config{}, fmt.Errorf("SMTP_FROM is required when SMTP_ADDR is set")
	}
	return cfg, nil
}

// ReminderLead converts the configured hours into a duration.
func (c Config) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadHours) * time.Hour
}

// ListenAddr is the address handed to the HTTP server.
func (c Config) ListenAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// MailRelay is the SMTP relay configuration handed to the mail adapter.
func (c Config) MailRelay() email.SMTPConfig {
	return email.SMTPConfig{
		Addr:     c.SMTP.Addr,
		From:     c.SMTP.From,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
	}
}
