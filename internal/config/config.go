// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Base URL of the deployment (e.g., https://threadline.example.com).
	// Creation links are rendered relative to this root.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Realm creation links expire this many days after issuance.
	CreationLinkValidityDays int `env:"CREATION_LINK_VALIDITY_DAYS" envDefault:"7"`

	// When true, anyone may create a realm without a creation link.
	OpenRealmCreation bool `env:"OPEN_REALM_CREATION" envDefault:"false"`

	// Root directory for webhook fixture files used by the admin tooling.
	WebhookFixtureRoot string `env:"WEBHOOK_FIXTURE_ROOT" envDefault:"fixtures"`

	// Secret used to sign replayed webhook fixtures. Optional; when empty,
	// fixture posts are sent unsigned.
	WebhookFixtureSecret string `env:"WEBHOOK_FIXTURE_SECRET" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for the public realm-creation endpoints
	RateLimitCreationEnabled bool `env:"RATE_LIMIT_CREATION_ENABLED" envDefault:"true"`
	RateLimitCreationRPS     int  `env:"RATE_LIMIT_CREATION_RPS" envDefault:"5"`
	RateLimitCreationBurst   int  `env:"RATE_LIMIT_CREATION_BURST" envDefault:"10"`

	// Request body size limit in bytes (default 64KB; forms only)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// CreationLinkValidity returns the validity window as a duration.
func (c *Config) CreationLinkValidity() time.Duration {
	return time.Duration(c.CreationLinkValidityDays) * 24 * time.Hour
}

// Validate performs sanity checks beyond what env parsing enforces.
func (c *Config) Validate() error {
	if c.CreationLinkValidityDays <= 0 {
		return fmt.Errorf("CREATION_LINK_VALIDITY_DAYS must be positive, got %d", c.CreationLinkValidityDays)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("BASE_URL must start with http:// or https://, got %q", c.BaseURL)
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
