package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Upstream UpstreamConfig    `yaml:"upstream"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Upstream.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port           int     `yaml:"port"`
	RateLimit      float64 `yaml:"rate_limit"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.RateLimit, validation.Required, validation.Min(float64(1))),
		validation.Field(&c.RateLimitBurst, validation.Required, validation.Min(1)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// UpstreamConfig holds the external recipe catalog client configuration.
//
// TimeoutSeconds bounds a whole fetch including retries. BackoffSeconds is
// the first retry delay; subsequent delays double.
type UpstreamConfig struct {
	URL                     string `yaml:"url"`
	TimeoutSeconds          int    `yaml:"timeout_seconds"`
	MaxAttempts             int    `yaml:"max_attempts"`
	BackoffSeconds          int    `yaml:"backoff_seconds"`
	BreakerFailureThreshold int    `yaml:"breaker_failure_threshold"`
	BreakerCooldownSeconds  int    `yaml:"breaker_cooldown_seconds"`
}

// Validate validates the upstream configuration.
func (c *UpstreamConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.TimeoutSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.BackoffSeconds, validation.Required, validation.Min(1)),
		validation.Field(&c.BreakerFailureThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.BreakerCooldownSeconds, validation.Required, validation.Min(1)),
	)
}

// Timeout returns the overall fetch deadline.
func (c *UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Backoff returns the initial retry backoff.
func (c *UpstreamConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffSeconds) * time.Second
}

// BreakerCooldown returns how long the circuit stays open after tripping.
func (c *UpstreamConfig) BreakerCooldown() time.Duration {
	return time.Duration(c.BreakerCooldownSeconds) * time.Second
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:           8080,
				RateLimit:      50,
				RateLimitBurst: 100,
			},
		},
		SQLite: SQLiteConfig{
			Path: "./ladle.db",
		},
		Upstream: UpstreamConfig{
			URL:                     "https://dummyjson.com/recipes",
			TimeoutSeconds:          30,
			MaxAttempts:             3,
			BackoffSeconds:          1,
			BreakerFailureThreshold: 5,
			BreakerCooldownSeconds:  30,
		},
	}
}
