package internal

import (
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestHTTPConfigPortBounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should fail validation")
	}

	cfg = NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("port above 65535 should fail validation")
	}
}

func TestSQLiteConfigRequiresPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty sqlite path should fail validation")
	}
}

func TestUpstreamConfigRequiresURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Upstream.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty upstream url should fail validation")
	}

	cfg = NewDefaultConfig()
	cfg.Upstream.URL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Error("malformed upstream url should fail validation")
	}
}

func TestUpstreamConfigPositiveKnobs(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Upstream.TimeoutSeconds = 0 },
		func(c *Config) { c.Upstream.MaxAttempts = 0 },
		func(c *Config) { c.Upstream.BackoffSeconds = 0 },
		func(c *Config) { c.Upstream.BreakerFailureThreshold = 0 },
		func(c *Config) { c.Upstream.BreakerCooldownSeconds = 0 },
	}
	for i, mutate := range cases {
		cfg := NewDefaultConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: zero value should fail validation", i)
		}
	}
}

func TestUpstreamDurations(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.Upstream.Timeout().Seconds() != 30 {
		t.Errorf("timeout = %v, want 30s", cfg.Upstream.Timeout())
	}
	if cfg.Upstream.Backoff().Seconds() != 1 {
		t.Errorf("backoff = %v, want 1s", cfg.Upstream.Backoff())
	}
	if cfg.Upstream.BreakerCooldown().Seconds() != 30 {
		t.Errorf("cooldown = %v, want 30s", cfg.Upstream.BreakerCooldown())
	}
}
