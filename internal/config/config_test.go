package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/radar")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.SearchRadiusMeters != 1000 {
		t.Errorf("Expected radius 1000, got %v", cfg.SearchRadiusMeters)
	}
	if cfg.TimeWindow() != 10*time.Minute {
		t.Errorf("Expected window 10m, got %v", cfg.TimeWindow())
	}
	if cfg.MinDistanceChangeMeters != 10 {
		t.Errorf("Expected min distance 10, got %v", cfg.MinDistanceChangeMeters)
	}
	if cfg.MaxCacheAge != 300*time.Second {
		t.Errorf("Expected max cache age 300s, got %v", cfg.MaxCacheAge)
	}
	if cfg.NotificationCacheTTL != 900*time.Second {
		t.Errorf("Expected notification TTL 900s, got %v", cfg.NotificationCacheTTL)
	}
	if cfg.DeliveryRecordTTL != 600*time.Second {
		t.Errorf("Expected delivery record TTL 600s, got %v", cfg.DeliveryRecordTTL)
	}
	if cfg.RateLimitWindow != 5*time.Second || cfg.RateLimitMaxRequests != 1 {
		t.Errorf("Unexpected rate limit defaults: %v / %d", cfg.RateLimitWindow, cfg.RateLimitMaxRequests)
	}
	if cfg.PushQueueBackend != "list" || cfg.PushMaxRetries != 3 {
		t.Errorf("Unexpected push defaults: %s / %d", cfg.PushQueueBackend, cfg.PushMaxRetries)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	// t.Setenv восстановит исходные значения после теста.
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("REDIS_ADDR")

	if _, err := Load(); err == nil {
		t.Error("Expected error when required variables are missing")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			SearchRadiusMeters:      1000,
			TimeWindowMinutes:       10,
			MinDistanceChangeMeters: 10,
			MaxCacheAge:             5 * time.Minute,
			UserLocationTTL:         15 * time.Minute,
			NotificationCacheTTL:    15 * time.Minute,
			DeliveryRecordTTL:       10 * time.Minute,
			RateLimitWindow:         5 * time.Second,
			RateLimitMaxRequests:    1,
			PushQueueBackend:        "list",
			PushConcurrency:         10,
			StatsWindowMinutes:      30,
			LogLevel:                "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero radius", func(c *Config) { c.SearchRadiusMeters = 0 }, true},
		{"negative window", func(c *Config) { c.TimeWindowMinutes = -1 }, true},
		{"zero window", func(c *Config) { c.TimeWindowMinutes = 0 }, true},
		{"zero min distance", func(c *Config) { c.MinDistanceChangeMeters = 0 }, true},
		{"sub-second ttl", func(c *Config) { c.NotificationCacheTTL = 500 * time.Millisecond }, true},
		{"zero max requests", func(c *Config) { c.RateLimitMaxRequests = 0 }, true},
		{"unknown queue backend", func(c *Config) { c.PushQueueBackend = "kafka" }, true},
		{"asynq backend", func(c *Config) { c.PushQueueBackend = "asynq" }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
