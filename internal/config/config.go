package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config настройки сервиса, читаются из переменных окружения.
type Config struct {
	HTTPPort      string `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseURL   string `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr     string `envconfig:"REDIS_ADDR" required:"true"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	APIKey        string `envconfig:"API_KEY"`

	PushGatewayURL   string `envconfig:"PUSH_GATEWAY_URL" default:"http://localhost:9090"`
	PushQueue        string `envconfig:"PUSH_QUEUE" default:"push_tasks"`
	PushQueueBackend string `envconfig:"PUSH_QUEUE_BACKEND" default:"list"` // list (LPUSH/BRPOP) или asynq
	PushConcurrency  int    `envconfig:"PUSH_CONCURRENCY" default:"10"`
	PushMaxRetries   int    `envconfig:"PUSH_MAX_RETRIES" default:"3"`

	SearchRadiusMeters      float64       `envconfig:"SEARCH_RADIUS_METERS" default:"1000"`
	TimeWindowMinutes       int           `envconfig:"TIME_WINDOW_MINUTES" default:"10"`
	MinDistanceChangeMeters float64       `envconfig:"MIN_DISTANCE_CHANGE_METERS" default:"10"`
	MaxCacheAge             time.Duration `envconfig:"MAX_CACHE_AGE" default:"300s"`
	UserLocationTTL         time.Duration `envconfig:"USER_LOCATION_TTL" default:"900s"`
	NotificationCacheTTL    time.Duration `envconfig:"NOTIFICATION_CACHE_TTL" default:"900s"`
	DeliveryRecordTTL       time.Duration `envconfig:"DELIVERY_RECORD_TTL" default:"600s"`

	RateLimitWindow      time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"5s"`
	RateLimitMaxRequests int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"1"`

	StatsWindowMinutes int    `envconfig:"STATS_WINDOW_MINUTES" default:"30"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env vars: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет, что значения находятся в допустимых пределах.
func (c *Config) Validate() error {
	if c.SearchRadiusMeters <= 0 {
		return fmt.Errorf("SEARCH_RADIUS_METERS must be positive")
	}
	// Ноль сервисы трактуют как значение по умолчанию.
	if c.TimeWindowMinutes <= 0 {
		return fmt.Errorf("TIME_WINDOW_MINUTES must be positive")
	}
	if c.MinDistanceChangeMeters <= 0 {
		return fmt.Errorf("MIN_DISTANCE_CHANGE_METERS must be positive")
	}
	if c.MaxCacheAge <= 0 {
		return fmt.Errorf("MAX_CACHE_AGE must be positive")
	}
	// Redis EX принимает только целые секунды.
	for name, ttl := range map[string]time.Duration{
		"USER_LOCATION_TTL":      c.UserLocationTTL,
		"NOTIFICATION_CACHE_TTL": c.NotificationCacheTTL,
		"DELIVERY_RECORD_TTL":    c.DeliveryRecordTTL,
		"RATE_LIMIT_WINDOW":      c.RateLimitWindow,
	} {
		if ttl < time.Second {
			return fmt.Errorf("%s must be at least 1s", name)
		}
	}
	if c.RateLimitMaxRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be at least 1")
	}
	if c.StatsWindowMinutes < 1 {
		return fmt.Errorf("STATS_WINDOW_MINUTES must be at least 1")
	}
	switch c.PushQueueBackend {
	case "list", "asynq":
	default:
		return fmt.Errorf("PUSH_QUEUE_BACKEND must be one of: list, asynq")
	}
	if c.PushConcurrency < 1 {
		return fmt.Errorf("PUSH_CONCURRENCY must be at least 1")
	}
	if c.PushMaxRetries < 0 {
		return fmt.Errorf("PUSH_MAX_RETRIES must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}
	return nil
}

// TimeWindow окно релевантности события.
func (c *Config) TimeWindow() time.Duration {
	return time.Duration(c.TimeWindowMinutes) * time.Minute
}
