package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Store backends selectable via RAW_STORE / CLEAN_SINK.
const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Simulation knobs.
	StartDate        string  `env:"START_DATE" envDefault:"2026-01-01"` // YYYY-MM-DD
	NumDays          int     `env:"NUM_DAYS" envDefault:"7"`
	NumUsers         int     `env:"NUM_USERS" envDefault:"300"`
	SignupRate       float64 `env:"SIGNUP_RATE" envDefault:"0.12"`
	DailyActiveRate  float64 `env:"DAILY_ACTIVE_RATE" envDefault:"0.35"`
	SessionsMin      int     `env:"SESSIONS_MIN" envDefault:"1"`
	SessionsMax      int     `env:"SESSIONS_MAX" envDefault:"3"`
	FeatureEventsMin int     `env:"FEATURE_EVENTS_MIN" envDefault:"1"`
	FeatureEventsMax int     `env:"FEATURE_EVENTS_MAX" envDefault:"8"`
	PurchaseRate     float64 `env:"PURCHASE_RATE" envDefault:"0.06"`
	CorruptionRate   float64 `env:"CORRUPTION_RATE" envDefault:"0.01"`
	DuplicateRate    float64 `env:"DUPLICATE_RATE" envDefault:"0.01"`
	Seed             int64   `env:"SEED" envDefault:"42"`

	// Storage.
	RawStore        string `env:"RAW_STORE" envDefault:"file"`  // file | redis
	CleanSink       string `env:"CLEAN_SINK" envDefault:"file"` // file | postgres
	RawEventsPath   string `env:"RAW_EVENTS_PATH" envDefault:"data/raw/events"`
	CleanEventsPath string `env:"CLEAN_EVENTS_PATH" envDefault:"data/clean/events"`
	RedisURL        string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisStreamKey  string `env:"REDIS_STREAM_KEY" envDefault:"raw_events"`
	PostgresURL     string `env:"POSTGRES_URL"`

	// Cleaning engine.
	EngineWorkers    int `env:"ENGINE_WORKERS" envDefault:"0"` // 0 = GOMAXPROCS
	EnginePartitions int `env:"ENGINE_PARTITIONS" envDefault:"8"`

	// Empty disables the /metrics endpoint.
	MetricsAddr string `env:"METRICS_ADDR"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if _, err := cfg.StartDay(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StartDay parses StartDate as UTC midnight.
func (c *Config) StartDay() (time.Time, error) {
	day, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid START_DATE %q: %w", c.StartDate, err)
	}
	return day.UTC(), nil
}
