package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Business  BusinessConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig picks the RecordStore implementation.
type StoreConfig struct {
	Backend  string
	SeedData bool
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type SchedulerConfig struct {
	ReminderSpec       string
	OverdueSpec        string
	Timezone           string
	ReminderWindowDays int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type BusinessConfig struct {
	UpcomingLimit  int
	OverduePenalty float64
}

type HealthConfig struct {
	Timeout time.Duration
}

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// values already in the environment win over .env
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(v.GetString("STORE_BACKEND")),
			SeedData: v.GetBool("SEED_SAMPLE_DATA"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("DATABASE_URL"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DATABASE_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Addr:      v.GetString("REDIS_ADDR"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
		},
		Scheduler: SchedulerConfig{
			ReminderSpec:       v.GetString("SCHEDULER_REMINDER_SPEC"),
			OverdueSpec:        v.GetString("SCHEDULER_OVERDUE_SPEC"),
			Timezone:           v.GetString("SCHEDULER_TIMEZONE"),
			ReminderWindowDays: v.GetInt("SCHEDULER_REMINDER_WINDOW_DAYS"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Business: BusinessConfig{
			UpcomingLimit:  v.GetInt("UPCOMING_PAYMENTS_LIMIT"),
			OverduePenalty: v.GetFloat64("OVERDUE_PENALTY"),
		},
		Health: HealthConfig{
			Timeout: v.GetDuration("HEALTH_CHECK_TIMEOUT"),
		},
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = defaultLogFormat(cfg)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("SEED_SAMPLE_DATA", false)
	v.SetDefault("DATABASE_URL", "file:emi-tracker.db?_foreign_keys=on")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "emi-tracker")
	v.SetDefault("SCHEDULER_REMINDER_SPEC", "0 8 * * *")
	v.SetDefault("SCHEDULER_OVERDUE_SPEC", "30 8 * * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("SCHEDULER_REMINDER_WINDOW_DAYS", 7)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPCOMING_PAYMENTS_LIMIT", 5)
	v.SetDefault("OVERDUE_PENALTY", 5)
	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// defaultLogFormat is console output while developing and JSON everywhere else.
func defaultLogFormat(c *Config) string {
	if c.IsDevelopment() {
		return "console"
	}
	return "json"
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	case BackendSQLite, BackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, sqlite, postgres, redis, got %q", c.Store.Backend)
	}

	if c.IsProduction() && c.Store.SeedData {
		return fmt.Errorf("SEED_SAMPLE_DATA must be false in production")
	}

	if c.Store.Backend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required for the redis backend")
	}

	if c.Business.UpcomingLimit <= 0 {
		return fmt.Errorf("UPCOMING_PAYMENTS_LIMIT must be greater than 0")
	}

	if c.Business.OverduePenalty < 0 {
		return fmt.Errorf("OVERDUE_PENALTY must not be negative")
	}

	if c.Scheduler.ReminderWindowDays < 0 {
		return fmt.Errorf("SCHEDULER_REMINDER_WINDOW_DAYS must not be negative")
	}

	// Validate cron specs
	if _, err := cron.ParseStandard(c.Scheduler.ReminderSpec); err != nil {
		return fmt.Errorf("SCHEDULER_REMINDER_SPEC must be a valid cron spec: %w", err)
	}
	if _, err := cron.ParseStandard(c.Scheduler.OverdueSpec); err != nil {
		return fmt.Errorf("SCHEDULER_OVERDUE_SPEC must be a valid cron spec: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if c.Health.Timeout <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a positive duration")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Address is the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// SQLDriver maps the store backend to its database/sql driver name.
func (c *Config) SQLDriver() string {
	if c.Store.Backend == BackendPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Location returns the scheduler timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
