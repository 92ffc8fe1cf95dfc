package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/segyhp/cartera-engine/internal/vdo"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig
	Business  BusinessConfig
	Health    HealthConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	ReportTTL time.Duration
}

type SchedulerConfig struct {
	// CVSnapshotSpec is a six-field cron spec (with seconds).
	CVSnapshotSpec string
	Timezone       string
	Workers        int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type BusinessConfig struct {
	// Timezone in which business weeks start on Monday 00:00.
	Timezone                string
	DefaultVDOMode          string
	ChronologyAmountPerWeek string
	LeadCommissionRate      string
}

type HealthConfig struct {
	Timeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "30s")

	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_REPORT_TTL", "6h")

	v.SetDefault("SCHEDULER_CV_SNAPSHOT_SPEC", "0 30 0 * * MON")
	v.SetDefault("SCHEDULER_TIMEZONE", "America/Mexico_City")
	v.SetDefault("SCHEDULER_WORKERS", 8)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BUSINESS_TIMEZONE", "America/Mexico_City")
	v.SetDefault("VDO_DEFAULT_MODE", string(vdo.ModeCurrent))
	v.SetDefault("CHRONOLOGY_AMOUNT_PER_WEEK", "100")
	v.SetDefault("LEAD_COMMISSION_RATE", "0.10")

	v.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	// Try to read from .env file (optional)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = v.ReadInConfig()

	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("SERVER_PORT"),
			Host:            v.GetString("SERVER_HOST"),
			Env:             v.GetString("ENV"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:      v.GetString("REDIS_HOST"),
			Port:      v.GetString("REDIS_PORT"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			ReportTTL: v.GetDuration("REDIS_REPORT_TTL"),
		},
		Scheduler: SchedulerConfig{
			CVSnapshotSpec: v.GetString("SCHEDULER_CV_SNAPSHOT_SPEC"),
			Timezone:       v.GetString("SCHEDULER_TIMEZONE"),
			Workers:        v.GetInt("SCHEDULER_WORKERS"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Business: BusinessConfig{
			Timezone:                v.GetString("BUSINESS_TIMEZONE"),
			DefaultVDOMode:          v.GetString("VDO_DEFAULT_MODE"),
			ChronologyAmountPerWeek: v.GetString("CHRONOLOGY_AMOUNT_PER_WEEK"),
			LeadCommissionRate:      v.GetString("LEAD_COMMISSION_RATE"),
		},
		Health: HealthConfig{
			Timeout: v.GetDuration("HEALTH_CHECK_TIMEOUT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be greater than 0")
	}

	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if _, err := vdo.ParseMode(c.Business.DefaultVDOMode); err != nil {
		return fmt.Errorf("VDO_DEFAULT_MODE: %w", err)
	}

	perWeek, err := decimal.NewFromString(c.Business.ChronologyAmountPerWeek)
	if err != nil || !perWeek.IsPositive() {
		return fmt.Errorf("CHRONOLOGY_AMOUNT_PER_WEEK must be a positive decimal")
	}

	rate, err := decimal.NewFromString(c.Business.LeadCommissionRate)
	if err != nil || rate.IsNegative() {
		return fmt.Errorf("LEAD_COMMISSION_RATE must be a non-negative decimal")
	}

	if c.Scheduler.Workers <= 0 {
		return fmt.Errorf("SCHEDULER_WORKERS must be greater than 0")
	}

	// Six fields, seconds first, as the scheduler runs cron.WithSeconds()
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Scheduler.CVSnapshotSpec); err != nil {
		return fmt.Errorf("SCHEDULER_CV_SNAPSHOT_SPEC must be a valid cron spec: %w", err)
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

// Location returns the business timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SchedulerLocation returns the timezone the cron schedule is evaluated in.
func (c *Config) SchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDefaultVDOMode returns the VDO mode used when a request names none
func (c *Config) GetDefaultVDOMode() vdo.Mode {
	mode, _ := vdo.ParseMode(c.Business.DefaultVDOMode)
	return mode
}

// GetChronologyAmountPerWeek returns the principal per week used to cap open timelines
func (c *Config) GetChronologyAmountPerWeek() float64 {
	amount, _ := decimal.NewFromString(c.Business.ChronologyAmountPerWeek)
	return amount.InexactFloat64()
}

// GetLeadCommissionRate returns the lead commission rate as decimal
func (c *Config) GetLeadCommissionRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.LeadCommissionRate)
	return rate
}

// RedisAddr returns host:port of the redis server
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}
