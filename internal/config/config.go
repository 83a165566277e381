package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Business  BusinessConfig  `mapstructure:"business"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type AuthConfig struct {
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	TokenExpiry string `mapstructure:"TOKEN_EXPIRY"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	From     string `mapstructure:"SMTP_FROM"`
}

type SchedulerConfig struct {
	OverdueCron string `mapstructure:"SCHEDULER_OVERDUE_CRON"`
}

type BusinessConfig struct {
	AnnualRatePercent string `mapstructure:"ANNUAL_RATE_PERCENT"`
	MaxTermMonths     int    `mapstructure:"MAX_TERM_MONTHS"`
	DailyLimit        string `mapstructure:"DAILY_LIMIT"`
	MonthlyLimit      string `mapstructure:"MONTHLY_LIMIT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("TOKEN_EXPIRY", "8h")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM", "prestamos@prestasys.pe")
	viper.SetDefault("SCHEDULER_OVERDUE_CRON", "0 0 0 * * *")
	viper.SetDefault("ANNUAL_RATE_PERCENT", "10")
	viper.SetDefault("MAX_TERM_MONTHS", 60)
	viper.SetDefault("DAILY_LIMIT", "5000")
	viper.SetDefault("MONTHLY_LIMIT", "20000")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Business.MaxTermMonths <= 0 {
		return fmt.Errorf("MAX_TERM_MONTHS must be greater than 0")
	}

	if _, err := decimal.NewFromString(c.Business.AnnualRatePercent); err != nil {
		return fmt.Errorf("ANNUAL_RATE_PERCENT must be a valid decimal: %w", err)
	}

	if _, err := decimal.NewFromString(c.Business.DailyLimit); err != nil {
		return fmt.Errorf("DAILY_LIMIT must be a valid decimal: %w", err)
	}

	if _, err := decimal.NewFromString(c.Business.MonthlyLimit); err != nil {
		return fmt.Errorf("MONTHLY_LIMIT must be a valid decimal: %w", err)
	}

	if _, err := time.ParseDuration(c.Auth.TokenExpiry); err != nil {
		return fmt.Errorf("TOKEN_EXPIRY must be a valid duration: %w", err)
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

// GetAnnualRatePercent returns the fixed annual rate in percent points
func (c *Config) GetAnnualRatePercent() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.AnnualRatePercent)
	return rate
}

// GetDailyLimit returns the per-client daily lending ceiling
func (c *Config) GetDailyLimit() decimal.Decimal {
	limit, _ := decimal.NewFromString(c.Business.DailyLimit)
	return limit
}

// GetMonthlyLimit returns the per-client monthly lending ceiling
func (c *Config) GetMonthlyLimit() decimal.Decimal {
	limit, _ := decimal.NewFromString(c.Business.MonthlyLimit)
	return limit
}

// GetTokenExpiry returns the JWT session lifetime
func (c *Config) GetTokenExpiry() time.Duration {
	expiry, _ := time.ParseDuration(c.Auth.TokenExpiry)
	return expiry
}
