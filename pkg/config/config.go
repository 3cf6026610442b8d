package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/corpcare/agentbooking/pkg/secrets"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Booking  BookingConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	AccessSecret string
	Issuer       string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// BookingConfig holds booking rules that operators may tune
type BookingConfig struct {
	MaxBulkSize         int
	DashboardWindowDays int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win. When
// VAULT_ENABLED is set, secrets from Vault are exported before reading.
func Load() (*Config, error) {
	_ = godotenv.Load()

	vault := secrets.ConfigFromEnv()
	ctx, cancel := context.WithTimeout(context.Background(), vault.Timeout)
	defer cancel()
	if _, err := secrets.Apply(ctx, vault, nil); err != nil {
		return nil, fmt.Errorf("failed to load secrets from vault: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Env:            getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "agent_booking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
			Issuer:       getEnv("JWT_ISSUER", "agent-booking"),
			AccessTTL:    getEnvAsDuration("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL:   getEnvAsDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		SMTP: SMTPConfig{
			Enabled:  getEnvAsBool("SMTP_ENABLED", false),
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@agent-booking.local"),
		},
		Booking: BookingConfig{
			MaxBulkSize:         getEnvAsInt("BOOKING_MAX_BULK_SIZE", 100),
			DashboardWindowDays: getEnvAsInt("DASHBOARD_WINDOW_DAYS", 30),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "agent-booking"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_ACCESS_SECRET must be set in production")
		}
		c.JWT.AccessSecret = "dev-insecure-secret"
	}
	if c.Booking.MaxBulkSize <= 0 {
		return fmt.Errorf("BOOKING_MAX_BULK_SIZE must be positive, got %d", c.Booking.MaxBulkSize)
	}
	if c.Booking.DashboardWindowDays <= 0 {
		return fmt.Errorf("DASHBOARD_WINDOW_DAYS must be positive, got %d", c.Booking.DashboardWindowDays)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
