package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Catalog CatalogConfig
	DB      DBConfig
	Server  ServerConfig
	Log     LogConfig
}

// AppConfig holds web application secrets
type AppConfig struct {
	// SecretKey signs form tokens. It is intentionally not required at load
	// time; form submissions fail while it is unset.
	SecretKey string `envconfig:"SECRET_KEY"`
}

// CatalogConfig holds TMDB catalog configuration
type CatalogConfig struct {
	APIToken     string        `envconfig:"TMDB_API_TOKEN"`
	BaseURL      string        `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	ImageBaseURL string        `envconfig:"TMDB_IMAGE_BASE_URL" default:"https://image.tmdb.org/t/p/w500"`
	Language     string        `envconfig:"TMDB_LANGUAGE" default:"en-US"`
	Timeout      time.Duration `envconfig:"TMDB_TIMEOUT" default:"10s"`
	RateLimit    float64       `envconfig:"TMDB_RATE_LIMIT" default:"20"`
}

// DBConfig holds database configuration
type DBConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"movies.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"3306"`
	User     string `envconfig:"DB_USER" default:"root"`
	Password string `envconfig:"DB_PASSWORD"`
	Database string `envconfig:"DB_NAME" default:"movies"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"10"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// DSN returns the data source name for the configured driver
func (c *DBConfig) DSN() string {
	if c.Driver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Database)
	}
	return c.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg.App); err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Catalog); err != nil {
		return nil, fmt.Errorf("failed to load catalog config: %w", err)
	}

	if err := envconfig.Process("", &cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to load db config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	if err := envconfig.Process("", &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	return &cfg, nil
}

// Validate validates the configuration. Missing secrets are reported by
// Warnings instead, since requests that need them fail on their own.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case DriverMySQL:
		if c.DB.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the mysql driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverMySQL, c.DB.Driver)
	}
	if c.DB.MaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.Catalog.RateLimit <= 0 {
		return fmt.Errorf("TMDB_RATE_LIMIT must be positive")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if c.Log.Format != LogFormatJSON && c.Log.Format != LogFormatConsole {
		return fmt.Errorf("LOG_FORMAT must be %q or %q", LogFormatJSON, LogFormatConsole)
	}
	return nil
}

// Warnings lists settings that are unset but needed by some requests
func (c *Config) Warnings() []string {
	var warnings []string
	if c.App.SecretKey == "" {
		warnings = append(warnings, "SECRET_KEY is not set; form submissions will be rejected")
	}
	if c.Catalog.APIToken == "" {
		warnings = append(warnings, "TMDB_API_TOKEN is not set; catalog lookups will fail")
	}
	return warnings
}
