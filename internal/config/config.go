package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// DatabaseURL wins over the DB_* parts when set.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST" default:"localhost"`
	DBPort      string `envconfig:"DB_PORT" default:"5432"`
	DBUser      string `envconfig:"DB_USER" default:"syncspace"`
	DBPassword  string `envconfig:"DB_PASSWORD" default:"syncspace_dev_password"`
	DBName      string `envconfig:"DB_NAME" default:"syncspace"`
	// StoreDriver is "postgres" or "memory".
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`

	JWTSecret  string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	ServiceKey string `envconfig:"SERVICE_KEY"`

	HubPaths    []string `envconfig:"HUB_PATHS" default:"/chatHub,/notificationHub"`
	CORSOrigins []string `envconfig:"CORS_ORIGIN" default:"http://localhost:4200"`

	HistoryDefaultLimit int    `envconfig:"HISTORY_DEFAULT_LIMIT" default:"50"`
	SendBufferSize      int    `envconfig:"SEND_BUFFER_SIZE" default:"256"`
	DeletePolicy        string `envconfig:"DELETE_POLICY" default:"silent"`

	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}
	switch c.DeletePolicy {
	case "silent", "strict":
	default:
		return fmt.Errorf("DELETE_POLICY must be silent or strict, got %q", c.DeletePolicy)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.SendBufferSize <= 0 {
		return fmt.Errorf("SEND_BUFFER_SIZE must be positive, got %d", c.SendBufferSize)
	}
	return nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
