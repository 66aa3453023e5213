package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken  string
	LogLevel       string
	LogFormat      string
	Port           string
	Trigger        string
	StoreDriver    string
	StorePath      string
	DatabaseURL    string
	MigrationsPath string
}

// Load loads configuration from the environment. A .env file in the working
// directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text")),
		Port:           getEnvOrDefault("PORT", "8080"),
		Trigger:        strings.TrimPrefix(getEnvOrDefault("BOT_TRIGGER", "remind"), "/"),
		StoreDriver:    strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverFile)),
		StorePath:      getEnvOrDefault("STORE_PATH", "reminders.json"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
	}

	var result *multierror.Error
	if cfg.TelegramToken == "" {
		result = multierror.Append(result, fmt.Errorf("TELEGRAM_TOKEN environment variable is required"))
	}
	if cfg.Trigger == "" {
		result = multierror.Append(result, fmt.Errorf("BOT_TRIGGER must not be empty"))
	}

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		result = multierror.Append(result, fmt.Errorf("unknown LOG_FORMAT %q (want \"text\" or \"json\")", cfg.LogFormat))
	}

	switch cfg.StoreDriver {
	case StoreDriverFile:
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			result = multierror.Append(result, fmt.Errorf("DATABASE_URL environment variable is required when STORE_DRIVER=postgres"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", cfg.StoreDriver, StoreDriverFile, StoreDriverPostgres))
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
