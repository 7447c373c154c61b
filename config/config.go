package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
)

// Config holds importer settings read from the environment.
type Config struct {
	AppEnv   string `env:"APP_ENV" env-default:"dev"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	Store       string `env:"TOPICS_STORE" env-default:"dynamodb" env-description:"dynamodb or postgres"`
	TopicsTable string `env:"TOPICS_TABLE_NAME" env-default:"Topics"`
	CreateTable bool   `env:"TOPICS_CREATE_TABLE" env-default:"false"`

	AWSRegion   string `env:"AWS_REGION" env-default:"us-west-2"`
	AWSEndpoint string `env:"AWS_ENDPOINT"`

	DatabaseURL string `env:"DATABASE_URL"`

	HeaderMaxWords int    `env:"HEADER_MAX_WORDS" env-default:"5"`
	ManualPath     string `env:"MANUAL_PATH"`
}

// Load reads Config from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Store {
	case StoreDynamoDB:
		if c.TopicsTable == "" {
			errs = append(errs, errors.New("TOPICS_TABLE_NAME is required for dynamodb"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TOPICS_STORE %q", c.Store))
	}

	if c.HeaderMaxWords < 0 {
		errs = append(errs, fmt.Errorf("HEADER_MAX_WORDS must be >= 0, got %d", c.HeaderMaxWords))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps LOG_LEVEL values onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown LOG_LEVEL %q", s)
	}
}
