package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	apperrors "stocketl/internal/errors"
	"stocketl/internal/validator"
)

// Config holds the static configuration of one pipeline invocation.
// It is read once at startup and never reloaded.
type Config struct {
	Env string `envconfig:"ENV" default:"development" validate:"app_env"`

	// Database
	DBDriver   string `envconfig:"DB_DRIVER" default:"sqlite" validate:"db_driver"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"stocketl"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"stocketl"`
	DBName     string `envconfig:"DB_NAME" default:"stocks" validate:"required"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Extract
	FilesPath string `envconfig:"FILES_PATH" default:"data" validate:"required"`

	// Load
	LoadBatchSize  int  `envconfig:"LOAD_BATCH_SIZE" default:"500" validate:"gt=0"`
	LoadAtomic     bool `envconfig:"LOAD_ATOMIC" default:"true"`
	MigrateOnStart bool `envconfig:"MIGRATE_ON_START" default:"true"`

	// Metrics
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL" validate:"omitempty,url"`
}

// Load loads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration values against their declared rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.Wrap(apperrors.ErrConfig, fmt.Errorf("validate config: %w", err))
	}
	return nil
}
