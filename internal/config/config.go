package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the client's environment-driven settings.
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	APIBaseURL  string        `envconfig:"LINGO_API_URL" default:"http://127.0.0.1:8000"`
	HTTPTimeout time.Duration `envconfig:"LINGO_HTTP_TIMEOUT" default:"30s"`

	// TokenFile overrides where the bearer token is persisted. Empty means
	// the user config directory.
	TokenFile string `envconfig:"LINGO_TOKEN_FILE" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("LINGO_API_URL is required")
	}
	if c.HTTPTimeout < time.Second {
		return fmt.Errorf("LINGO_HTTP_TIMEOUT must be at least 1s")
	}
	return nil
}
