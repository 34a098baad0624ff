package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	AuthGate AuthGateConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr              string   `env:"SESSIONGATE_ADDR" envDefault:":3000" validate:"required"`
	StaticDir         string   `env:"SESSIONGATE_STATIC_DIR" envDefault:"public" validate:"required"`
	ProtectedPrefixes []string `env:"SESSIONGATE_PROTECTED_PREFIXES" envDefault:"/dashboard,/onboarding" validate:"dive,startswith=/"`
}

// AuthGateConfig holds the hosted auth provider configuration
type AuthGateConfig struct {
	Issuer   string            `env:"AUTHGATE_ISSUER" validate:"required,url"`
	Audience string            `env:"AUTHGATE_AUDIENCE" envDefault:"app" validate:"required"`
	Keys     map[string]string `env:"AUTHGATE_KEYS"` // kid:secret,kid2:secret2
	BaseURL  string            `env:"AUTHGATE_BASE_URL" validate:"omitempty,url"`
	Timeout  time.Duration     `env:"AUTHGATE_TIMEOUT" envDefault:"5s" validate:"gt=0"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"` // json, console
}

// KeyBytes returns the signing keys in the form the provider expects.
func (c AuthGateConfig) KeyBytes() map[string][]byte {
	if len(c.Keys) == 0 {
		return nil
	}
	keys := make(map[string][]byte, len(c.Keys))
	for kid, secret := range c.Keys {
		keys[kid] = []byte(secret)
	}
	return keys
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if len(cfg.AuthGate.Keys) == 0 && cfg.AuthGate.BaseURL == "" {
		return nil, errors.New("invalid configuration: AUTHGATE_KEYS or AUTHGATE_BASE_URL is required")
	}

	return &cfg, nil
}
