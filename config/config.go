package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/ports"
)

// Config holds all application configuration.
type Config struct {
	// HTTP
	HTTPAddr               string `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeoutSeconds int    `envconfig:"SHUTDOWN_TIMEOUT_SECONDS" default:"5"`

	// Database
	DBPath string `envconfig:"DB_PATH" default:"./data/journal.db"`

	// Logging
	LogLevelName string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"console"`

	// Binance API, only needed for exchange imports
	APIKey    string `envconfig:"BINANCE_API_KEY"`
	SecretKey string `envconfig:"BINANCE_API_SECRET"`
	IsTestnet bool   `envconfig:"IS_TESTNET" default:"true"`

	// Journal defaults
	DefaultMarket string `envconfig:"DEFAULT_MARKET" default:"FUTURES"`

	// Derived after loading
	LogLevel        logger.LogLevel `ignored:"true"`
	ShutdownTimeout time.Duration   `ignored:"true"`
}

var knownLevels = map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "WARNING": true, "ERROR": true}

// LoadConfig loads configuration from the environment, reading a .env file first if present.
func LoadConfig() (*Config, error) {
	// A missing .env is fine, plain env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrConfigurationError, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []string

	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, "HTTP_ADDR must be set")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	if !knownLevels[strings.ToUpper(c.LogLevelName)] {
		errs = append(errs, fmt.Sprintf("unknown LOG_LEVEL %q", c.LogLevelName))
	}
	c.LogLevel = logger.ParseLevel(c.LogLevelName)

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, "LOG_FORMAT must be json or console")
	}

	if c.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}
	c.ShutdownTimeout = time.Duration(c.ShutdownTimeoutSeconds) * time.Second

	if strings.TrimSpace(c.DefaultMarket) == "" {
		errs = append(errs, "DEFAULT_MARKET must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: configuration validation failed: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}
	return nil
}

// HasBinanceCredentials reports whether both exchange keys are configured.
func (c *Config) HasBinanceCredentials() bool {
	return c.APIKey != "" && c.SecretKey != ""
}
