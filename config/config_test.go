package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/ports"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "./data/journal.db", cfg.DBPath)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.IsTestnet)
	assert.Equal(t, "FUTURES", cfg.DefaultMarket)
	assert.False(t, cfg.HasBinanceCredentials())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("DB_PATH", "/tmp/j.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "12")
	t.Setenv("BINANCE_API_KEY", "key")
	t.Setenv("BINANCE_API_SECRET", "secret")
	t.Setenv("IS_TESTNET", "false")
	t.Setenv("DEFAULT_MARKET", "SPOT")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/j.db", cfg.DBPath)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 12*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.IsTestnet)
	assert.Equal(t, "SPOT", cfg.DefaultMarket)
	assert.True(t, cfg.HasBinanceCredentials())
}

func TestLoadConfig_CollectsValidationErrors(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT_SECONDS")
}

func TestLoadConfig_BadNumber(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")

	_, err := LoadConfig()
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}
