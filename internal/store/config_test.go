package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"AGENT_MODEL_PATH", "AGENT_PORT", "AGENT_SYMBOL", "MARKET_DATA_EXCHANGE", "MARKET_DATA_SOURCE", "TRADER_LOG_DIR", "APCA_API_KEY_ID", "APCA_API_SECRET_KEY", "TRADER_LOG_RETENTION_DAYS"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "BTC/USDT", cfg.Symbol)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "LIVE", cfg.MarketData.Source)
	assert.Equal(t, "exbitron", cfg.MarketData.Exchange)
	assert.Equal(t, "binance", cfg.MarketData.Fallback)
	assert.Equal(t, 20, cfg.MarketData.Limit)
	assert.Equal(t, 5*time.Second, cfg.MarketData.Timeout)
	assert.Equal(t, 7, cfg.Indicators.ShortWindow)
	assert.Equal(t, 14, cfg.Indicators.LongWindow)
	assert.Equal(t, 1000.0, cfg.Ledger.InitialBalance)
	assert.Equal(t, 0.001, cfg.Ledger.FeeRate)
	assert.Equal(t, 1, cfg.MarketData.Retries)
	assert.Equal(t, 0.85, cfg.Agent.Confidence)
	assert.Empty(t, cfg.Agent.ModelPath)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "logs", cfg.Journal.Dir)
}

func TestLoadConfigFileAndEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
symbol: ETH/USDT
server:
  port: 9000
market_data:
  source: static
  exchange: Binance
  timeout: 2s
  limit: 30
agent:
  model_path: /from/file
journal:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("AGENT_MODEL_PATH", "/from/env")
	t.Setenv("APCA_API_KEY_ID", "key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ETH/USDT", cfg.Symbol)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "STATIC", cfg.MarketData.Source)
	assert.Equal(t, "binance", cfg.MarketData.Exchange)
	assert.Equal(t, 2*time.Second, cfg.MarketData.Timeout)
	assert.Equal(t, 30, cfg.MarketData.Limit)
	assert.Equal(t, "/from/env", cfg.Agent.ModelPath)
	assert.Equal(t, "key", cfg.MarketData.Alpaca.APIKey)
	assert.False(t, cfg.Journal.Enabled)
}

func TestLoadConfigKeepsExplicitZeros(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
market_data:
  retries: 0
ledger:
  fee_rate: 0
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MarketData.Retries)
	assert.Equal(t, 0.0, cfg.Ledger.FeeRate)
	assert.Equal(t, 1000.0, cfg.Ledger.InitialBalance)
}

func TestLoadConfigRejectsBadPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENT_PORT", "eighty")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsShortLimit(t *testing.T) {
	cfg := Default()
	cfg.MarketData.Limit = 10

	assert.ErrorContains(t, cfg.Validate(), "market_data.limit must be >= 14")
}

func TestValidateRejectsInvertedWindows(t *testing.T) {
	cfg := Default()
	cfg.Indicators.ShortWindow = 14
	cfg.Indicators.LongWindow = 7

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	cfg := Default()
	cfg.MarketData.Source = "replay"

	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsFeeRate(t *testing.T) {
	cfg := Default()
	cfg.Ledger.FeeRate = 1.5

	assert.Error(t, cfg.Validate())
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
	assert.Equal(t, 14, Default().MinCandles())
}
