package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Symbol string `yaml:"symbol"`
	Server struct {
		Host           string        `yaml:"host"`
		Port           int           `yaml:"port"`
		ProductionMode bool          `yaml:"production_mode"`
		AllowOrigins   []string      `yaml:"allow_origins"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	MarketData struct {
		Source    string        `yaml:"source"`
		Exchange  string        `yaml:"exchange"`
		Fallback  string        `yaml:"fallback"`
		Timeframe string        `yaml:"timeframe"`
		Limit     int           `yaml:"limit"`
		Timeout   time.Duration `yaml:"timeout"`
		Retries   int           `yaml:"retries"`
		RateLimit float64       `yaml:"rate_limit"`
		Binance   struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"binance"`
		Alpaca struct {
			BaseURL   string `yaml:"base_url"`
			APIKey    string `yaml:"-"`
			APISecret string `yaml:"-"`
		} `yaml:"alpaca"`
	} `yaml:"market_data"`
	Indicators struct {
		ShortWindow int `yaml:"short_window"`
		LongWindow  int `yaml:"long_window"`
		RSIPeriod   int `yaml:"rsi_period"`
	} `yaml:"indicators"`
	Ledger struct {
		InitialBalance float64 `yaml:"initial_balance"`
		FeeRate        float64 `yaml:"fee_rate"`
	} `yaml:"ledger"`
	Agent struct {
		ModelPath  string  `yaml:"model_path"`
		Confidence float64 `yaml:"confidence"`
	} `yaml:"agent"`
	Journal struct {
		Enabled       bool   `yaml:"enabled"`
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"journal"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	c := preset()
	c.applyDefaults()
	return c
}

// preset holds defaults for fields where zero is a valid setting; the YAML file is
// decoded on top of it.
func preset() *Config {
	c := &Config{}
	c.MarketData.Retries = 1
	c.Ledger.InitialBalance = 1000
	c.Ledger.FeeRate = 0.001
	c.Journal.Enabled = true
	return c
}

func (c *Config) applyDefaults() {
	if c.Symbol == "" {
		c.Symbol = "BTC/USDT"
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000"}
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 15 * time.Second
	}
	if c.MarketData.Source == "" {
		c.MarketData.Source = "LIVE"
	}
	if c.MarketData.Exchange == "" {
		c.MarketData.Exchange = "exbitron"
	}
	if c.MarketData.Fallback == "" {
		c.MarketData.Fallback = "binance"
	}
	if c.MarketData.Timeframe == "" {
		c.MarketData.Timeframe = "1m"
	}
	if c.MarketData.Limit == 0 {
		c.MarketData.Limit = 20
	}
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = 5 * time.Second
	}
	if c.MarketData.RateLimit == 0 {
		c.MarketData.RateLimit = 10
	}
	if c.MarketData.Binance.BaseURL == "" {
		c.MarketData.Binance.BaseURL = "https://api.binance.com"
	}
	if c.MarketData.Alpaca.BaseURL == "" {
		c.MarketData.Alpaca.BaseURL = "https://data.alpaca.markets"
	}
	if c.Indicators.ShortWindow == 0 {
		c.Indicators.ShortWindow = 7
	}
	if c.Indicators.LongWindow == 0 {
		c.Indicators.LongWindow = 14
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Agent.Confidence == 0 {
		c.Agent.Confidence = 0.85
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "logs"
	}
}

// applyEnv lets deployment environment override the file.
func (c *Config) applyEnv() error {
	if v := os.Getenv("AGENT_MODEL_PATH"); v != "" {
		c.Agent.ModelPath = v
	}
	if v := os.Getenv("AGENT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGENT_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("AGENT_SYMBOL"); v != "" {
		c.Symbol = v
	}
	if v := os.Getenv("MARKET_DATA_EXCHANGE"); v != "" {
		c.MarketData.Exchange = v
	}
	if v := os.Getenv("MARKET_DATA_SOURCE"); v != "" {
		c.MarketData.Source = v
	}
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		c.Journal.Dir = v
	}
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TRADER_LOG_RETENTION_DAYS %q: %w", v, err)
		}
		c.Journal.RetentionDays = days
	}
	c.MarketData.Alpaca.APIKey = os.Getenv("APCA_API_KEY_ID")
	c.MarketData.Alpaca.APISecret = os.Getenv("APCA_API_SECRET_KEY")
	return nil
}

// MinCandles is the shortest history that yields every indicator.
func (c *Config) MinCandles() int {
	n := c.Indicators.LongWindow
	if c.Indicators.ShortWindow > n {
		n = c.Indicators.ShortWindow
	}
	if c.Indicators.RSIPeriod > n {
		n = c.Indicators.RSIPeriod
	}
	return n
}

func (c *Config) Validate() error {
	c.MarketData.Source = strings.ToUpper(c.MarketData.Source)
	c.MarketData.Exchange = strings.ToLower(c.MarketData.Exchange)
	c.MarketData.Fallback = strings.ToLower(c.MarketData.Fallback)

	if c.MarketData.Source != "STATIC" && c.MarketData.Source != "LIVE" {
		return fmt.Errorf("invalid market_data.source '%s': must be 'STATIC' or 'LIVE'", c.MarketData.Source)
	}
	if c.Symbol == "" {
		return errors.New("symbol cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	if c.Indicators.ShortWindow <= 0 || c.Indicators.LongWindow <= 0 || c.Indicators.RSIPeriod <= 0 {
		return errors.New("indicator windows must be > 0")
	}
	if c.Indicators.ShortWindow >= c.Indicators.LongWindow {
		return fmt.Errorf("indicators.short_window (%d) must be < long_window (%d)", c.Indicators.ShortWindow, c.Indicators.LongWindow)
	}
	if c.MarketData.Limit < c.MinCandles() {
		return fmt.Errorf("market_data.limit must be >= %d, got %d", c.MinCandles(), c.MarketData.Limit)
	}
	if c.MarketData.Timeout <= 0 {
		return errors.New("market_data.timeout must be > 0")
	}
	if c.MarketData.Retries < 0 {
		return errors.New("market_data.retries must be >= 0")
	}
	if c.MarketData.RateLimit <= 0 {
		return errors.New("market_data.rate_limit must be > 0")
	}
	if c.Ledger.InitialBalance < 0 {
		return fmt.Errorf("ledger.initial_balance must be >= 0, got %.2f", c.Ledger.InitialBalance)
	}
	if c.Ledger.FeeRate < 0 || c.Ledger.FeeRate >= 1 {
		return fmt.Errorf("ledger.fee_rate must be in [0,1), got %f", c.Ledger.FeeRate)
	}
	if c.Agent.Confidence < 0 || c.Agent.Confidence > 1 {
		return fmt.Errorf("agent.confidence must be in [0,1], got %f", c.Agent.Confidence)
	}
	return nil
}

// LoadConfig reads path if it exists, then applies defaults and environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	c := preset()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	c.applyDefaults()
	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return c, nil
}
