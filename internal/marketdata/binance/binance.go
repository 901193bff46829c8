package binance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"signal-agent/internal/api"
	"signal-agent/internal/types"
)

const Name = "binance"

// Options configures the public klines client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	Logging bool
}

// Client reads candles from the Binance spot REST API. No credentials are
// needed for klines.
type Client struct {
	http *api.Client
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.binance.com"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Client{
		http: api.NewClient(
			api.WithBaseURL(opts.BaseURL),
			api.WithTimeout(opts.Timeout),
			api.WithRetry(opts.Retries, 200*time.Millisecond, 2*time.Second),
			api.WithLogging(opts.Logging),
		),
	}
}

func (c *Client) Name() string { return Name }

// RecentCandles returns up to limit klines, oldest first.
func (c *Client) RecentCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	resp, err := c.http.GET(ctx, "/api/v3/klines", map[string]string{
		"symbol":   Symbol(symbol),
		"interval": timeframe,
		"limit":    strconv.Itoa(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching klines: %w", err)
	}

	var raw [][]interface{}
	if err := resp.ParseJSON(&raw); err != nil {
		return nil, fmt.Errorf("error parsing klines: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("no klines returned")
	}

	candles := make([]types.Candle, 0, len(raw))
	for i, k := range raw {
		c, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// Symbol maps "BTC/USDT" to the exchange form "BTCUSDT".
func Symbol(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "/", ""))
}

// Kline layout: [openTime, open, high, low, close, volume, closeTime, ...]
func parseKline(k []interface{}) (types.Candle, error) {
	if len(k) < 6 {
		return types.Candle{}, fmt.Errorf("short kline: %d fields", len(k))
	}
	ts, ok := k[0].(float64)
	if !ok {
		return types.Candle{}, fmt.Errorf("bad open time %v", k[0])
	}
	var vals [5]float64
	for i := range vals {
		v, err := parseFloat(k[i+1])
		if err != nil {
			return types.Candle{}, err
		}
		vals[i] = v
	}
	return types.Candle{
		Ts:    int64(ts) / 1000,
		Open:  vals[0],
		High:  vals[1],
		Low:   vals[2],
		Close: vals[3],
		Vol:   vals[4],
	}, nil
}

func parseFloat(val interface{}) (float64, error) {
	switch v := val.(type) {
	case string:
		return strconv.ParseFloat(v, 64)
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected kline value %T", val)
	}
}
