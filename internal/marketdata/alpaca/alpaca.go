package alpaca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"signal-agent/internal/types"
)

const Name = "alpaca"

type Options struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Timeout   time.Duration
	Retries   int
}

// barsClient is the slice of the SDK client this adapter uses.
type barsClient interface {
	GetCryptoBars(symbol string, req marketdata.GetCryptoBarsRequest) ([]marketdata.CryptoBar, error)
}

// Client reads crypto bars through the Alpaca market data SDK. Symbols keep
// the slash form, e.g. "BTC/USDT".
type Client struct {
	bars barsClient
	now  func() time.Time
}

// New builds the SDK client. Timeout bounds each HTTP attempt; the SDK
// methods take no context.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Client{
		bars: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:     opts.APIKey,
			APISecret:  opts.APISecret,
			BaseURL:    opts.BaseURL,
			RetryLimit: opts.Retries,
			RetryDelay: 200 * time.Millisecond,
			HTTPClient: &http.Client{Timeout: opts.Timeout},
		}),
		now: time.Now,
	}
}

func (c *Client) Name() string { return Name }

func (c *Client) RecentCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	tf, step, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Look back twice the window so gaps in trading still fill limit bars.
	start := c.now().Add(-2 * time.Duration(limit) * step)
	bars, err := c.bars.GetCryptoBars(symbol, marketdata.GetCryptoBarsRequest{
		TimeFrame: tf,
		Start:     start,
	})
	if err != nil {
		return nil, fmt.Errorf("get crypto bars %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, errors.New("no bars returned")
	}
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}

	candles := make([]types.Candle, len(bars))
	for i, b := range bars {
		candles[i] = types.Candle{
			Ts:    b.Timestamp.Unix(),
			Open:  b.Open,
			High:  b.High,
			Low:   b.Low,
			Close: b.Close,
			Vol:   b.Volume,
		}
	}
	return candles, nil
}

// ParseTimeframe maps exchange-style intervals ("1m", "15m", "1h", "1d") to an
// SDK timeframe and its duration.
func ParseTimeframe(s string) (marketdata.TimeFrame, time.Duration, error) {
	if len(s) < 2 {
		return marketdata.TimeFrame{}, 0, fmt.Errorf("invalid timeframe %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return marketdata.TimeFrame{}, 0, fmt.Errorf("invalid timeframe %q", s)
	}
	switch s[len(s)-1] {
	case 'm':
		return marketdata.NewTimeFrame(n, marketdata.Min), time.Duration(n) * time.Minute, nil
	case 'h':
		return marketdata.NewTimeFrame(n, marketdata.Hour), time.Duration(n) * time.Hour, nil
	case 'd':
		return marketdata.NewTimeFrame(n, marketdata.Day), time.Duration(n) * 24 * time.Hour, nil
	}
	return marketdata.TimeFrame{}, 0, fmt.Errorf("invalid timeframe %q", s)
}
