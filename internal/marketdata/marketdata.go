package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"signal-agent/internal/interfaces"
	"signal-agent/internal/marketdata/alpaca"
	"signal-agent/internal/marketdata/binance"
	"signal-agent/internal/marketdata/static"
	"signal-agent/internal/store"
	"signal-agent/internal/types"
)

// ErrUnavailable wraps every failure to obtain candles: transport errors,
// timeouts, HTTP errors and malformed or empty payloads.
var ErrUnavailable = errors.New("market data unavailable")

// Factory builds a live adapter from config.
type Factory func(cfg *store.Config) interfaces.MarketData

var registry = map[string]Factory{
	binance.Name: func(cfg *store.Config) interfaces.MarketData {
		return binance.New(binance.Options{
			BaseURL: cfg.MarketData.Binance.BaseURL,
			Timeout: cfg.MarketData.Timeout,
			Retries: cfg.MarketData.Retries,
		})
	},
	alpaca.Name: func(cfg *store.Config) interfaces.MarketData {
		return alpaca.New(alpaca.Options{
			APIKey:    cfg.MarketData.Alpaca.APIKey,
			APISecret: cfg.MarketData.Alpaca.APISecret,
			BaseURL:   cfg.MarketData.Alpaca.BaseURL,
			Timeout:   cfg.MarketData.Timeout,
			Retries:   cfg.MarketData.Retries,
		})
	},
}

// Exchanges lists the registered live adapters.
func Exchanges() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Selection records which source was chosen and why.
type Selection struct {
	Source    interfaces.MarketData
	Mode      string
	Exchange  string
	Requested string
	Fallback  bool
}

// Select picks the candle source for cfg. An unregistered preferred exchange
// falls back to cfg.MarketData.Fallback; that is reported, not an error.
func Select(cfg *store.Config) (Selection, error) {
	sel := Selection{Mode: cfg.MarketData.Source, Requested: cfg.MarketData.Exchange}

	if cfg.MarketData.Source == "STATIC" {
		sel.Exchange = static.Name
		sel.Source = Guard(static.New(0), cfg.MarketData.Timeout, cfg.MarketData.RateLimit)
		return sel, nil
	}

	name := cfg.MarketData.Exchange
	f, ok := registry[name]
	if !ok {
		f, ok = registry[cfg.MarketData.Fallback]
		if !ok {
			return Selection{}, fmt.Errorf("no market data adapter for %q or fallback %q (have %v)",
				name, cfg.MarketData.Fallback, Exchanges())
		}
		name = cfg.MarketData.Fallback
		sel.Fallback = true
	}

	sel.Exchange = name
	sel.Source = Guard(f(cfg), cfg.MarketData.Timeout, cfg.MarketData.RateLimit)
	return sel, nil
}

// guarded throttles outbound calls, bounds each call with a timeout and maps
// every failure to ErrUnavailable.
type guarded struct {
	src     interfaces.MarketData
	timeout time.Duration
	limiter *rate.Limiter
}

var _ interfaces.MarketData = (*guarded)(nil)

// Guard wraps src with a per-call timeout and a token bucket of rps requests
// per second.
func Guard(src interfaces.MarketData, timeout time.Duration, rps float64) interfaces.MarketData {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &guarded{
		src:     src,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (g *guarded) Name() string { return g.src.Name() }

func (g *guarded) RecentCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: rate limit: %v", ErrUnavailable, g.src.Name(), err)
	}

	// Adapters whose SDK takes no context are abandoned at the deadline.
	done := make(chan fetchResult, 1)
	go func() {
		candles, err := g.src.RecentCandles(ctx, symbol, timeframe, limit)
		done <- fetchResult{candles: candles, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, g.src.Name(), ctx.Err())
	}

	if res.err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, g.src.Name(), res.err)
	}
	if len(res.candles) == 0 {
		return nil, fmt.Errorf("%w: %s: no candles", ErrUnavailable, g.src.Name())
	}
	return res.candles, nil
}

type fetchResult struct {
	candles []types.Candle
	err     error
}
