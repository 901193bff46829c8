package interfaces

import (
	"context"

	"signal-agent/internal/types"
)

// MarketData returns the most recent OHLCV candles for a symbol, oldest first.
type MarketData interface {
	Name() string
	RecentCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)
}
