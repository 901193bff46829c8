package marketdataobs

import (
	"context"

	"signal-agent/internal/interfaces"
	"signal-agent/internal/logger"
	"signal-agent/internal/trace"
	"signal-agent/internal/types"
)

// observableSource wraps a MarketData source with logging and tracing
type observableSource struct {
	src interfaces.MarketData
}

// Compile-time interface check
var _ interfaces.MarketData = (*observableSource)(nil)

// Wrap wraps a market data source with observability middleware
func Wrap(src interfaces.MarketData) interfaces.MarketData {
	return &observableSource{src: src}
}

func (o *observableSource) Name() string { return o.src.Name() }

// RecentCandles fetches candles with observability
func (o *observableSource) RecentCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "marketdata.RecentCandles")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching recent candles",
		"source", o.src.Name(), "symbol", symbol, "timeframe", timeframe, "limit", limit)

	candles, err := o.src.RecentCandles(ctx, symbol, timeframe, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err,
			"source", o.src.Name(), "symbol", symbol)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched successfully",
		"source", o.src.Name(), "symbol", symbol, "count", len(candles))
	return candles, nil
}
