package static

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"signal-agent/internal/types"
)

const Name = "static"

// Source produces synthetic candles for offline runs. The same symbol and
// limit always give the same prices.
type Source struct {
	base float64
	now  func() time.Time
}

func New(base float64) *Source {
	if base <= 0 {
		base = 1000
	}
	return &Source{base: base, now: time.Now}
}

func (s *Source) Name() string { return Name }

func (s *Source) RecentCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	cs := make([]types.Candle, 0, limit)
	now := s.now().Truncate(time.Minute).Unix()

	for i := limit; i > 0; i-- {
		c := s.base + float64(limit-i) + (rng.Float64()-0.5)*5
		hi := c + rng.Float64()*3
		lo := c - rng.Float64()*3
		cs = append(cs, types.Candle{
			Ts:    now - int64(i*60),
			Open:  c - 0.5,
			High:  hi,
			Low:   lo,
			Close: c,
			Vol:   rng.Float64() * 1000,
		})
	}

	return cs, nil
}
