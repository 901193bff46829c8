package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentCandlesDeterministic(t *testing.T) {
	s := New(0)
	a, err := s.RecentCandles(context.Background(), "BTC/USDT", "1m", 20)
	require.NoError(t, err)
	b, err := s.RecentCandles(context.Background(), "BTC/USDT", "1m", 20)
	require.NoError(t, err)

	require.Len(t, a, 20)
	for i := range a {
		assert.Equal(t, a[i].Close, b[i].Close)
		assert.LessOrEqual(t, a[i].Low, a[i].Close)
		assert.GreaterOrEqual(t, a[i].High, a[i].Close)
	}
	for i := 1; i < len(a); i++ {
		assert.Greater(t, a[i].Ts, a[i-1].Ts)
	}
}

func TestRecentCandlesDiffersBySymbol(t *testing.T) {
	s := New(500)
	a, _ := s.RecentCandles(context.Background(), "BTC/USDT", "1m", 14)
	b, _ := s.RecentCandles(context.Background(), "ETH/USDT", "1m", 14)
	assert.NotEqual(t, a[0].Close, b[0].Close)
}
