package ledger

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-agent/internal/types"
)

func TestBuyAllIn(t *testing.T) {
	l := New(1000, 0.001)

	res, err := l.Apply(types.Buy, 100)
	require.NoError(t, err)

	acc := l.Snapshot()
	assert.Equal(t, 9.99, acc.Position)
	assert.Equal(t, 0.0, acc.Balance)
	assert.Equal(t, 100.0, acc.EntryPrice)
	assert.Equal(t, types.Long, acc.State)
	assert.Equal(t, 0.0, res.Reward)
	assert.Equal(t, 999.0, res.TotalValue)
	require.NotNil(t, res.Fill)
	assert.Equal(t, 1.0, res.Fill.Fee)
}

func TestSellAfterBuy(t *testing.T) {
	l := New(1000, 0.001)
	_, err := l.Apply(types.Buy, 100)
	require.NoError(t, err)

	res, err := l.Apply(types.Sell, 110)
	require.NoError(t, err)

	acc := l.Snapshot()
	assert.Equal(t, 1097.8011, acc.Balance)
	assert.Equal(t, 0.0, acc.Position)
	assert.Equal(t, types.Flat, acc.State)
	assert.InDelta(t, 0.10, res.Reward, 1e-12)
	assert.Equal(t, 1097.8011, res.TotalValue)
	require.NotNil(t, res.Fill)
	assert.Equal(t, 9.99, res.Fill.Qty)
	assert.Equal(t, 1.0989, res.Fill.Fee)
}

func TestNoOps(t *testing.T) {
	l := New(1000, 0.001)

	res, err := l.Apply(types.Sell, 100)
	require.NoError(t, err)
	assert.Nil(t, res.Fill)
	assert.Equal(t, 1000.0, l.Snapshot().Balance)

	_, err = l.Apply(types.Buy, 100)
	require.NoError(t, err)
	before := l.Snapshot()

	res, err = l.Apply(types.Buy, 50)
	require.NoError(t, err)
	assert.Nil(t, res.Fill)
	assert.Equal(t, before, l.Snapshot())

	res, err = l.Apply(types.Hold, 120)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Reward)
	assert.Equal(t, before, l.Snapshot())
	assert.InDelta(t, 9.99*120, res.TotalValue, 1e-9)
}

func TestNoPriceData(t *testing.T) {
	l := New(1000, 0.001)
	for _, p := range []float64{0, -1, math.NaN()} {
		res, err := l.Apply(types.Buy, p)
		assert.ErrorIs(t, err, ErrNoPriceData)
		assert.Equal(t, 0.0, res.Reward)
		assert.Equal(t, 1000.0, l.Snapshot().Balance)
	}
}

func TestInvalidAction(t *testing.T) {
	l := New(1000, 0.001)
	_, err := l.Apply(types.Action("Short"), 100)
	assert.ErrorIs(t, err, types.ErrInvalidAction)
	assert.Equal(t, 1000.0, l.Snapshot().Balance)
}

func TestResetRoundTrip(t *testing.T) {
	l := New(1000, 0.001)
	_, _ = l.Apply(types.Buy, 100)
	_, _ = l.Apply(types.Sell, 90)

	acc := l.Reset()
	assert.Equal(t, 1000.0, acc.Balance)
	assert.Equal(t, 0.0, acc.Position)
	assert.Equal(t, 0.0, acc.EntryPrice)
	assert.Equal(t, types.Flat, acc.State)
	assert.Equal(t, acc, l.Snapshot())
}

func assertExclusive(t *testing.T, acc types.Account) {
	t.Helper()
	assert.False(t, acc.Balance > 0 && acc.Position > 0, "balance %v and position %v both positive", acc.Balance, acc.Position)
	assert.GreaterOrEqual(t, acc.Balance, 0.0)
	assert.GreaterOrEqual(t, acc.Position, 0.0)
}

func TestInvariantRandomSequence(t *testing.T) {
	l := New(1000, 0.001)
	rng := rand.New(rand.NewSource(7))
	actions := []types.Action{types.Hold, types.Buy, types.Sell}

	for i := 0; i < 500; i++ {
		_, _ = l.Apply(actions[rng.Intn(3)], 50+rng.Float64()*100)
		assertExclusive(t, l.Snapshot())
	}
}

func TestInvariantConcurrent(t *testing.T) {
	l := New(1000, 0.001)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				action := types.Buy
				if (g+i)%2 == 0 {
					action = types.Sell
				}
				_, _ = l.Apply(action, 100+float64(i%10))
				if i%50 == 0 {
					l.Reset()
				}
			}
		}(g)
	}
	wg.Wait()
	assertExclusive(t, l.Snapshot())
}
