package ta

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(from, to float64) []float64 {
	out := []float64{}
	if from <= to {
		for v := from; v <= to; v++ {
			out = append(out, v)
		}
		return out
	}
	for v := from; v >= to; v-- {
		out = append(out, v)
	}
	return out
}

func TestSMATrailingWindow(t *testing.T) {
	closes := seq(1, 20)

	assert.InDelta(t, (14.0+15+16+17+18+19+20)/7, SMA(closes, 7), 1e-12)
	assert.InDelta(t, 13.5, SMA(closes, 14), 1e-12)
}

func TestSMAInsufficientHistory(t *testing.T) {
	assert.True(t, math.IsNaN(SMA([]float64{1, 2, 3}, 7)))
	assert.True(t, math.IsNaN(SMA([]float64{1, 2, 3}, 0)))
}

func TestRSISaturatesWithoutLosses(t *testing.T) {
	assert.Equal(t, 100.0, RSI(seq(1, 20), 14))
	assert.Equal(t, 100.0, RSI(seq(1, 14), 14))
}

func TestRSIZeroWithoutGains(t *testing.T) {
	assert.InDelta(t, 0.0, RSI(seq(20, 1), 14), 1e-12)
}

func TestRSIBalancedMoves(t *testing.T) {
	closes := []float64{}
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			closes = append(closes, 10)
		} else {
			closes = append(closes, 11)
		}
	}

	// 7 up moves and 7 down moves of equal size in the trailing window.
	assert.InDelta(t, 50.0, RSI(closes, 14), 1e-9)
}

func TestRSIFirstDiffCountsAsZero(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18}

	// 13 real diffs: seven +2 moves and six -1 moves.
	rs := (14.0 / 14) / (6.0 / 14)
	assert.InDelta(t, 100-100/(1+rs), RSI(closes, 14), 1e-9)
}

func TestRSIBounded(t *testing.T) {
	closes := []float64{100, 101.5, 99.2, 98.7, 103.1, 104, 102.2, 101.9, 105.3, 104.8, 103.3, 106.2, 107, 105.5, 104.1, 108.9}
	rsi := RSI(closes, 14)
	assert.GreaterOrEqual(t, rsi, 0.0)
	assert.LessOrEqual(t, rsi, 100.0)
}

func TestRSIInsufficientHistory(t *testing.T) {
	assert.True(t, math.IsNaN(RSI(seq(1, 13), 14)))
}
