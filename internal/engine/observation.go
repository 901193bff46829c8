package engine

import (
	"signal-agent/internal/ta"
	"signal-agent/internal/types"
)

// Windows are the indicator lookbacks, in candles.
type Windows struct {
	Short int
	Long  int
	RSI   int
}

// BuildObservation derives the feature record from candles (oldest first) and
// the current account. Indicators without enough history are left missing.
func BuildObservation(candles []types.Candle, acc types.Account, w Windows) types.Observation {
	if len(candles) == 0 {
		return types.Observation{}
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	price := closes[len(closes)-1]

	return types.Observation{
		Price:    types.Opt(price),
		MAShort:  types.Opt(ta.SMA(closes, w.Short)),
		MALong:   types.Opt(ta.SMA(closes, w.Long)),
		RSI:      types.Opt(ta.RSI(closes, w.RSI)),
		Balance:  types.Opt(acc.Balance),
		Position: types.Opt(acc.Position),
		PnL:      types.Opt(acc.UnrealizedPnL(price)),
	}
}
