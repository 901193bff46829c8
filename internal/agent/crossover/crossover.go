package crossover

import (
	"context"
	"fmt"

	"signal-agent/internal/types"
)

const (
	DefaultConfidence = 0.85
	HoldReasoning     = "Market is stable."
)

// Decider is the moving-average crossover heuristic. It keeps no state, so the
// same observation always yields the same decision.
type Decider struct {
	confidence float64
}

func New(confidence float64) *Decider {
	if confidence <= 0 || confidence > 1 {
		confidence = DefaultConfidence
	}
	return &Decider{confidence: confidence}
}

// Decide implements the Decider interface. A missing average is no signal:
// the empty observation and a window still filling both give Hold.
func (d *Decider) Decide(ctx context.Context, obs types.Observation) (types.Decision, error) {
	dec := types.Decision{
		Action:      types.Hold,
		Confidence:  0,
		Reasoning:   HoldReasoning,
		Observation: obs,
	}
	if obs.MAShort == nil || obs.MALong == nil {
		return dec, nil
	}
	short, long := *obs.MAShort, *obs.MALong

	switch {
	case short > long:
		dec.Action = types.Buy
		dec.Confidence = d.confidence
		dec.Reasoning = fmt.Sprintf("Short term trend crossed above long term trend (Golden Cross): MA short %.2f > MA long %.2f.", short, long)
	case short < long:
		dec.Action = types.Sell
		dec.Confidence = d.confidence
		dec.Reasoning = fmt.Sprintf("Short term trend crossed below long term trend (Death Cross): MA short %.2f < MA long %.2f.", short, long)
	}
	return dec, nil
}
