package agentobs

import (
	"context"

	"signal-agent/internal/interfaces"
	"signal-agent/internal/logger"
	"signal-agent/internal/trace"
	"signal-agent/internal/types"
)

// observableDecider wraps a Decider with observability (logging & tracing)
type observableDecider struct {
	decider interfaces.Decider
}

// Compile-time interface check
var _ interfaces.Decider = (*observableDecider)(nil)

// Wrap wraps a decider with observability middleware
func Wrap(decider interfaces.Decider) interfaces.Decider {
	return &observableDecider{decider: decider}
}

// Decide makes a trading decision with observability
func (od *observableDecider) Decide(ctx context.Context, obs types.Observation) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "agent.Decide")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting trading decision",
		"price", types.Value(obs.Price),
		"ma_short", types.Value(obs.MAShort),
		"ma_long", types.Value(obs.MALong),
		"rsi", types.Value(obs.RSI),
		"empty", obs.Empty(),
	)

	decision, err := od.decider.Decide(ctx, obs)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to get trading decision", err)
		return types.Decision{}, err
	}

	logger.InfoSkip(ctx, 1, "Trading decision received",
		"action", decision.Action,
		"reasoning", decision.Reasoning,
		"confidence", decision.Confidence,
	)

	return decision, nil
}
