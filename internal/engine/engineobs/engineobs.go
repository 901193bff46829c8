package engineobs

import (
	"context"
	"time"

	"signal-agent/internal/interfaces"
	"signal-agent/internal/logger"
	"signal-agent/internal/trace"
	"signal-agent/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Act(ctx context.Context, req types.ActRequest) (types.Decision, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Act")
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Starting decision cycle", "symbol", req.Symbol)

	d, err := oe.engine.Act(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Decision cycle failed", err,
			"symbol", req.Symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.Decision{}, err
	}

	logger.InfoSkip(ctx, 1, "Decision cycle completed",
		"symbol", req.Symbol,
		"action", d.Action,
		"confidence", d.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return d, nil
}

func (oe *observableEngine) Step(ctx context.Context, req types.StepRequest) (types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()
	logger.DebugSkip(ctx, 1, "Starting ledger step", "symbol", req.Symbol, "action", req.Action)

	res, err := oe.engine.Step(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Ledger step failed", err,
			"symbol", req.Symbol,
			"action", req.Action,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return types.StepResult{}, err
	}

	logger.InfoSkip(ctx, 1, "Ledger step completed",
		"symbol", req.Symbol,
		"action", req.Action,
		"reward", res.Reward,
		"info_error", res.Info.Error,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (oe *observableEngine) Reset(ctx context.Context, symbol string) (types.Observation, types.Account, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Reset")
	defer span.End()

	obs, acc, err := oe.engine.Reset(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Ledger reset failed", err, "symbol", symbol)
		return obs, acc, err
	}
	logger.InfoSkip(ctx, 1, "Ledger reset completed", "symbol", symbol, "balance", acc.Balance)
	return obs, acc, nil
}

func (oe *observableEngine) Account(ctx context.Context) types.Account {
	ctx, span := trace.StartSpan(ctx, "engine.Account")
	defer span.End()
	return oe.engine.Account(ctx)
}

func (oe *observableEngine) Evolve(ctx context.Context) (string, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Evolve")
	defer span.End()

	status, err := oe.engine.Evolve(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Evolve failed", err)
		return "", err
	}
	return status, nil
}
