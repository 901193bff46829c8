package interfaces

import (
	"context"

	"signal-agent/internal/types"
)

type Engine interface {
	Act(ctx context.Context, req types.ActRequest) (types.Decision, error)
	Step(ctx context.Context, req types.StepRequest) (types.StepResult, error)
	Reset(ctx context.Context, symbol string) (types.Observation, types.Account, error)
	Account(ctx context.Context) types.Account
	Evolve(ctx context.Context) (string, error)
}
