package interfaces

import (
	"context"

	"signal-agent/internal/types"
)

type Decider interface {
	Decide(ctx context.Context, obs types.Observation) (types.Decision, error)
}
