package agent

import (
	"context"

	"signal-agent/internal/agent/agentobs"
	"signal-agent/internal/agent/crossover"
	"signal-agent/internal/interfaces"
	"signal-agent/internal/logger"
	"signal-agent/internal/store"
)

const (
	KindCrossover = "crossover"
)

// New returns the configured decider wrapped with observability, and the name
// reported by /health. Only the crossover heuristic ships; a model path is
// logged and ignored.
func New(ctx context.Context, cfg *store.Config) (interfaces.Decider, string) {
	if cfg.Agent.ModelPath != "" {
		logger.Warn(ctx, "Trained model inference is not available in this build - using crossover heuristic",
			"model_path", cfg.Agent.ModelPath)
	} else {
		logger.Info(ctx, "No trained model configured - using crossover heuristic",
			"confidence", cfg.Agent.Confidence)
	}

	return agentobs.Wrap(crossover.New(cfg.Agent.Confidence)), KindCrossover
}
