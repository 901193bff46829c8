package engine

import (
	"signal-agent/internal/interfaces"
	"signal-agent/internal/ledger"
	"signal-agent/internal/store"
	"signal-agent/internal/tradelog"
)

func New(cfg *store.Config, md interfaces.MarketData, d interfaces.Decider, l *ledger.Ledger, j *tradelog.Journal) interfaces.Engine {
	return newEngine(cfg, md, d, l, j)
}
