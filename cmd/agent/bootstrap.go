package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"signal-agent/internal/agent"
	"signal-agent/internal/engine"
	"signal-agent/internal/engine/engineobs"
	"signal-agent/internal/interfaces"
	"signal-agent/internal/ledger"
	"signal-agent/internal/logger"
	"signal-agent/internal/marketdata"
	"signal-agent/internal/marketdata/marketdataobs"
	"signal-agent/internal/server"
	"signal-agent/internal/store"
	"signal-agent/internal/trace"
	"signal-agent/internal/tradelog"
)

// initializeSystem loads .env and sets up the logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(version); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig reads the config file and applies the --port flag on top
func loadConfig(ctx context.Context, path string, port int) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	if port != 0 {
		cfg.Server.Port = port
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

// initializeJournal creates the decision journal and compresses old files
func initializeJournal(ctx context.Context, cfg *store.Config) *tradelog.Journal {
	if !cfg.Journal.Enabled {
		logger.Info(ctx, "Decision journal disabled")
		return nil
	}

	j := tradelog.New(cfg.Journal.Dir)
	n, err := j.CompressOlder(cfg.Journal.RetentionDays)
	if err != nil {
		logger.Warn(ctx, "Failed to compress old journal files", "error", err)
	}
	logger.Info(ctx, "Decision journal enabled", "dir", j.Dir(), "compressed", n)
	return j
}

// initializeMarketData picks the candle source and wraps it with observability
func initializeMarketData(ctx context.Context, cfg *store.Config) (marketdata.Selection, error) {
	sel, err := marketdata.Select(cfg)
	if err != nil {
		return marketdata.Selection{}, err
	}

	switch {
	case sel.Mode == "STATIC":
		logger.Info(ctx, "Using STATIC synthetic candle data")
	case sel.Fallback:
		logger.Warn(ctx, "Preferred exchange not available - falling back for market data",
			"requested", sel.Requested,
			"using", sel.Exchange,
			"available", marketdata.Exchanges(),
		)
	default:
		logger.Info(ctx, "Using LIVE candle data", "exchange", sel.Exchange)
	}

	sel.Source = marketdataobs.Wrap(sel.Source)
	return sel, nil
}

// initializeEngine wires the ledger, decider and market data into the engine
func initializeEngine(cfg *store.Config, md interfaces.MarketData, d interfaces.Decider, j *tradelog.Journal) interfaces.Engine {
	l := ledger.New(cfg.Ledger.InitialBalance, cfg.Ledger.FeeRate)
	eng := engine.New(cfg, md, d, l, j)
	return engineobs.Wrap(eng)
}

// buildServer runs the whole bootstrap and returns a server ready to Start
func buildServer(ctx context.Context, cfg *store.Config) (*server.Server, error) {
	sel, err := initializeMarketData(ctx, cfg)
	if err != nil {
		return nil, err
	}

	decider, kind := agent.New(ctx, cfg)
	journal := initializeJournal(ctx, cfg)
	eng := initializeEngine(cfg, sel.Source, decider, journal)

	return server.New(server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ProductionMode: cfg.Server.ProductionMode,
		AllowOrigins:   cfg.Server.AllowOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, eng, server.Info{
		Version:  version,
		Decider:  kind,
		Source:   sel.Mode,
		Exchange: sel.Exchange,
		Fallback: sel.Fallback,
	}), nil
}
