package engine

import (
	"context"
	"errors"
	"strings"

	"signal-agent/internal/interfaces"
	"signal-agent/internal/ledger"
	"signal-agent/internal/logger"
	"signal-agent/internal/marketdata"
	"signal-agent/internal/store"
	"signal-agent/internal/tradelog"
	"signal-agent/internal/types"
)

const (
	EvolveStatus = "Evolution cycle started (simulation)"

	infoNoPriceData   = "No price data"
	infoInvalidAction = "Invalid action"
)

type Engine struct {
	symbol    string
	timeframe string
	limit     int
	windows   Windows

	md      interfaces.MarketData
	decider interfaces.Decider
	ledger  *ledger.Ledger
	journal *tradelog.Journal
}

func newEngine(cfg *store.Config, md interfaces.MarketData, d interfaces.Decider, l *ledger.Ledger, j *tradelog.Journal) *Engine {
	return &Engine{
		symbol:    cfg.Symbol,
		timeframe: cfg.MarketData.Timeframe,
		limit:     cfg.MarketData.Limit,
		windows: Windows{
			Short: cfg.Indicators.ShortWindow,
			Long:  cfg.Indicators.LongWindow,
			RSI:   cfg.Indicators.RSIPeriod,
		},
		md:      md,
		decider: d,
		ledger:  l,
		journal: j,
	}
}

func (e *Engine) resolveSymbol(symbol string) string {
	if s := strings.TrimSpace(symbol); s != "" {
		return s
	}
	return e.symbol
}

// observe fetches candles and builds the observation. Any fetch failure
// yields the empty observation. A positive price overrides the price field
// only, even on the empty observation.
func (e *Engine) observe(ctx context.Context, symbol string, price *float64) types.Observation {
	var obs types.Observation

	candles, err := e.md.RecentCandles(ctx, symbol, e.timeframe, e.limit)
	switch {
	case err == nil:
		obs = BuildObservation(candles, e.ledger.Snapshot(), e.windows)
	case errors.Is(err, marketdata.ErrUnavailable):
		logger.Warn(ctx, "Market data unavailable - using empty observation", "symbol", symbol, "error", err)
	default:
		logger.ErrorWithErr(ctx, "Unexpected market data failure - using empty observation", err, "symbol", symbol)
	}

	if price != nil && *price > 0 {
		obs.Price = types.Opt(*price)
	}
	return obs
}

// Act builds an observation and asks the decider for a recommendation. The
// ledger is not touched; balance and position in req are accepted but unused.
func (e *Engine) Act(ctx context.Context, req types.ActRequest) (types.Decision, error) {
	symbol := e.resolveSymbol(req.Symbol)
	obs := e.observe(ctx, symbol, req.Price)

	decision, err := e.decider.Decide(ctx, obs)
	if err != nil {
		logger.ErrorWithErr(ctx, "Decision failed", err, "symbol", symbol)
		return types.Decision{}, err
	}

	logger.Decision(ctx, symbol, string(decision.Action), decision.Confidence, decision.Reasoning,
		"degraded", obs.MAShort == nil)

	if err := e.journal.AppendDecision(tradelog.DecisionEntry{
		Symbol:     symbol,
		Action:     string(decision.Action),
		Reason:     decision.Reasoning,
		Confidence: decision.Confidence,
		Price:      types.Value(obs.Price),
		Indicators: indicators(obs),
		Degraded:   obs.MAShort == nil,
	}); err != nil {
		logger.Warn(ctx, "Failed to journal decision", "error", err)
	}

	return decision, nil
}

// Step applies action to the ledger at the observed price and returns the
// observation taken before the action.
func (e *Engine) Step(ctx context.Context, req types.StepRequest) (types.StepResult, error) {
	symbol := e.resolveSymbol(req.Symbol)

	action, perr := types.ParseAction(req.Action)
	if perr != nil {
		action = types.Action(req.Action)
	}

	obs := e.observe(ctx, symbol, req.Price)
	price := types.Value(obs.Price)

	res, err := e.ledger.Apply(action, price)
	out := types.StepResult{Observation: obs, Reward: res.Reward}

	switch {
	case errors.Is(err, ledger.ErrNoPriceData):
		out.Info.Error = infoNoPriceData
		logger.Warn(ctx, "Step skipped - no price data", "symbol", symbol, "action", req.Action)
		return out, nil
	case errors.Is(err, types.ErrInvalidAction):
		out.Info.Error = infoInvalidAction
		logger.Warn(ctx, "Step skipped - invalid action", "symbol", symbol, "action", req.Action)
		return out, nil
	case err != nil:
		return types.StepResult{}, err
	}

	out.Info.TotalValue = types.Opt(res.TotalValue)

	if f := res.Fill; f != nil {
		logger.Trade(ctx, symbol, string(f.Side), f.Qty, f.Price,
			"fee", f.Fee, "reward", res.Reward, "total_value", res.TotalValue)
		if err := e.journal.Append(tradelog.Entry{
			Symbol:     symbol,
			Side:       string(f.Side),
			Qty:        f.Qty,
			Price:      f.Price,
			Fee:        f.Fee,
			Reward:     res.Reward,
			TotalValue: res.TotalValue,
		}); err != nil {
			logger.Warn(ctx, "Failed to journal fill", "error", err)
		}
	}

	return out, nil
}

// Reset returns the ledger to its initial balance and reports a fresh
// observation.
func (e *Engine) Reset(ctx context.Context, symbol string) (types.Observation, types.Account, error) {
	acc := e.ledger.Reset()
	logger.Info(ctx, "Ledger reset", "balance", acc.Balance)
	return e.observe(ctx, e.resolveSymbol(symbol), nil), acc, nil
}

func (e *Engine) Account(ctx context.Context) types.Account {
	return e.ledger.Snapshot()
}

// Evolve acknowledges an evolution request. No training happens.
func (e *Engine) Evolve(ctx context.Context) (string, error) {
	logger.Info(ctx, "Evolution requested - no training loop in this build")
	return EvolveStatus, nil
}

func indicators(obs types.Observation) map[string]float64 {
	m := map[string]float64{}
	if obs.MAShort != nil {
		m["ma_short"] = *obs.MAShort
	}
	if obs.MALong != nil {
		m["ma_long"] = *obs.MALong
	}
	if obs.RSI != nil {
		m["rsi"] = *obs.RSI
	}
	return m
}
