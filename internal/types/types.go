package types

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Action is the decision emitted by a Decider and the input to the ledger.
type Action string

const (
	Hold Action = "Hold"
	Buy  Action = "Buy"
	Sell Action = "Sell"
)

var ErrInvalidAction = errors.New("invalid action")

// ParseAction accepts the action names case-insensitively, or the numeric
// codes 0=Hold, 1=Buy, 2=Sell.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hold", "0":
		return Hold, nil
	case "buy", "1":
		return Buy, nil
	case "sell", "2":
		return Sell, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
}

// Observation is the feature record handed to a Decider. A nil field means the
// value is missing: upstream data was unavailable or the window was too short.
type Observation struct {
	Price    *float64 `json:"price,omitempty"`
	MAShort  *float64 `json:"ma_short,omitempty"`
	MALong   *float64 `json:"ma_long,omitempty"`
	RSI      *float64 `json:"rsi,omitempty"`
	Balance  *float64 `json:"balance,omitempty"`
	Position *float64 `json:"position,omitempty"`
	PnL      *float64 `json:"pnl,omitempty"`
}

// Opt returns a pointer to v, or nil when v is NaN or infinite.
func Opt(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Value returns the field value, or 0 if it is missing.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Empty reports whether no feature is set.
func (o Observation) Empty() bool {
	return o == Observation{}
}

type Decision struct {
	Action      Action      `json:"action"`
	Confidence  float64     `json:"confidence"`
	Reasoning   string      `json:"reasoning"`
	Observation Observation `json:"observation"`
}

type ActRequest struct {
	Symbol   string   `json:"symbol"`
	Price    *float64 `json:"price"`
	Balance  *float64 `json:"balance"`
	Position *float64 `json:"position"`
}

type StepRequest struct {
	Symbol string   `json:"symbol"`
	Action string   `json:"action"`
	Price  *float64 `json:"price"`
}

type StepInfo struct {
	TotalValue *float64 `json:"total_value,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type StepResult struct {
	Observation Observation `json:"observation"`
	Reward      float64     `json:"reward"`
	Done        bool        `json:"done"`
	Info        StepInfo    `json:"info"`
}

type LedgerState string

const (
	Flat LedgerState = "Flat"
	Long LedgerState = "Long"
)

// Account is a point-in-time copy of the simulated ledger.
type Account struct {
	Balance        float64     `json:"balance"`
	Position       float64     `json:"position"`
	EntryPrice     float64     `json:"entry_price"`
	InitialBalance float64     `json:"initial_balance"`
	State          LedgerState `json:"state"`
}

// UnrealizedPnL is absolute, in quote currency.
func (a Account) UnrealizedPnL(price float64) float64 {
	if a.Position == 0 {
		return 0
	}
	return (price - a.EntryPrice) * a.Position
}

func (a Account) TotalValue(price float64) float64 {
	return a.Balance + a.Position*price
}
