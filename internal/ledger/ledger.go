package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/shopspring/decimal"

	"signal-agent/internal/types"
)

var ErrNoPriceData = errors.New("no price data")

// Fill describes the ledger change made by a Buy or Sell.
type Fill struct {
	Side  types.Action
	Qty   float64
	Price float64
	Fee   float64
}

// Result is the outcome of one Apply call.
type Result struct {
	Reward     float64
	TotalValue float64
	Fill       *Fill
	Account    types.Account
}

// Ledger is a single-symbol, all-in or all-out paper account. It is safe for
// concurrent use; every mutation holds the mutex for the whole transition.
type Ledger struct {
	mu       sync.Mutex
	balance  decimal.Decimal
	position decimal.Decimal
	entry    decimal.Decimal
	initial  decimal.Decimal
	feeRate  decimal.Decimal
}

func New(initialBalance, feeRate float64) *Ledger {
	l := &Ledger{
		initial: decimal.NewFromFloat(initialBalance),
		feeRate: decimal.NewFromFloat(feeRate),
	}
	l.reset()
	return l
}

// Reset returns the ledger to Flat with the initial balance.
func (l *Ledger) Reset() types.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reset()
	return l.snapshot()
}

func (l *Ledger) reset() {
	l.balance = l.initial
	l.position = decimal.Zero
	l.entry = decimal.Zero
}

func (l *Ledger) Snapshot() types.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Ledger) snapshot() types.Account {
	state := types.Flat
	if l.position.IsPositive() {
		state = types.Long
	}
	return types.Account{
		Balance:        l.balance.InexactFloat64(),
		Position:       l.position.InexactFloat64(),
		EntryPrice:     l.entry.InexactFloat64(),
		InitialBalance: l.initial.InexactFloat64(),
		State:          state,
	}
}

// Apply executes action at price. A non-positive or NaN price leaves the
// ledger untouched and returns ErrNoPriceData; an unknown action returns
// types.ErrInvalidAction. Buy from Long and Sell from Flat are no-ops.
func (l *Ledger) Apply(action types.Action, price float64) (Result, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return Result{Account: l.Snapshot()}, ErrNoPriceData
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	px := decimal.NewFromFloat(price)
	res := Result{}

	switch action {
	case types.Hold:
	case types.Buy:
		if l.balance.IsPositive() && l.position.IsZero() {
			amount := l.balance.Div(px)
			fee := amount.Mul(px).Mul(l.feeRate)
			l.position = amount.Sub(fee.Div(px))
			l.balance = decimal.Zero
			l.entry = px
			res.Fill = &Fill{Side: types.Buy, Qty: l.position.InexactFloat64(), Price: price, Fee: fee.InexactFloat64()}
		}
	case types.Sell:
		if l.position.IsPositive() {
			revenue := l.position.Mul(px)
			fee := revenue.Mul(l.feeRate)
			qty := l.position
			l.balance = l.balance.Add(revenue.Sub(fee))
			l.position = decimal.Zero
			if l.entry.IsPositive() {
				res.Reward = px.Sub(l.entry).Div(l.entry).InexactFloat64()
			}
			res.Fill = &Fill{Side: types.Sell, Qty: qty.InexactFloat64(), Price: price, Fee: fee.InexactFloat64()}
		}
	default:
		return Result{Account: l.snapshot()}, fmt.Errorf("%w: %q", types.ErrInvalidAction, action)
	}

	res.TotalValue = l.balance.Add(l.position.Mul(px)).InexactFloat64()
	res.Account = l.snapshot()
	return res, nil
}
