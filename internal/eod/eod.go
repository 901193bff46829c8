package eod

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"signal-agent/internal/interfaces"
	"signal-agent/internal/tradelog"
	"signal-agent/internal/types"
)

type aggRow struct {
	Symbol     string
	Buys       int
	BuyQty     float64
	BuyValue   float64
	Sells      int
	SellQty    float64
	SellValue  float64
	Fees       float64
	ReturnSum  float64
	LastEquity float64
}

type summarizer struct {
	dir string
}

var _ interfaces.EodSummarizer = (*summarizer)(nil)

// NewSummarizer reads fills from the journal directory dir.
func NewSummarizer(dir string) interfaces.EodSummarizer {
	if dir == "" {
		dir = "logs"
	}
	return &summarizer{dir: dir}
}

func (s *summarizer) fillsFile(t time.Time) string {
	return filepath.Join(s.dir, t.UTC().Format("2006-01-02")+".txt")
}

func (s *summarizer) csvPath(t time.Time) string {
	return filepath.Join(s.dir, "eod", t.UTC().Format("2006-01-02")+".csv")
}

// SummarizeDay aggregates the day's simulated fills per symbol into a CSV.
// It returns "" with no error when the day has no fills.
func (s *summarizer) SummarizeDay(ctx context.Context, t time.Time) (string, error) {
	f, err := os.Open(s.fillsFile(t))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var e tradelog.Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		row := aggs[e.Symbol]
		if row == nil {
			row = &aggRow{Symbol: e.Symbol}
			aggs[e.Symbol] = row
		}
		switch types.Action(e.Side) {
		case types.Buy:
			row.Buys++
			row.BuyQty += e.Qty
			row.BuyValue += e.Qty * e.Price
		case types.Sell:
			row.Sells++
			row.SellQty += e.Qty
			row.SellValue += e.Qty * e.Price
			row.ReturnSum += e.Reward
		}
		row.Fees += e.Fee
		row.LastEquity = e.TotalValue
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := s.csvPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"symbol", "buys", "buy_qty", "buy_avg", "sells", "sell_qty", "sell_avg", "fees", "realized_return_sum", "last_total_value"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	var totalFees, totalReturn float64
	for _, k := range keys {
		r := aggs[k]
		var buyAvg, sellAvg float64
		if r.BuyQty > 0 {
			buyAvg = r.BuyValue / r.BuyQty
		}
		if r.SellQty > 0 {
			sellAvg = r.SellValue / r.SellQty
		}
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Buys), fmt.Sprintf("%.8f", r.BuyQty), fmt.Sprintf("%.4f", buyAvg),
			strconv.Itoa(r.Sells), fmt.Sprintf("%.8f", r.SellQty), fmt.Sprintf("%.4f", sellAvg),
			fmt.Sprintf("%.4f", r.Fees), fmt.Sprintf("%.6f", r.ReturnSum), fmt.Sprintf("%.2f", r.LastEquity),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		totalFees += r.Fees
		totalReturn += r.ReturnSum
	}
	if err := w.Write([]string{"TOTAL", "", "", "", "", "", "", fmt.Sprintf("%.4f", totalFees), fmt.Sprintf("%.6f", totalReturn), ""}); err != nil {
		return "", err
	}
	w.Flush()
	return outPath, w.Error()
}
