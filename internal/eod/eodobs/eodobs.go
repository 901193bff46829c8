package eodobs

import (
	"context"
	"time"

	"signal-agent/internal/interfaces"
	"signal-agent/internal/logger"
	"signal-agent/internal/trace"
)

type observableEodSummarizer struct {
	summarizer interfaces.EodSummarizer
}

var _ interfaces.EodSummarizer = (*observableEodSummarizer)(nil)

func Wrap(summarizer interfaces.EodSummarizer) interfaces.EodSummarizer {
	return &observableEodSummarizer{
		summarizer: summarizer,
	}
}

func (oes *observableEodSummarizer) SummarizeDay(ctx context.Context, t time.Time) (string, error) {
	ctx, span := trace.StartSpan(ctx, "eod.SummarizeDay")
	defer span.End()

	date := t.UTC().Format("2006-01-02")
	logger.InfoSkip(ctx, 1, "Starting EOD summary generation", "date", date)

	csvPath, err := oes.summarizer.SummarizeDay(ctx, t)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "EOD summary generation failed", err, "date", date)
		return "", err
	}

	if csvPath == "" {
		logger.InfoSkip(ctx, 1, "No fills found for EOD summary", "date", date)
		return "", nil
	}

	logger.InfoSkip(ctx, 1, "EOD summary generated successfully",
		"date", date,
		"csv_path", csvPath,
	)

	return csvPath, nil
}
