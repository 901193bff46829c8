package interfaces

import (
	"context"
	"time"
)

type EodSummarizer interface {
	SummarizeDay(ctx context.Context, t time.Time) (csvPath string, err error)
}
