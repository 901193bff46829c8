package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, cfg LogConfig) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevOut, prevLogger, prevDetailed := output, globalLogger, detailedLogging
	output = buf
	require.NoError(t, InitWithConfig(cfg))
	t.Cleanup(func() {
		output, globalLogger, detailedLogging = prevOut, prevLogger, prevDetailed
		slog.SetDefault(prevLogger)
	})
	return buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLogLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}

func TestDebugSuppressedUnlessDetailed(t *testing.T) {
	buf := captureLogs(t, LogConfig{Level: "DEBUG", Format: "json"})

	Debug(context.Background(), "hidden")
	Info(context.Background(), "shown", "symbol", "BTC/USDT")

	recs := decodeLines(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "shown", recs[0]["msg"])
	assert.Equal(t, "BTC/USDT", recs[0]["symbol"])
}

func TestDetailedLoggingAddsSource(t *testing.T) {
	buf := captureLogs(t, LogConfig{Level: "DEBUG", Format: "json", DetailedLogging: true})

	Debug(context.Background(), "with source")

	recs := decodeLines(t, buf)
	require.Len(t, recs, 1)
	src, ok := recs[0]["source"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, src["file"], "logger_test.go")
}

func TestErrorWithErrAndDecision(t *testing.T) {
	buf := captureLogs(t, LogConfig{Level: "INFO", Format: "json"})
	ctx := context.Background()

	ErrorWithErr(ctx, "fetch failed", errors.New("boom"), "exchange", "binance")
	Decision(ctx, "BTC/USDT", "Buy", 0.85, "golden cross")

	recs := decodeLines(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "boom", recs[0]["error"])
	assert.Equal(t, "binance", recs[0]["exchange"])
	assert.Equal(t, "DECISION", recs[1]["type"])
	assert.Equal(t, "Buy", recs[1]["action"])
}
