package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "signal-agent"

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	sink           io.Closer
	enabled        bool
)

// Settings control the exporter. Spans go to Writer, or stdout when nil.
// SampleRatio is the fraction of new traces kept; requests joining an existing
// trace follow the parent's decision.
type Settings struct {
	Version     string
	Writer      io.Writer
	SampleRatio float64
}

// Init reads LOG_TRACING_ENABLED, LOG_TRACING_FILE and LOG_TRACING_SAMPLE_RATIO.
// A file keeps spans out of the JSON log stream on stdout.
func Init(version string) error {
	enabled = false
	if getEnv("LOG_TRACING_ENABLED", "false") != "true" {
		return nil
	}

	ratio := 1.0
	if v := os.Getenv("LOG_TRACING_SAMPLE_RATIO"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r < 0 || r > 1 {
			return fmt.Errorf("invalid LOG_TRACING_SAMPLE_RATIO %q: must be in [0,1]", v)
		}
		ratio = r
	}

	s := Settings{Version: version, SampleRatio: ratio}
	if path := os.Getenv("LOG_TRACING_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		s.Writer = f
		sink = f
	}
	return Start(s)
}

// Start installs a tracer provider for s and turns span creation on.
func Start(s Settings) error {
	opts := []stdouttrace.Option{}
	if s.Writer != nil {
		opts = append(opts, stdouttrace.WithWriter(s.Writer))
	} else {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		enabled = false
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(s.Version),
		),
	)
	if err != nil {
		enabled = false
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRatio))),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	enabled = true
	return nil
}

// Shutdown flushes spans and closes the trace file, if any.
func Shutdown(ctx context.Context) error {
	var err error
	if tracerProvider != nil {
		err = tracerProvider.Shutdown(ctx)
		tracerProvider = nil
	}
	if sink != nil {
		err = errors.Join(err, sink.Close())
		sink = nil
	}
	enabled = false
	tracer = nil
	return err
}

func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !enabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName, opts...)
}

func Enabled() bool {
	return enabled
}

func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return "", "", false
	}
	return span.SpanContext().TraceID().String(),
		span.SpanContext().SpanID().String(),
		true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
