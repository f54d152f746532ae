package api

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Provider combines TracerProvider and MeterProvider for unified OpenTelemetry access
type Provider interface {
	Tracer(name string, opts ...trace.TracerOption) trace.Tracer
	Meter(name string, opts ...metric.MeterOption) metric.Meter

	// Shutdown flushes pending telemetry and stops the exporters
	Shutdown(ctx context.Context) error
}

func StringAttr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

func IntAttr(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}

// DurationAttr records value in whole milliseconds.
func DurationAttr(key string, value time.Duration) attribute.KeyValue {
	return attribute.Int64(key, value.Milliseconds())
}

// Database semantic conventions used on query spans and metrics
const (
	DBSystemKey    = "db.system"
	DBStatementKey = "db.statement"
	DBRowsKey      = "db.rows"
	DBParamsKey    = "db.params"
	DBDurationKey  = "db.duration_ms"
)

// RecordError records an error in the current span
func RecordError(ctx context.Context, err error, opts ...trace.EventOption) {
	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err, opts...)
		span.SetStatus(codes.Error, err.Error())
	}
}
