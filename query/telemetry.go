package query

import (
	"context"
	"sync"
	"time"

	"github.com/bignyap/go-sqlhelper/database"
	otelapi "github.com/bignyap/go-sqlhelper/otel/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/bignyap/go-sqlhelper/query"

// Instruments come from the global meter, which forwards to whatever
// provider is installed later.
type instruments struct {
	duration metric.Float64Histogram
	rows     metric.Int64Counter
}

var (
	instrumentsOnce sync.Once
	queryMetrics    instruments
)

func metrics() instruments {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		queryMetrics.duration, _ = meter.Float64Histogram("sqlhelper.query.duration",
			metric.WithDescription("Time to run a query and load its frame"),
			metric.WithUnit("ms"),
		)
		queryMetrics.rows, _ = meter.Int64Counter("sqlhelper.query.rows",
			metric.WithDescription("Rows loaded into frames"),
		)
	})
	return queryMetrics
}

func startSpan(ctx context.Context, engine *database.Engine, cq *database.CompiledQuery) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "query.frame",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			otelapi.StringAttr(otelapi.DBSystemKey, string(engine.Dialect())),
			otelapi.StringAttr(otelapi.DBStatementKey, cq.SQL),
			attribute.StringSlice(otelapi.DBParamsKey, cq.Names),
		),
	)
}

// finishSpan records the outcome on span and the query metrics, then ends it.
func finishSpan(ctx context.Context, span trace.Span, engine *database.Engine, start time.Time, rows int, err error) {
	defer span.End()

	elapsed := time.Since(start)
	span.SetAttributes(otelapi.DurationAttr(otelapi.DBDurationKey, elapsed))

	system := metric.WithAttributes(otelapi.StringAttr(otelapi.DBSystemKey, string(engine.Dialect())))
	m := metrics()
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, system)
	}
	if err != nil {
		otelapi.RecordError(ctx, err)
		return
	}
	if m.rows != nil {
		m.rows.Add(ctx, int64(rows), system)
	}
	span.SetAttributes(otelapi.IntAttr(otelapi.DBRowsKey, rows))
}
