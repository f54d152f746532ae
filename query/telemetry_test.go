package query_test

import (
	"context"
	"testing"

	"github.com/bignyap/go-sqlhelper/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestToDataFrame_RecordsSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, err := query.ToDataFrame(context.Background(), sharedEngine(t),
		"SELECT id FROM sales WHERE region = :region", map[string]interface{}{"region": "north"})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "query.frame", spans[0].Name())

	a := attrs(spans[0])
	assert.Equal(t, "sqlite", a["db.system"].AsString())
	assert.Equal(t, []string{"region"}, a["db.params"].AsStringSlice())
	assert.Equal(t, int64(2), a["db.rows"].AsInt64())
	require.Contains(t, a, attribute.Key("db.duration_ms"))
	assert.GreaterOrEqual(t, a["db.duration_ms"].AsInt64(), int64(0))
}

func TestToDataFrame_SpanRecordsError(t *testing.T) {
	recorder := recordSpans(t)

	_, err := query.ToDataFrame(context.Background(), sharedEngine(t),
		"SELECT * FROM no_such_table WHERE id = :id", map[string]interface{}{"id": 1})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
