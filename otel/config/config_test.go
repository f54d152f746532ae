package config_test

import (
	"testing"

	sqlconfig "github.com/bignyap/go-sqlhelper/config"
	"github.com/bignyap/go-sqlhelper/otel/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSettings(t *testing.T) {
	cfg := config.FromSettings(sqlconfig.TelemetryConfig{
		EnableTraces:  true,
		ServiceName:   "reports",
		Environment:   "prod",
		Exporter:      "otlp",
		Endpoint:      "collector:4317",
		Insecure:      true,
		SamplingRatio: 0.5,
	})

	assert.True(t, cfg.EnableTraces)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, "reports", cfg.Resource.ServiceName)
	assert.Equal(t, "prod", cfg.Resource.ServiceEnvironment)
	assert.Equal(t, config.ExporterTypeOTLP, cfg.TraceExporter.Type)
	assert.Equal(t, cfg.TraceExporter, cfg.MetricExporter)
	assert.Equal(t, config.SamplingConfig{Type: config.SamplingTypeTraceID, Ratio: 0.5}, cfg.Sampling)
	require.NoError(t, cfg.Validate())
}

func TestFromSettings_Defaults(t *testing.T) {
	cfg := config.FromSettings(sqlconfig.TelemetryConfig{EnableMetrics: true, SamplingRatio: 1})

	assert.Equal(t, "sqlhelper", cfg.Resource.ServiceName)
	assert.Equal(t, config.ExporterTypeConsole, cfg.MetricExporter.Type)
	assert.Equal(t, config.SamplingTypeAlwaysOn, cfg.Sampling.Type)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.OtelConfig)
	}{
		{"missing service name", func(c *config.OtelConfig) { c.Resource.ServiceName = "" }},
		{"otlp without endpoint", func(c *config.OtelConfig) { c.TraceExporter.Type = config.ExporterTypeOTLP }},
		{"unknown exporter", func(c *config.OtelConfig) { c.MetricExporter.Type = "zipkin" }},
		{"ratio out of range", func(c *config.OtelConfig) {
			c.Sampling = config.SamplingConfig{Type: config.SamplingTypeTraceID, Ratio: 2}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
