package config

import (
	"fmt"

	sqlconfig "github.com/bignyap/go-sqlhelper/config"
)

// ExporterType defines the type of exporter to use
type ExporterType string

const (
	ExporterTypeConsole  ExporterType = "console"
	ExporterTypeOTLP     ExporterType = "otlp"
	ExporterTypeOTLPHTTP ExporterType = "otlp-http"
)

// SamplingType defines the type of sampling strategy
type SamplingType string

const (
	SamplingTypeAlwaysOn  SamplingType = "always-on"
	SamplingTypeAlwaysOff SamplingType = "always-off"
	SamplingTypeTraceID   SamplingType = "traceid-ratio"
)

// OtelConfig is the main configuration for OpenTelemetry
type OtelConfig struct {
	Resource ResourceConfig

	TraceExporter  ExporterConfig
	MetricExporter ExporterConfig

	Sampling SamplingConfig

	EnableTraces  bool
	EnableMetrics bool
}

// ResourceConfig contains service resource attributes
type ResourceConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceEnvironment string

	// CustomAttributes are additional resource attributes
	CustomAttributes map[string]string
}

// ExporterConfig contains exporter configuration
type ExporterConfig struct {
	Type ExporterType

	// Endpoint is host:port for OTLP, or a URL for OTLP over HTTP
	Endpoint string

	Headers map[string]string

	// Insecure disables TLS
	Insecure bool
}

// SamplingConfig contains sampling configuration
type SamplingConfig struct {
	Type SamplingType

	// Ratio is the sampling ratio (0.0 to 1.0) for traceid-ratio sampling
	Ratio float64
}

// Validate validates the configuration
func (c *OtelConfig) Validate() error {
	if c.Resource.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}

	if c.EnableTraces {
		if err := c.TraceExporter.Validate(); err != nil {
			return fmt.Errorf("trace exporter config invalid: %w", err)
		}
	}

	if c.EnableMetrics {
		if err := c.MetricExporter.Validate(); err != nil {
			return fmt.Errorf("metric exporter config invalid: %w", err)
		}
	}

	if c.Sampling.Type == SamplingTypeTraceID {
		if c.Sampling.Ratio < 0 || c.Sampling.Ratio > 1 {
			return fmt.Errorf("sampling ratio must be between 0.0 and 1.0")
		}
	}

	return nil
}

// Validate validates the exporter configuration
func (e *ExporterConfig) Validate() error {
	switch e.Type {
	case ExporterTypeConsole:
		return nil
	case ExporterTypeOTLP, ExporterTypeOTLPHTTP:
		if e.Endpoint == "" {
			return fmt.Errorf("%s endpoint is required", e.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown exporter type: %s", e.Type)
	}
}

// DefaultConfig traces and meters to the console, sampling everything.
func DefaultConfig() OtelConfig {
	return OtelConfig{
		Resource: ResourceConfig{
			ServiceName:        "sqlhelper",
			ServiceVersion:     "0.0.0",
			ServiceEnvironment: "development",
			CustomAttributes:   make(map[string]string),
		},
		TraceExporter: ExporterConfig{
			Type:     ExporterTypeConsole,
			Insecure: true,
		},
		MetricExporter: ExporterConfig{
			Type:     ExporterTypeConsole,
			Insecure: true,
		},
		Sampling: SamplingConfig{
			Type:  SamplingTypeAlwaysOn,
			Ratio: 1.0,
		},
		EnableTraces:  true,
		EnableMetrics: true,
	}
}

// FromSettings maps the [telemetry] section of config.ini. Both signals share
// one exporter. A ratio between zero and one switches to trace-id ratio
// sampling; zero counts as unset.
func FromSettings(t sqlconfig.TelemetryConfig) OtelConfig {
	cfg := DefaultConfig()
	cfg.EnableTraces = t.EnableTraces
	cfg.EnableMetrics = t.EnableMetrics

	if t.ServiceName != "" {
		cfg.Resource.ServiceName = t.ServiceName
	}
	if t.Environment != "" {
		cfg.Resource.ServiceEnvironment = t.Environment
	}

	exporter := ExporterConfig{
		Type:     ExporterType(t.Exporter),
		Endpoint: t.Endpoint,
		Insecure: t.Insecure,
	}
	if exporter.Type == "" {
		exporter.Type = ExporterTypeConsole
	}
	cfg.TraceExporter = exporter
	cfg.MetricExporter = exporter

	if t.SamplingRatio > 0 && t.SamplingRatio < 1 {
		cfg.Sampling = SamplingConfig{Type: SamplingTypeTraceID, Ratio: t.SamplingRatio}
	}
	return cfg
}
