package otel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bignyap/go-sqlhelper/otel/api"
	"github.com/bignyap/go-sqlhelper/otel/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"
)

const metricInterval = 10 * time.Second

// OtelProvider implements api.Provider with the OpenTelemetry SDK and
// installs its providers as the otel globals, where otelpgx and the query
// package pick them up.
type OtelProvider struct {
	config         config.OtelConfig
	resource       *resource.Resource
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

var _ api.Provider = (*OtelProvider)(nil)

func NewOtelProvider(cfg config.OtelConfig) (*OtelProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := &OtelProvider{config: cfg}

	res, err := p.createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	p.resource = res

	if cfg.EnableTraces {
		exporter, err := p.createTraceExporter()
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		p.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(p.resource),
			sdktrace.WithSampler(p.createSampler()),
		)
		otel.SetTracerProvider(p.tracerProvider)
	}

	if cfg.EnableMetrics {
		exporter, err := p.createMetricExporter()
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricInterval))),
			sdkmetric.WithResource(p.resource),
		)
		otel.SetMeterProvider(p.meterProvider)
	}

	return p, nil
}

func (p *OtelProvider) createResource() (*resource.Resource, error) {
	opts := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceName(p.config.Resource.ServiceName),
			semconv.ServiceVersion(p.config.Resource.ServiceVersion),
		),
	}
	if env := p.config.Resource.ServiceEnvironment; env != "" {
		opts = append(opts, resource.WithAttributes(semconv.DeploymentEnvironment(env)))
	}
	for key, value := range p.config.Resource.CustomAttributes {
		opts = append(opts, resource.WithAttributes(api.StringAttr(key, value)))
	}
	return resource.New(context.Background(), opts...)
}

// isURL reports whether endpoint carries a scheme; OTLP/HTTP accepts either
// a full URL or host:port.
func isURL(endpoint string) bool {
	return strings.Contains(endpoint, "://")
}

func (p *OtelProvider) createTraceExporter() (sdktrace.SpanExporter, error) {
	e := p.config.TraceExporter
	switch e.Type {
	case config.ExporterTypeConsole:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())

	case config.ExporterTypeOTLPHTTP:
		var opts []otlptracehttp.Option
		if isURL(e.Endpoint) {
			opts = append(opts, otlptracehttp.WithEndpointURL(e.Endpoint))
		} else {
			opts = append(opts, otlptracehttp.WithEndpoint(e.Endpoint))
		}
		if e.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if len(e.Headers) > 0 {
			opts = append(opts, otlptracehttp.WithHeaders(e.Headers))
		}
		return otlptracehttp.New(context.Background(), opts...)

	case config.ExporterTypeOTLP:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(e.Endpoint)}
		if e.Insecure {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		if len(e.Headers) > 0 {
			opts = append(opts, otlptracegrpc.WithHeaders(e.Headers))
		}
		return otlptracegrpc.New(context.Background(), opts...)

	default:
		return nil, fmt.Errorf("unsupported trace exporter type: %s", e.Type)
	}
}

func (p *OtelProvider) createMetricExporter() (sdkmetric.Exporter, error) {
	e := p.config.MetricExporter
	switch e.Type {
	case config.ExporterTypeConsole:
		return stdoutmetric.New(stdoutmetric.WithPrettyPrint())

	case config.ExporterTypeOTLPHTTP:
		var opts []otlpmetrichttp.Option
		if isURL(e.Endpoint) {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(e.Endpoint))
		} else {
			opts = append(opts, otlpmetrichttp.WithEndpoint(e.Endpoint))
		}
		if e.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if len(e.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(e.Headers))
		}
		return otlpmetrichttp.New(context.Background(), opts...)

	case config.ExporterTypeOTLP:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(e.Endpoint)}
		if e.Insecure {
			opts = append(opts, otlpmetricgrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		if len(e.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(e.Headers))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)

	default:
		return nil, fmt.Errorf("unsupported metric exporter type: %s", e.Type)
	}
}

func (p *OtelProvider) createSampler() sdktrace.Sampler {
	switch p.config.Sampling.Type {
	case config.SamplingTypeAlwaysOff:
		return sdktrace.NeverSample()
	case config.SamplingTypeTraceID:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.config.Sampling.Ratio))
	default:
		return sdktrace.AlwaysSample()
	}
}

func (p *OtelProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if p.tracerProvider == nil {
		return tracenoop.NewTracerProvider().Tracer(name)
	}
	return p.tracerProvider.Tracer(name, opts...)
}

func (p *OtelProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if p.meterProvider == nil {
		return noop.NewMeterProvider().Meter(name)
	}
	return p.meterProvider.Meter(name, opts...)
}

func (p *OtelProvider) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
