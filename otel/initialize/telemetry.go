package initialize

import (
	"context"
	"fmt"

	sqlconfig "github.com/bignyap/go-sqlhelper/config"
	"github.com/bignyap/go-sqlhelper/otel/api"
	"github.com/bignyap/go-sqlhelper/otel/config"
	"github.com/bignyap/go-sqlhelper/otel/factory"
)

// FromSettings builds a provider from the [telemetry] section and installs it
// globally. It returns a nil provider when both traces and metrics are off.
func FromSettings(t sqlconfig.TelemetryConfig) (api.Provider, error) {
	if !t.EnableTraces && !t.EnableMetrics {
		return nil, nil
	}

	provider, err := factory.NewProvider(config.FromSettings(t))
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	factory.SetGlobalProvider(provider)
	return provider, nil
}

// ShutdownTelemetry gracefully shuts down the telemetry provider.
// It's safe to call with a nil provider.
func ShutdownTelemetry(ctx context.Context, provider api.Provider) error {
	if provider == nil {
		return nil
	}
	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown telemetry provider: %w", err)
	}
	return nil
}
