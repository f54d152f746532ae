package factory

import (
	"context"
	"sync"

	"github.com/bignyap/go-sqlhelper/otel/adapters/otel"
	"github.com/bignyap/go-sqlhelper/otel/api"
	"github.com/bignyap/go-sqlhelper/otel/config"
)

var (
	globalProvider   api.Provider
	globalProviderMu sync.RWMutex
)

// NewProvider creates a new OpenTelemetry provider based on configuration
func NewProvider(cfg config.OtelConfig) (api.Provider, error) {
	return otel.NewOtelProvider(cfg)
}

// GetGlobalProvider returns the installed provider, or nil when telemetry
// was never set up.
func GetGlobalProvider() api.Provider {
	globalProviderMu.RLock()
	defer globalProviderMu.RUnlock()
	return globalProvider
}

// SetGlobalProvider replaces the global provider with the provided instance
func SetGlobalProvider(provider api.Provider) {
	if provider != nil {
		globalProviderMu.Lock()
		globalProvider = provider
		globalProviderMu.Unlock()
	}
}

// Shutdown flushes and stops the global provider, if any.
func Shutdown(ctx context.Context) error {
	globalProviderMu.RLock()
	provider := globalProvider
	globalProviderMu.RUnlock()

	if provider != nil {
		return provider.Shutdown(ctx)
	}
	return nil
}

func Reset() {
	globalProviderMu.Lock()
	globalProvider = nil
	globalProviderMu.Unlock()
}
