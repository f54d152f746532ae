package factory

import (
	"fmt"
	"os"
	"sync"

	"github.com/bignyap/go-sqlhelper/logger/adapters/zerolog"
	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/bignyap/go-sqlhelper/logger/config"
)

var (
	mu               sync.RWMutex
	globalLogger     api.Logger
	globalLoggerOnce sync.Once
)

// NewLogger creates a new logger instance based on configuration
func NewLogger(cfg config.LogConfig) (api.Logger, error) {
	// Currently we only support zerolog
	return zerolog.NewZerologger(cfg)
}

// GetGlobalLogger returns the global logger instance, creating it if needed
func GetGlobalLogger() api.Logger {
	globalLoggerOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if globalLogger != nil {
			return
		}
		logger, err := NewLogger(config.DefaultConfig())
		if err != nil {
			// We can't use a logger to log logger creation failure
			fmt.Fprintf(os.Stderr, "Failed to create global logger: %v\n", err)
			globalLogger = &api.DefaultLogger{}
			return
		}
		globalLogger = logger
	})

	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// SetGlobalLogger replaces the global logger with the provided instance
func SetGlobalLogger(logger api.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	globalLogger = logger
}

// Reset resets the global logger to nil, forcing recreation on next call
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}
