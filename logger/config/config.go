package config

import (
	"io"
	"os"
	"strings"
)

// LogConfig defines all configuration options for loggers
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error, none)
	Level string

	// Format determines the output format (json, pretty)
	Format string

	// Environment affects logging behavior (dev, test, prod)
	Environment string

	// Output receives the log lines. Nil means stderr, which keeps notebook
	// cell output (stdout) free of log noise.
	Output io.Writer

	// Fields contains default fields to add to all log messages
	Fields map[string]interface{}
}

// Writer returns the configured output.
func (c *LogConfig) Writer() io.Writer {
	if c.Output == nil {
		return os.Stderr
	}
	return c.Output
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		Environment: "dev",
		Fields:      map[string]interface{}{},
	}
}

// DevelopmentConfig returns a configuration optimized for development
func DevelopmentConfig() LogConfig {
	config := DefaultConfig()
	config.Level = "debug"
	config.Format = "pretty"
	return config
}

// FromSettings overlays the [logging] section values on DefaultConfig.
// Empty values keep the default.
func FromSettings(level, format, environment string) LogConfig {
	config := DefaultConfig()
	if level != "" {
		config.Level = strings.ToLower(level)
	}
	if format != "" {
		config.Format = strings.ToLower(format)
	}
	if environment != "" {
		config.Environment = strings.ToLower(environment)
	}
	return config
}
