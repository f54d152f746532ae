package api

import (
	"context"
	"fmt"
	"time"
)

// Logger is the logging contract used across the library. Every method takes
// the caller's context so request-scoped fields (run id, component) follow the
// call without being threaded through by hand.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, err error, fields ...Field)

	WithFields(fields ...Field) Logger
	WithComponent(component string) Logger

	ToContext(ctx context.Context) context.Context
}

// Field is a key-value pair attached to a log line.
type Field struct {
	Key   string
	Value interface{}
}

func (f Field) String() string {
	return fmt.Sprintf("%s=%v", f.Key, f.Value)
}

func String(key string, val string) Field {
	return Field{Key: key, Value: val}
}

func Int(key string, val int) Field {
	return Field{Key: key, Value: val}
}

func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Value: val}
}

func Bool(key string, val bool) Field {
	return Field{Key: key, Value: val}
}

func Any(key string, val interface{}) Field {
	return Field{Key: key, Value: val}
}

// ErrorField returns a Field representing an error
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

type contextKey string

const (
	LoggerContextKey contextKey = "logger"
	RunIDKey         contextKey = "run-id"
	ComponentKey     contextKey = "component"
)

// WithRunID tags ctx so every line logged with it carries run_id. Notebooks
// use it to group the queries issued by a single cell execution.
func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, RunIDKey, runID)
}

func GetLoggerFromContext(ctx context.Context) Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(LoggerContextKey).(Logger); ok {
		return logger
	}
	return nil
}

func GetRunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// DefaultLogger is a no-op logger that satisfies the api.Logger interface
type DefaultLogger struct{}

func (d *DefaultLogger) Debug(ctx context.Context, msg string, args ...Field) {}
func (d *DefaultLogger) Info(ctx context.Context, msg string, args ...Field)  {}
func (d *DefaultLogger) Warn(ctx context.Context, msg string, args ...Field)  {}
func (d *DefaultLogger) Error(ctx context.Context, msg string, err error, args ...Field) {
}
func (d *DefaultLogger) WithFields(fields ...Field) Logger             { return d }
func (d *DefaultLogger) WithComponent(component string) Logger         { return d }
func (d *DefaultLogger) ToContext(ctx context.Context) context.Context { return ctx }
