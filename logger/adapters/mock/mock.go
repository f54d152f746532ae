package mock

import (
	"context"
	"sync"

	"github.com/bignyap/go-sqlhelper/logger/api"
)

// Mock implements the Logger interface for testing purposes. Loggers derived
// with WithFields or WithComponent record into the same store.
type Mock struct {
	store     *store
	component string
	fields    []api.Field
}

type store struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry represents a logged message
type LogEntry struct {
	Level     string
	Message   string
	Error     error
	Component string
	Fields    []api.Field
}

var _ api.Logger = (*Mock)(nil)

// NewMockLogger creates a new mock logger
func NewMockLogger() *Mock {
	return &Mock{store: &store{}}
}

func (m *Mock) record(level, msg string, err error, fields []api.Field) {
	all := make([]api.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = append(m.store.entries, LogEntry{
		Level:     level,
		Message:   msg,
		Error:     err,
		Component: m.component,
		Fields:    all,
	})
}

func (m *Mock) Debug(ctx context.Context, msg string, fields ...api.Field) {
	m.record("debug", msg, nil, fields)
}

func (m *Mock) Info(ctx context.Context, msg string, fields ...api.Field) {
	m.record("info", msg, nil, fields)
}

func (m *Mock) Warn(ctx context.Context, msg string, fields ...api.Field) {
	m.record("warn", msg, nil, fields)
}

func (m *Mock) Error(ctx context.Context, msg string, err error, fields ...api.Field) {
	m.record("error", msg, err, fields)
}

// WithFields returns a logger with fields set
func (m *Mock) WithFields(fields ...api.Field) api.Logger {
	merged := append(append([]api.Field{}, m.fields...), fields...)
	return &Mock{store: m.store, component: m.component, fields: merged}
}

// WithComponent returns a logger with component name set
func (m *Mock) WithComponent(component string) api.Logger {
	return &Mock{store: m.store, component: component, fields: m.fields}
}

// ToContext adds this logger to the context
func (m *Mock) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, api.LoggerContextKey, m)
	if m.component != "" {
		ctx = context.WithValue(ctx, api.ComponentKey, m.component)
	}
	return ctx
}

// Entries returns every recorded entry, optionally filtered by level.
func (m *Mock) Entries(level ...string) []LogEntry {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	if len(level) == 0 {
		return append([]LogEntry{}, m.store.entries...)
	}
	var out []LogEntry
	for _, e := range m.store.entries {
		for _, l := range level {
			if e.Level == l {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Messages returns the messages logged at level, in order.
func (m *Mock) Messages(level string) []string {
	var out []string
	for _, e := range m.Entries(level) {
		out = append(out, e.Message)
	}
	return out
}

// Clear clears all logged messages
func (m *Mock) Clear() {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.entries = nil
}
