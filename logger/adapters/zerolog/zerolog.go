package zerolog

import (
	"context"
	"fmt"
	"strings"

	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/bignyap/go-sqlhelper/logger/config"
	"github.com/rs/zerolog"
)

// Logger implements the Logger interface using zerolog
type Logger struct {
	log       zerolog.Logger
	component string
}

var _ api.Logger = (*Logger)(nil)

// NewZerologger creates a new zerolog-based logger
func NewZerologger(cfg config.LogConfig) (*Logger, error) {
	writer := cfg.Writer()

	var logger zerolog.Logger
	if cfg.Format == "pretty" && cfg.Environment == "dev" {
		consoleWriter := zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05"}
		logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(writer).With().Timestamp().Logger()
	}
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger = logger.Level(level)

	for k, v := range cfg.Fields {
		logger = logger.With().Interface(k, v).Logger()
	}

	return &Logger{log: logger}, nil
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...api.Field) {
	l.write(ctx, l.log.Debug(), msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...api.Field) {
	l.write(ctx, l.log.Info(), msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...api.Field) {
	l.write(ctx, l.log.Warn(), msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...api.Field) {
	event := l.log.Error()
	if err != nil {
		event = event.Err(err)
	}
	l.write(ctx, event, msg, fields)
}

func (l *Logger) WithFields(fields ...api.Field) api.Logger {
	if len(fields) == 0 {
		return l
	}
	ctx := l.log.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &Logger{log: ctx.Logger(), component: l.component}
}

func (l *Logger) WithComponent(component string) api.Logger {
	if component == "" {
		return l
	}
	return &Logger{log: l.log, component: component}
}

func (l *Logger) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, api.LoggerContextKey, l)
	if l.component != "" {
		ctx = context.WithValue(ctx, api.ComponentKey, l.component)
	}
	return ctx
}

// write is a no-op when the level is disabled; zerolog hands back a nil event.
func (l *Logger) write(ctx context.Context, event *zerolog.Event, msg string, fields []api.Field) {
	if event == nil {
		return
	}
	if runID := api.GetRunIDFromContext(ctx); runID != "" {
		event.Str("run_id", runID)
	}
	if l.component != "" {
		event.Str("component", l.component)
	}
	for _, f := range fields {
		event.Interface(f.Key, f.Value)
	}
	event.Msg(msg)
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "none", "off", "silent":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
