package zerolog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bignyap/go-sqlhelper/logger/adapters/zerolog"
	"github.com/bignyap/go-sqlhelper/logger/api"
	"github.com/bignyap/go-sqlhelper/logger/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger(t *testing.T, level string) (*zerolog.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := config.DefaultConfig()
	cfg.Level = level
	cfg.Output = buf
	l, err := zerolog.NewZerologger(cfg)
	require.NoError(t, err)
	return l, buf
}

func TestLogger_WritesFieldsAndRunID(t *testing.T) {
	l, buf := newLogger(t, "info")

	ctx := api.WithRunID(context.Background(), "cell-7")
	l.WithComponent("registry").Info(ctx, "engine created", api.String("driver", "sqlite"))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "engine created", line["message"])
	assert.Equal(t, "cell-7", line["run_id"])
	assert.Equal(t, "registry", line["component"])
	assert.Equal(t, "sqlite", line["driver"])
}

func TestLogger_RespectsLevel(t *testing.T) {
	l, buf := newLogger(t, "warn")

	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "hidden too")
	assert.Zero(t, buf.Len())

	l.Error(context.Background(), "boom", errors.New("bad"))
	assert.True(t, strings.Contains(buf.String(), `"error":"bad"`))
}

func TestLogger_ToContext(t *testing.T) {
	l, _ := newLogger(t, "info")
	ctx := l.ToContext(context.Background())
	assert.Same(t, l, api.GetLoggerFromContext(ctx))
}

func TestNewZerologger_UnknownLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Level = "loud"

	_, err := zerolog.NewZerologger(cfg)
	assert.ErrorContains(t, err, `unknown log level "loud"`)
}
