package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bignyap/go-sqlhelper/config"
	"github.com/bignyap/go-sqlhelper/logger/adapters/mock"
	"github.com/bignyap/go-sqlhelper/logger/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Path: "test.ini",
		Database: config.DatabaseConfig{
			DriverName: "sqlite+modernc",
			Database:   filepath.Join(t.TempDir(), "registry.db"),
		},
	}
}

type counters struct {
	mu      sync.Mutex
	loads   int
	engines int
}

func countingRegistry(t *testing.T, cfg *config.Config, loadErr error) (*Registry, *counters) {
	t.Helper()
	c := &counters{}
	r := newRegistry(
		func() (*config.Config, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.loads++
			if loadErr != nil {
				return nil, loadErr
			}
			return cfg, nil
		},
		func(u ConnectionURL, pool *ConnectionPoolConfig) (*Engine, error) {
			c.mu.Lock()
			c.engines++
			c.mu.Unlock()
			return NewEngine(u, pool)
		},
	)
	t.Cleanup(func() {
		if r.engine != nil {
			_ = r.engine.Close()
		}
	})
	return r, c
}

func TestRegistry_EngineIsMemoized(t *testing.T) {
	r, c := countingRegistry(t, sqliteConfig(t), nil)

	first, err := r.Engine()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.Engine()
		require.NoError(t, err)
		assert.Same(t, first, again)
	}
	assert.Equal(t, 1, c.loads)
	assert.Equal(t, 1, c.engines)
}

func TestRegistry_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	r, c := countingRegistry(t, sqliteConfig(t), nil)

	var wg sync.WaitGroup
	engines := make([]*Engine, 16)
	for i := range engines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engines[i], _ = r.Engine()
		}(i)
	}
	wg.Wait()

	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}
	assert.Equal(t, 1, c.engines)
}

func TestRegistry_SessionFactoryBoundToEngine(t *testing.T) {
	r, _ := countingRegistry(t, sqliteConfig(t), nil)

	sf, err := r.SessionFactory()
	require.NoError(t, err)
	engine, err := r.Engine()
	require.NoError(t, err)
	assert.Same(t, engine, sf.Engine())

	again, err := r.SessionFactory()
	require.NoError(t, err)
	assert.Same(t, sf, again)
}

func TestRegistry_URLReturnsCopy(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Driver = "SQLite3 ODBC"
	r, _ := countingRegistry(t, cfg, nil)

	u, err := r.URL()
	require.NoError(t, err)
	u.Query["driver"] = "changed"

	again, err := r.URL()
	require.NoError(t, err)
	assert.Equal(t, "SQLite3 ODBC", again.Query["driver"])
}

func TestRegistry_FailedLoadIsRetried(t *testing.T) {
	loadErr := &config.ConfigurationError{Path: "config.ini", Err: os.ErrNotExist}
	r, c := countingRegistry(t, nil, loadErr)

	_, err := r.Engine()
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))

	_, err = r.SessionFactory()
	require.Error(t, err)
	assert.Equal(t, 2, c.loads)
	assert.Nil(t, r.url)
	assert.Nil(t, r.engine)
}

func TestRegistry_UnsupportedDriverIsConfigurationError(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.DriverName = "oracle"
	r, _ := countingRegistry(t, cfg, nil)

	_, err := r.URL()
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "drivername", cfgErr.Key)
}

func TestRegistry_DirectInstantiationFails(t *testing.T) {
	var r Registry

	_, err := r.URL()
	var instErr *InstantiationError
	assert.True(t, errors.As(err, &instErr))

	_, err = r.Engine()
	assert.True(t, errors.As(err, &instErr))

	_, err = r.SessionFactory()
	assert.True(t, errors.As(err, &instErr))

	_, err = (&Registry{}).Config()
	assert.True(t, errors.As(err, &instErr))
}

func TestWithEngine_InjectsDefaultEngine(t *testing.T) {
	r, c := countingRegistry(t, sqliteConfig(t), nil)
	saved := defaultRegistry
	defaultRegistry = r
	t.Cleanup(func() { defaultRegistry = saved })

	driverOf := WithEngine(func(ctx context.Context, engine *Engine, suffix string) (string, error) {
		return string(engine.DriverName()) + suffix, nil
	})

	got, err := driverOf(context.Background(), "!")
	require.NoError(t, err)
	assert.Equal(t, "sqlite!", got)

	_, err = driverOf(context.Background(), "?")
	require.NoError(t, err)
	assert.Equal(t, 1, c.engines)
}

func TestWithEngine_PropagatesRegistryError(t *testing.T) {
	r, _ := countingRegistry(t, nil, errors.New("no config"))
	saved := defaultRegistry
	defaultRegistry = r
	t.Cleanup(func() { defaultRegistry = saved })

	op := WithEngine(func(ctx context.Context, engine *Engine, n int) (int, error) {
		return n, nil
	})
	_, err := op(context.Background(), 1)
	assert.EqualError(t, err, "no config")
}

func TestRegistry_PasswordReference(t *testing.T) {
	t.Setenv("SQLHELPER_TEST_DB_PASSWORD", "s3cret")
	cfg := sqliteConfig(t)
	cfg.Database.Username = "analyst"
	cfg.Database.Password = "env:SQLHELPER_TEST_DB_PASSWORD"
	r, _ := countingRegistry(t, cfg, nil)

	u, err := r.URL()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", u.Password)
}

func TestRegistry_UnresolvablePassword(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Password = "env:SQLHELPER_TEST_NOT_SET"
	r, c := countingRegistry(t, cfg, nil)

	_, err := r.Engine()
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "password", cfgErr.Key)
	assert.Equal(t, 0, c.engines)
}

func TestRegistry_BadLoggingSectionIsReported(t *testing.T) {
	log := mock.NewMockLogger()
	factory.SetGlobalLogger(log)
	t.Cleanup(factory.Reset)

	cfg := sqliteConfig(t)
	cfg.Logging.Level = "loud"
	r, _ := countingRegistry(t, cfg, nil)

	_, err := r.URL()
	require.NoError(t, err)

	assert.Same(t, log, factory.GetGlobalLogger())
	warnings := log.Entries("warn")
	require.Len(t, warnings, 1)
	assert.Equal(t, "[logging] ignored", warnings[0].Message)
	assert.Equal(t, "database", warnings[0].Component)
}
