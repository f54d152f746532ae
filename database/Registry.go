package database

import (
	"context"
	"sync"

	"github.com/bignyap/go-sqlhelper/config"
	"github.com/bignyap/go-sqlhelper/logger/api"
	logconfig "github.com/bignyap/go-sqlhelper/logger/config"
	"github.com/bignyap/go-sqlhelper/logger/factory"
	"github.com/bignyap/go-sqlhelper/otel/initialize"
	"github.com/bignyap/go-sqlhelper/secrets"
)

// Registry holds the process-wide connection URL, Engine and SessionFactory.
// Each is built on first use, in that order, and never rebuilt. A failed build
// leaves the field empty so a later call can retry once the cause is fixed.
//
// The only usable Registry is the one returned by Default; a Registry
// declared any other way reports InstantiationError.
type Registry struct {
	mu sync.Mutex

	live      bool
	load      func() (*config.Config, error)
	newEngine func(ConnectionURL, *ConnectionPoolConfig) (*Engine, error)

	cfg      *config.Config
	url      *ConnectionURL
	engine   *Engine
	sessions *SessionFactory
}

var defaultRegistry = newRegistry(config.LoadDefault, NewEngine)

func newRegistry(
	load func() (*config.Config, error),
	newEngine func(ConnectionURL, *ConnectionPoolConfig) (*Engine, error),
) *Registry {
	return &Registry{live: true, load: load, newEngine: newEngine}
}

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

func (r *Registry) log() api.Logger {
	return factory.GetGlobalLogger().WithComponent("database")
}

func (r *Registry) check() error {
	if r == nil || !r.live {
		return &InstantiationError{Type: "database.Registry"}
	}
	return nil
}

// URL returns the connection URL, reading config.ini the first time.
func (r *Registry) URL() (ConnectionURL, error) {
	if err := r.check(); err != nil {
		return ConnectionURL{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, err := r.urlLocked()
	if err != nil {
		return ConnectionURL{}, err
	}
	return u.clone(), nil
}

func (r *Registry) urlLocked() (*ConnectionURL, error) {
	if r.url != nil {
		return r.url, nil
	}

	cfg, err := r.load()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = secrets.Resolve(context.Background(), cfg.Database.Password); err != nil {
		return nil, &config.ConfigurationError{
			Path:    cfg.Path,
			Section: config.SectionDatabase,
			Key:     "password",
			Err:     err,
		}
	}
	u, err := BuildURL(cfg.Database)
	if err != nil {
		return nil, &config.ConfigurationError{
			Path:    cfg.Path,
			Section: config.SectionDatabase,
			Key:     "drivername",
			Err:     err,
		}
	}

	r.applyLogging(cfg.Logging)
	r.applyTelemetry(cfg.Telemetry)
	r.cfg = cfg
	r.url = &u
	return r.url, nil
}

// applyLogging installs a global logger built from [logging] when the
// section sets a level. On failure the current logger stays and says why.
func (r *Registry) applyLogging(cfg config.LoggingConfig) {
	if cfg.Level == "" {
		return
	}
	logger, err := factory.NewLogger(logconfig.FromSettings(cfg.Level, cfg.Format, cfg.Environment))
	if err != nil {
		r.log().Warn(context.Background(), "[logging] ignored", api.String("level", cfg.Level), api.ErrorField(err))
		return
	}
	factory.SetGlobalLogger(logger)
}

// applyTelemetry installs the [telemetry] provider. Telemetry is optional, so
// a failure is logged and the registry carries on without it.
func (r *Registry) applyTelemetry(cfg config.TelemetryConfig) {
	if _, err := initialize.FromSettings(cfg); err != nil {
		r.log().Warn(context.Background(), "telemetry disabled", api.ErrorField(err))
	}
}

// Engine returns the shared Engine, creating it at most once per process.
func (r *Registry) Engine() (*Engine, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.engineLocked()
}

func (r *Registry) engineLocked() (*Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	u, err := r.urlLocked()
	if err != nil {
		return nil, err
	}
	engine, err := r.newEngine(u.clone(), PoolConfigFrom(r.cfg.Database.Pool))
	if err != nil {
		return nil, err
	}

	r.log().Info(context.Background(), "engine created",
		api.String("url", u.String()),
		api.String("driver", string(engine.DriverName())),
	)
	r.engine = engine
	return r.engine, nil
}

// SessionFactory returns the shared SessionFactory bound to Engine.
func (r *Registry) SessionFactory() (*SessionFactory, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions != nil {
		return r.sessions, nil
	}
	engine, err := r.engineLocked()
	if err != nil {
		return nil, err
	}
	r.sessions = NewSessionFactory(engine, nil)
	return r.sessions, nil
}

// Config returns the configuration the URL was built from, loading it if
// needed.
func (r *Registry) Config() (*config.Config, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.urlLocked(); err != nil {
		return nil, err
	}
	return r.cfg, nil
}

func GetURL() (ConnectionURL, error) {
	return Default().URL()
}

func GetEngine() (*Engine, error) {
	return Default().Engine()
}

func GetSessionFactory() (*SessionFactory, error) {
	return Default().SessionFactory()
}

// WithEngine adapts op, which takes the engine explicitly, into a function
// that resolves the shared Engine on each call and forwards arg unchanged.
func WithEngine[A, T any](op func(ctx context.Context, engine *Engine, arg A) (T, error)) func(context.Context, A) (T, error) {
	return func(ctx context.Context, arg A) (T, error) {
		engine, err := GetEngine()
		if err != nil {
			var zero T
			return zero, err
		}
		return op(ctx, engine, arg)
	}
}
