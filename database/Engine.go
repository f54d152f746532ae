package database

import (
	"context"
	"fmt"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

func init() {
	// sqlx has no placeholder style registered for the pure-Go sqlite driver.
	sqlx.BindDriver(string(PureGoSQLiteDriver), sqlx.QUESTION)
}

// Engine is a ready-to-use handle over a database connection pool. Creating
// one does not dial the server; the first query or Ping does.
type Engine struct {
	db      *sqlx.DB
	url     ConnectionURL
	dialect Dialect
	driver  Driver
	pool    *ConnectionPoolConfig
}

// NewEngine opens a pool for u. A nil pool uses DefaultPoolConfig.
func NewEngine(u ConnectionURL, pool *ConnectionPoolConfig) (*Engine, error) {
	dialect, driver, err := ParseDriver(u.DriverName)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = DefaultPoolConfig()
	}

	dsn, err := u.DSN()
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	if driver == PgxDriver {
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pgx DSN: %w", err)
		}
		if pool.EnableTelemetry {
			cfg.Tracer = otelpgx.NewTracer()
		}
		db = sqlx.NewDb(stdlib.OpenDB(*cfg), string(PgxDriver))
	} else {
		db, err = sqlx.Open(string(driver), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open DB using driver %s: %w", driver, err)
		}
	}

	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	return &Engine{
		db:      db,
		url:     u.clone(),
		dialect: dialect,
		driver:  driver,
		pool:    pool,
	}, nil
}

func (e *Engine) DB() *sqlx.DB {
	return e.db
}

func (e *Engine) URL() ConnectionURL {
	return e.url.clone()
}

func (e *Engine) Dialect() Dialect {
	return e.dialect
}

func (e *Engine) DriverName() Driver {
	return e.driver
}

// BindType reports the placeholder style of the driver, as sqlx numbers them.
func (e *Engine) BindType() int {
	return sqlx.BindType(string(e.driver))
}

func (e *Engine) PoolConfig() ConnectionPoolConfig {
	return *e.pool
}

func (e *Engine) Ping(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping DB: %w", err)
	}
	return nil
}

func (e *Engine) Close() error {
	return e.db.Close()
}
