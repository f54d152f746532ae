package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrSessionClosed is returned by a Session used after Commit or Rollback.
var ErrSessionClosed = errors.New("session already committed or rolled back")

// SessionFactory produces transactional sessions bound to one Engine.
type SessionFactory struct {
	engine *Engine
	opts   *sql.TxOptions
}

func NewSessionFactory(engine *Engine, opts *sql.TxOptions) *SessionFactory {
	return &SessionFactory{engine: engine, opts: opts}
}

func (f *SessionFactory) Engine() *Engine {
	return f.engine
}

// New begins a transaction and wraps it in a Session.
func (f *SessionFactory) New(ctx context.Context) (*Session, error) {
	tx, err := f.engine.db.BeginTxx(ctx, f.opts)
	if err != nil {
		return nil, WrapError("begin session", err)
	}
	return &Session{tx: tx, engine: f.engine}, nil
}

// Run executes fn inside a new session, committing when fn returns nil and
// rolling back otherwise.
func (f *SessionFactory) Run(ctx context.Context, fn func(*Session) error) error {
	return WithTransaction(ctx, f.engine.db, f.opts, func(tx *sqlx.Tx) error {
		return fn(&Session{tx: tx, engine: f.engine, managed: true})
	})
}

// Session is one unit of work. It is not safe for concurrent use.
type Session struct {
	tx      *sqlx.Tx
	engine  *Engine
	done    bool
	managed bool
}

func (s *Session) Engine() *Engine {
	return s.engine
}

// Exec runs a ":name" parameterized statement.
func (s *Session) Exec(ctx context.Context, query string, params map[string]interface{}) (sql.Result, error) {
	if s.done {
		return nil, ErrSessionClosed
	}
	stmt, args, err := s.prepare(query, params)
	if err != nil {
		return nil, err
	}
	res, err := s.tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, WrapError("exec", err)
	}
	return res, nil
}

// Query runs a ":name" parameterized query. The caller closes the rows.
func (s *Session) Query(ctx context.Context, query string, params map[string]interface{}) (*sqlx.Rows, error) {
	if s.done {
		return nil, ErrSessionClosed
	}
	stmt, args, err := s.prepare(query, params)
	if err != nil {
		return nil, err
	}
	rows, err := s.tx.QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, WrapError("query", err)
	}
	return rows, nil
}

func (s *Session) prepare(query string, params map[string]interface{}) (string, []interface{}, error) {
	cq, err := CompileNamed(query, s.engine.BindType())
	if err != nil {
		return "", nil, err
	}
	if cq, err = cq.Bind(params); err != nil {
		return "", nil, err
	}
	args, err := cq.Args()
	if err != nil {
		return "", nil, err
	}
	return cq.SQL, args, nil
}

func (s *Session) Commit() error {
	if s.managed {
		return fmt.Errorf("commit: session is managed by SessionFactory.Run")
	}
	if s.done {
		return ErrSessionClosed
	}
	s.done = true
	return WrapError("commit", s.tx.Commit())
}

func (s *Session) Rollback() error {
	if s.managed {
		return fmt.Errorf("rollback: session is managed by SessionFactory.Run")
	}
	if s.done {
		return ErrSessionClosed
	}
	s.done = true
	return WrapError("rollback", s.tx.Rollback())
}
