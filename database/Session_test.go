package database_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bignyap/go-sqlhelper/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteEngine(t *testing.T) *database.Engine {
	t.Helper()
	engine, err := database.NewEngine(database.ConnectionURL{
		DriverName: "sqlite+modernc",
		Database:   filepath.Join(t.TempDir(), "session.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	require.NoError(t, engine.Ping(context.Background()))
	_, err = engine.DB().Exec("CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	return engine
}

func countItems(t *testing.T, engine *database.Engine) int {
	t.Helper()
	var n int
	require.NoError(t, engine.DB().Get(&n, "SELECT COUNT(*) FROM items"))
	return n
}

func TestSessionFactory_RunCommits(t *testing.T) {
	engine := newSQLiteEngine(t)
	sf := database.NewSessionFactory(engine, nil)
	ctx := context.Background()

	err := sf.Run(ctx, func(s *database.Session) error {
		_, err := s.Exec(ctx, "INSERT INTO items (id, name) VALUES (:id, :name)",
			map[string]interface{}{"id": 1, "name": "pen"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countItems(t, engine))
}

func TestSessionFactory_RunRollsBackOnError(t *testing.T) {
	engine := newSQLiteEngine(t)
	sf := database.NewSessionFactory(engine, nil)
	ctx := context.Background()
	boom := errors.New("boom")

	err := sf.Run(ctx, func(s *database.Session) error {
		if _, err := s.Exec(ctx, "INSERT INTO items (id, name) VALUES (:id, :name)",
			map[string]interface{}{"id": 1, "name": "pen"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countItems(t, engine))
}

func TestSession_ManualLifecycle(t *testing.T) {
	engine := newSQLiteEngine(t)
	sf := database.NewSessionFactory(engine, nil)
	ctx := context.Background()

	s, err := sf.New(ctx)
	require.NoError(t, err)
	_, err = s.Exec(ctx, "INSERT INTO items (id, name) VALUES (:id, :name)",
		map[string]interface{}{"id": 7, "name": "cup"})
	require.NoError(t, err)

	rows, err := s.Query(ctx, "SELECT name FROM items WHERE id = :id", map[string]interface{}{"id": 7})
	require.NoError(t, err)
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{"cup"}, names)

	require.NoError(t, s.Commit())
	assert.ErrorIs(t, s.Commit(), database.ErrSessionClosed)
	_, err = s.Exec(ctx, "DELETE FROM items", nil)
	assert.ErrorIs(t, err, database.ErrSessionClosed)
	assert.Equal(t, 1, countItems(t, engine))
}

func TestSession_MissingParameter(t *testing.T) {
	engine := newSQLiteEngine(t)
	s, err := database.NewSessionFactory(engine, nil).New(context.Background())
	require.NoError(t, err)
	defer func() { _ = s.Rollback() }()

	_, err = s.Exec(context.Background(), "INSERT INTO items (id) VALUES (:id)", nil)
	assert.ErrorIs(t, err, database.ErrMissingParameter)
}
