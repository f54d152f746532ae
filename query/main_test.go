package query_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bignyap/go-sqlhelper/database"
)

var fixtureDir string

// TestMain points the shared registry at a throwaway sqlite database so the
// engine-less helpers can be exercised.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "query-test")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fixtureDir = dir

	code, err := run(m, dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func run(m *testing.M, dir string) (int, error) {
	dbPath := filepath.Join(dir, "shared.db")
	ini := fmt.Sprintf(`[database]
drivername = sqlite+modernc
host =
database = %s
driver = SQLite3 ODBC Driver
trusted_connection = no

[logging]
level = none
`, dbPath)
	cfgPath := filepath.Join(dir, "config.ini")
	if err := os.WriteFile(cfgPath, []byte(ini), 0o644); err != nil {
		return 1, err
	}
	if err := os.Setenv("SQLHELPER_CONFIG", cfgPath); err != nil {
		return 1, err
	}

	engine, err := database.GetEngine()
	if err != nil {
		return 1, err
	}
	defer engine.Close()
	if err := seed(context.Background(), engine); err != nil {
		return 1, err
	}
	return m.Run(), nil
}

func seed(ctx context.Context, engine *database.Engine) error {
	stmts := []string{
		`CREATE TABLE sales (id INTEGER PRIMARY KEY, region TEXT, amount REAL, note TEXT)`,
		`INSERT INTO sales VALUES (1, 'north', 10.5, NULL)`,
		`INSERT INTO sales VALUES (2, 'south', 20.0, 'late')`,
		`INSERT INTO sales VALUES (3, 'north', 7.25, NULL)`,
	}
	for _, s := range stmts {
		if _, err := engine.DB().ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
