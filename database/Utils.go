package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type TxFunc func(*sqlx.Tx) error

// WithTransaction runs fn in a transaction, rolling back when it fails.
func WithTransaction(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn TxFunc) error {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
