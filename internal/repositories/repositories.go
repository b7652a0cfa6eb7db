package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/fetchmixes/internal/shared"
)

// querier is the subset of [sql.DB] and [sql.Tx] the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
//
// The pool holds a single connection, so fn must use tx for every statement.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storeError("failed to commit transaction", err)
	}
	return nil
}

func storeError(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", shared.ErrStore, what, err)
}
