// Package dbx is the record store gateway shared by repositories: a minimal
// interface (DBTX) implemented by both *sql.DB and *sql.Tx, a scoped
// transaction helper, and the classification of driver errors into the
// project's error taxonomy.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/questkeeper/internal/common"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// A failure to begin is reported as common.ErrorStoreUnavailable; a failed
// commit is classified like any other driver error, so a serialization
// failure detected at commit time surfaces as common.ErrorConflict.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, opts, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		// A lock that could not be taken within the busy timeout is a
		// retryable conflict, not an outage.
		if cerr := Classify(err); errors.Is(cerr, common.ErrorConflict) {
			return fmt.Errorf("begin: %w", cerr)
		}
		return fmt.Errorf("begin: %w: %v", common.ErrorStoreUnavailable, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit: %w", Classify(cerr))
		}
	}()

	err = fn(ctx, tx)
	return err
}
