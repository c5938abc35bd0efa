package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Classify maps a driver error onto the common error taxonomy. The original
// error text is kept for logs; callers only ever match the sentinel.
// Errors that already carry a sentinel are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", common.ErrorNotFound, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %v", classifyPostgres(pgErr.Code), err)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return fmt.Errorf("%w: %v", classifySQLite(liteErr.Code(), liteErr.Error()), err)
	}

	return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
}

func isClassified(err error) bool {
	for _, s := range []error{
		common.ErrorNotFound,
		common.ErrorAccessDenied,
		common.ErrorConflict,
		common.ErrorInvalidInput,
		common.ErrorPersistence,
		common.ErrorStoreUnavailable,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

func classifyPostgres(code string) error {
	switch code {
	case "40001", "40P01", "23505":
		return common.ErrorConflict
	}
	switch {
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"), strings.HasPrefix(code, "53"):
		return common.ErrorStoreUnavailable
	}
	return common.ErrorPersistence
}

func classifySQLite(code int, msg string) error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return common.ErrorConflict
	}
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return common.ErrorConflict
	case sqlite3.SQLITE_CONSTRAINT:
		if strings.Contains(msg, "UNIQUE constraint failed") {
			return common.ErrorConflict
		}
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
		return common.ErrorStoreUnavailable
	}
	return common.ErrorPersistence
}
