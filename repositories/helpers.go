package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLExecutor lets repository methods run either on the pool or inside a
// caller-owned transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ErrStoreUnavailable marks infrastructure failures (connectivity, timeouts)
// as opposed to business outcomes. It is the only error class callers may
// retry with backoff.
var ErrStoreUnavailable = errors.New("roster store unavailable")

// storeError wraps a driver-level failure that is neither a not-found nor a
// constraint violation.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("check affected rows", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
