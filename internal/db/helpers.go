// Package db holds schema introspection helpers for the MySQL store.
package db

import (
	"context"
	"database/sql"
	"errors"
)

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// HasColumn reports whether table in the current schema has column.
func HasColumn(ctx context.Context, q QueryRower, table, column string) (bool, error) {
	var name string
	err := q.QueryRowContext(ctx, `SELECT column_name FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ? AND column_name = ? LIMIT 1`, table, column).Scan(&name)
	return found(err)
}

func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, err
	}
}
