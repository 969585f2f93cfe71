// Package postgres implements the service repositories against PostgreSQL.
// Lists push filtering, sorting and paging into SQL through listing.Columns.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/assoc-admin/internal/listing"
)

// Open connects to dsn and applies the pool limits.
func Open(dsn string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

type scanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// validID reports whether id can be compared with a UUID column. Anything
// else cannot exist and is treated as not found instead of a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// exists reports whether table has a row with id.
func exists(ctx context.Context, q queryer, table, id string) (bool, error) {
	var ok bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return ok, nil
}

// missing returns notFound when id is absent from table and otherwise.
func missing(ctx context.Context, q queryer, table, id string, notFound, otherwise error) error {
	ok, err := exists(ctx, q, table, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return otherwise
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

// fetchPage runs the count and list halves of st and assembles the page.
func fetchPage[T any](ctx context.Context, db *sql.DB, st listing.Statement, q listing.Query, scan func(scanner) (T, error)) (listing.Page[T], error) {
	var total int
	if err := db.QueryRowContext(ctx, st.CountSQL, st.CountArgs...).Scan(&total); err != nil {
		return listing.Page[T]{}, fmt.Errorf("count: %w", err)
	}
	items, err := fetchAll(ctx, db, st.SQL, st.Args, scan)
	if err != nil {
		return listing.Page[T]{}, err
	}
	return listing.NewPage(items, total, q), nil
}

func fetchAll[T any](ctx context.Context, db *sql.DB, query string, args []any, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
