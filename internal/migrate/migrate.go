// Package migrate applies the embedded SQL schema in file-name order,
// recording each applied file in schema_migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

//go:embed migrations/*.sql
var files embed.FS

// Migration is one schema file.
type Migration struct {
	Name string
	SQL  string
}

// All returns the embedded migrations sorted by name.
func All() ([]Migration, error) {
	return load(files, "migrations")
}

func load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		out = append(out, Migration{Name: e.Name(), SQL: string(data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Runner applies migrations to one database.
type Runner struct {
	db         *sql.DB
	migrations []Migration
	log        *logger.Logger
}

// NewRunner creates a Runner for the embedded migrations.
func NewRunner(db *sql.DB) (*Runner, error) {
	ms, err := All()
	if err != nil {
		return nil, err
	}
	return NewRunnerWith(db, ms), nil
}

// NewRunnerWith creates a Runner for an explicit migration list.
func NewRunnerWith(db *sql.DB, ms []Migration) *Runner {
	return &Runner{db: db, migrations: ms, log: logger.Named("migrate")}
}

const createTracking = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Applied returns the names already recorded.
func (r *Runner) Applied(ctx context.Context) (map[string]bool, error) {
	if _, err := r.db.ExecContext(ctx, createTracking); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied: %w", err)
	}
	defer rows.Close()
	done := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan applied: %w", err)
		}
		done[name] = true
	}
	return done, rows.Err()
}

// Pending returns the migrations not applied yet.
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	done, err := r.Applied(ctx)
	if err != nil {
		return nil, err
	}
	var out []Migration
	for _, m := range r.migrations {
		if !done[m.Name] {
			out = append(out, m)
		}
	}
	return out, nil
}

// Up applies every pending migration, each in its own transaction, and
// stops at the first failure. It returns the names it applied.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}
	applied := []string{}
	for _, m := range pending {
		if err := r.apply(ctx, m); err != nil {
			return applied, err
		}
		r.log.Info("migration applied", "name", m.Name)
		applied = append(applied, m.Name)
	}
	return applied, nil
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", m.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply %s: %w", m.Name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
		return fmt.Errorf("record %s: %w", m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", m.Name, err)
	}
	return nil
}
