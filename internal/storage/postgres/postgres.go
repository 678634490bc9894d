// Package postgres implements the account, transaction and snapshot
// stores on top of a pgx connection pool, with raw SQL and a one-table
// migrator.
package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Connect opens a connection pool and verifies it with a ping. The
// caller owns the pool and closes it on shutdown.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return pool, nil
}

// ApplyMigrations executes the .sql files of dir in name order, tracking
// applied ones in a schema_migrations table. Each file runs in its own
// transaction.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return errors.Wrap(err, "failed to create schema_migrations")
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, "failed to read migrations dir")
	}

	var names []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".sql") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var applied bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`, name).Scan(&applied); err != nil {
			return errors.Wrapf(err, "failed to check migration %s", name)
		}
		if applied {
			continue
		}

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return errors.Wrapf(err, "failed to read migration %s", name)
		}
		if strings.TrimSpace(string(body)) == "" {
			return errors.Errorf("migration %s is empty", name)
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to begin migration transaction")
		}
		if _, err := tx.Exec(ctx, string(body)); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrapf(err, "migration %s failed", name)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations(filename) VALUES($1)`, name); err != nil {
			_ = tx.Rollback(ctx)
			return errors.Wrapf(err, "failed to record migration %s", name)
		}
		if err := tx.Commit(ctx); err != nil {
			return errors.Wrapf(err, "failed to commit migration %s", name)
		}
	}
	return nil
}

// uuidStrings renders ids for = ANY($1::uuid[]) parameters.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
