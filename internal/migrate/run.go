// Package migrate applies the record store's embedded SQL migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/eventhub/internal/data/pgxutil"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// lockKey serializes migrators across processes sharing a database.
const lockKey int64 = 0x6576656e74687562

// Migration is one embedded SQL file. Version is the file name without ".sql".
type Migration struct {
	Version string
	file    string
}

// All returns the embedded migrations in apply order.
func All() ([]Migration, error) {
	return list(migrationsFS)
}

func list(fsys fs.FS) ([]Migration, error) {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	out := make([]Migration, 0, len(files))
	for _, f := range files {
		out = append(out, Migration{Version: strings.TrimSuffix(path.Base(f), ".sql"), file: f})
	}
	return out, nil
}

// Pending returns the migrations not yet recorded in schema_migrations.
func Pending(ctx context.Context, db *sql.DB) ([]Migration, error) {
	all, err := All()
	if err != nil {
		return nil, err
	}
	if err = ensureVersionTable(ctx, db); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err = rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[v] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}

	var pending []Migration
	for _, m := range all {
		if !applied[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

// Run applies every pending migration, each in its own transaction. It is
// safe to call repeatedly and from several processes at once.
func Run(ctx context.Context, db *sql.DB) error {
	logger := slog.Default().With("component", "migrations")

	pending, err := Pending(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range pending {
		applied, applyErr := apply(ctx, db, m)
		if applyErr != nil {
			return applyErr
		}
		if applied {
			logger.InfoContext(ctx, "applied migration", "version", m.Version)
		}
	}
	return nil
}

func ensureVersionTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

// apply runs m under the advisory lock. It reports false when another
// process recorded m first.
func apply(ctx context.Context, db *sql.DB, m Migration) (bool, error) {
	body, err := migrationsFS.ReadFile(m.file)
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", m.Version, err)
	}

	applied := false
	err = pgxutil.Tx(ctx, db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, lockErr := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); lockErr != nil {
			return fmt.Errorf("lock: %w", lockErr)
		}
		tag, insErr := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`, m.Version)
		if insErr != nil {
			return fmt.Errorf("record: %w", insErr)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if _, execErr := tx.Exec(ctx, string(body)); execErr != nil {
			return execErr
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("migration %s: %w", m.Version, err)
	}
	return applied, nil
}
