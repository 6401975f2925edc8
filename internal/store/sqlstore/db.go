// internal/store/sqlstore/db.go
//
// Database helpers for the SQL backend.
// Responsibilities:
//   - Opening the database with safe defaults per driver
//     (SQLite: WAL, busy timeout, foreign keys; Postgres: ping).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Rewriting ? placeholders for drivers that want $n.
//
// Supported drivers:
//   - "sqlite3"  github.com/mattn/go-sqlite3 (cgo)
//   - "sqlite"   modernc.org/sqlite (pure Go)
//   - "postgres" github.com/lib/pq

package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// openDB opens (and for SQLite creates if missing) the database.
//
//   - Ensures the parent directory exists for file DSNs (e.g. ./data/hilo.db).
//   - Configures busy timeout, WAL journaling and foreign keys via DSN so
//     every pooled connection gets them.
func openDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	var full string
	switch driver {
	case DriverSQLite3, DriverSQLite:
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		if driver == DriverSQLite3 {
			full = dsn + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
		} else {
			full = dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
		}
	case DriverPostgres:
		full = dsn
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, full)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// migrate applies the embedded migrations in lexical order.
//
//   - Uses a _migrations table to track applied files.
//   - Skips files already applied.
//   - Each file and its _migrations row commit in one transaction.
func migrate(ctx context.Context, db *sql.DB, driver string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, rebind(driver, `SELECT 1 FROM _migrations WHERE name=?`), f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		sqlText := string(sqlBytes)
		record := rebind(driver, `INSERT INTO _migrations(name) VALUES (?)`)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, record, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// rebind rewrites ? placeholders to $1, $2, ... for postgres.
// Queries in this package never contain a literal '?'.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
