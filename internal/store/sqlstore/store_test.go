package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/robalobadob/hilo/internal/store"
	"github.com/robalobadob/hilo/internal/store/storetest"
)

// Tests use the pure-Go driver so they run without cgo.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hilo.db")
	s, err := Open(context.Background(), DriverSQLite, path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestSQLStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTestStore(t)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	if err := migrate(context.Background(), s.db, DriverSQLite); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 recorded migration, got %d", n)
	}
}

func TestMigrateCreatesSchemaInOneStep(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	for _, table := range []string{"players", "games", "game_players"} {
		var name string
		err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
	var recorded string
	if err := s.db.QueryRow(`SELECT name FROM _migrations`).Scan(&recorded); err != nil {
		t.Fatalf("read _migrations: %v", err)
	}
	if recorded != "migrations/001_init.sql" {
		t.Fatalf("expected migrations/001_init.sql, got %q", recorded)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hilo.db")
	ctx := context.Background()

	s, err := Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO players (id, name, created_at) VALUES ('p1', 'ada', '2026-01-23T12:00:00.000000000Z')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = s.Close()

	s, err = Open(ctx, DriverSQLite, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	p, err := s.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if p.Name != "ada" {
		t.Fatalf("expected ada, got %q", p.Name)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestRebind(t *testing.T) {
	q := `UPDATE games SET round=?, status=? WHERE id=?`
	if got := rebind(DriverSQLite3, q); got != q {
		t.Fatalf("sqlite query rewritten: %s", got)
	}
	want := `UPDATE games SET round=$1, status=$2 WHERE id=$3`
	if got := rebind(DriverPostgres, q); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
