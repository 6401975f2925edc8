package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/store"
	"github.com/robalobadob/hilo/internal/store/storetest"
)

func TestBoltStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(filepath.Join(t.TempDir(), "hilo.bolt"))
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		return s
	})
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hilo.bolt")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.CreatePlayer(ctx, &game.Player{ID: "p1", Name: "ada"}); err != nil {
		t.Fatalf("create player: %v", err)
	}
	if err := s.IncrementWins(ctx, "p1"); err != nil {
		t.Fatalf("wins: %v", err)
	}
	_ = s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	p, err := s.GetPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if p.Name != "ada" || p.Wins != 1 {
		t.Fatalf("unexpected player %+v", p)
	}
}

func TestCanceledContext(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "hilo.bolt"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.GetGame(ctx, "g1"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
