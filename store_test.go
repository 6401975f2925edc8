package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/robalobadob/hilo/internal/config"
	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/store/sqlstore"
)

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"memory", config.Config{Store: config.StoreMemory}},
		{"sql", config.Config{Store: config.StoreSQL, DBDriver: sqlstore.DriverSQLite, DatabaseURL: filepath.Join(dir, "hilo.db")}},
		{"bolt", config.Config{Store: config.StoreBolt, BoltPath: filepath.Join(dir, "hilo.bolt")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			st, err := openStore(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer st.Close()

			if err := st.CreatePlayer(ctx, &game.Player{ID: "p1", Name: "ada"}); err != nil {
				t.Fatalf("create player: %v", err)
			}
			p, err := st.GetPlayer(ctx, "p1")
			if err != nil || p.Name != "ada" {
				t.Fatalf("expected ada, got %+v %v", p, err)
			}
		})
	}
}

func TestOpenStoreUnknown(t *testing.T) {
	if _, err := openStore(context.Background(), config.Config{Store: "redis"}); err == nil {
		t.Fatal("expected error")
	}
}
