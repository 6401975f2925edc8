// store.go
//
// Picks the storage backend named by HILO_STORE:
//   - memory: process-local maps, lost on exit.
//   - sql:    database/sql over DB_DRIVER (sqlite3, sqlite or postgres),
//     migrated on open.
//   - bolt:   a single bbolt file at BOLT_PATH.

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hilo/internal/config"
	"github.com/robalobadob/hilo/internal/store"
	"github.com/robalobadob/hilo/internal/store/boltstore"
	"github.com/robalobadob/hilo/internal/store/sqlstore"
)

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		log.Info().Msg("using in-memory store")
		return store.NewMemoryStore(), nil
	case config.StoreSQL:
		st, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open sql store: %w", err)
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("using sql store")
		return st, nil
	case config.StoreBolt:
		st, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		log.Info().Str("path", cfg.BoltPath).Msg("using bolt store")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
