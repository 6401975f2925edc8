// Package boltstore is a BoltDB document store implementing store.Store.
//
// Each game and each player is one JSON document keyed by id. Entries are
// embedded in their game document. Bolt serializes writers, so the version
// check in UpdateGame happens inside a single read-write transaction.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/store"
)

const (
	gameBucket   = "games"
	playerBucket = "players"
)

// Store provides a BoltDB-backed store.
type Store struct {
	db *bbolt.DB
}

var _ store.Store = (*Store)(nil)

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{gameBucket, playerBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// ------------------------------- games --------------------------------------

func (s *Store) CreateGame(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(gameBucket))
		if b.Get([]byte(g.ID)) != nil {
			return fmt.Errorf("game %s already exists", g.ID)
		}
		return putJSON(b, g.ID, g)
	})
}

func (s *Store) UpdateGame(ctx context.Context, g *game.Game) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(gameBucket))
		var cur game.Game
		if err := getJSON(b, g.ID, &cur); err != nil {
			return err
		}
		if cur.Version != g.Version {
			return store.ErrConflict
		}
		next := g.Clone()
		next.Version++
		return putJSON(b, g.ID, next)
	})
	if err != nil {
		return err
	}
	g.Version++
	return nil
}

func (s *Store) GetGame(ctx context.Context, id string) (*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var g game.Game
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket([]byte(gameBucket)), id, &g)
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) ListGames(ctx context.Context, f store.Filter) ([]*game.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []*game.Game{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(gameBucket)).ForEach(func(k, v []byte) error {
			var g game.Game
			if err := json.Unmarshal(v, &g); err != nil {
				return fmt.Errorf("unmarshal game %s: %w", k, err)
			}
			if f.Match(&g) {
				out = append(out, &g)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	store.SortGames(out)
	return out, nil
}

// ------------------------------ players -------------------------------------

func (s *Store) CreatePlayer(ctx context.Context, p *game.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(playerBucket))
		if b.Get([]byte(p.ID)) != nil {
			return fmt.Errorf("player %s already exists", p.ID)
		}
		return putJSON(b, p.ID, p)
	})
}

func (s *Store) GetPlayer(ctx context.Context, id string) (*game.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var p game.Player
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket([]byte(playerBucket)), id, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]*game.Player, error) {
	out, err := s.allPlayers(ctx)
	if err != nil {
		return nil, err
	}
	store.SortPlayersByName(out)
	return out, nil
}

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]*game.Player, error) {
	out, err := s.allPlayers(ctx)
	if err != nil {
		return nil, err
	}
	store.SortPlayersByRank(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) allPlayers(ctx context.Context) ([]*game.Player, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []*game.Player{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(playerBucket)).ForEach(func(k, v []byte) error {
			var p game.Player
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshal player %s: %w", k, err)
			}
			out = append(out, &p)
			return nil
		})
	})
	return out, err
}

// IncrementGamesPlayed bumps every listed player, or none if any is missing.
func (s *Store) IncrementGamesPlayed(ctx context.Context, ids ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(playerBucket))
		for _, id := range ids {
			if err := updatePlayer(b, id, func(p *game.Player) { p.GamesPlayed++ }); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) IncrementWins(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return updatePlayer(tx.Bucket([]byte(playerBucket)), id, func(p *game.Player) { p.Wins++ })
	})
}

func updatePlayer(b *bbolt.Bucket, id string, fn func(*game.Player)) error {
	var p game.Player
	if err := getJSON(b, id, &p); err != nil {
		return err
	}
	fn(&p)
	return putJSON(b, id, &p)
}

func putJSON(b *bbolt.Bucket, id string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", id, err)
	}
	return b.Put([]byte(id), payload)
}

func getJSON(b *bbolt.Bucket, id string, v any) error {
	payload := b.Get([]byte(id))
	if payload == nil {
		return store.ErrNotFound
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", id, err)
	}
	return nil
}
