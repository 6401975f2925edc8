// Package store defines the persistence interfaces for the Hi-Lo server.
//
// Implementations live in this package (memory) and in subpackages
// (sqlstore, boltstore). All of them hand out copies: mutating a returned
// game or player has no effect until it is written back.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/robalobadob/hilo/internal/game"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict indicates an UpdateGame lost an optimistic-concurrency race.
	ErrConflict = errors.New("store: version conflict")
)

// GameStore persists games.
type GameStore interface {
	// CreateGame inserts a new game.
	CreateGame(ctx context.Context, g *game.Game) error

	// UpdateGame writes g if the stored version equals g.Version, then
	// increments g.Version. Returns ErrConflict on a stale version.
	UpdateGame(ctx context.Context, g *game.Game) error

	// GetGame returns ErrNotFound if the game does not exist.
	GetGame(ctx context.Context, id string) (*game.Game, error)

	// ListGames returns matching games, newest first.
	ListGames(ctx context.Context, f Filter) ([]*game.Game, error)
}

// PlayerDirectory persists players and their aggregate counters.
type PlayerDirectory interface {
	CreatePlayer(ctx context.Context, p *game.Player) error
	// GetPlayer returns ErrNotFound if the player does not exist.
	GetPlayer(ctx context.Context, id string) (*game.Player, error)
	// ListPlayers returns all players ordered by name.
	ListPlayers(ctx context.Context) ([]*game.Player, error)
	// Leaderboard returns players by wins desc, games played asc, name asc.
	// A non-positive limit returns everyone.
	Leaderboard(ctx context.Context, limit int) ([]*game.Player, error)

	// IncrementGamesPlayed and IncrementWins update counters in place,
	// without a read-modify-write in the caller.
	IncrementGamesPlayed(ctx context.Context, ids ...string) error
	IncrementWins(ctx context.Context, id string) error
}

// Store is a full backend.
type Store interface {
	GameStore
	PlayerDirectory
	Close() error
}

// Filter narrows ListGames. A nil Finished matches every game.
type Filter struct {
	Finished *bool
}

// Match reports whether g passes the filter.
func (f Filter) Match(g *game.Game) bool {
	return f.Finished == nil || *f.Finished == g.Finished()
}

// SortGames orders games newest first, ties broken by id.
func SortGames(gs []*game.Game) {
	sort.Slice(gs, func(i, j int) bool {
		if !gs[i].CreatedAt.Equal(gs[j].CreatedAt) {
			return gs[i].CreatedAt.After(gs[j].CreatedAt)
		}
		return gs[i].ID < gs[j].ID
	})
}

// SortPlayersByName orders players by name, ties broken by id.
func SortPlayersByName(ps []*game.Player) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].ID < ps[j].ID
	})
}

// SortPlayersByRank applies leaderboard ordering.
func SortPlayersByRank(ps []*game.Player) {
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed < b.GamesPlayed
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
