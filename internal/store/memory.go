// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer for development/testing, or when
// durability is not required.
//
// Characteristics:
//   - Stores games and players keyed by ID in maps.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Hands out copies, so callers never alias stored state.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/robalobadob/hilo/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex            // guards both maps
	games   map[string]*game.Game   // keyed by Game.ID
	players map[string]*game.Player // keyed by Player.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		games:   make(map[string]*game.Game),
		players: make(map[string]*game.Player),
	}
}

func (m *memory) Close() error { return nil }

// ------------------------------- games --------------------------------------

func (m *memory) CreateGame(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	m.games[g.ID] = g.Clone()
	return nil
}

// UpdateGame replaces the stored game if its version still matches g.Version.
func (m *memory) UpdateGame(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[g.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != g.Version {
		return ErrConflict
	}
	g.Version++
	m.games[g.ID] = g.Clone()
	return nil
}

func (m *memory) GetGame(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) ListGames(ctx context.Context, f Filter) ([]*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*game.Game, 0, len(m.games))
	for _, g := range m.games {
		if f.Match(g) {
			out = append(out, g.Clone())
		}
	}
	SortGames(out)
	return out, nil
}

// ------------------------------ players -------------------------------------

func (m *memory) CreatePlayer(ctx context.Context, p *game.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[p.ID]; ok {
		return fmt.Errorf("player %s already exists", p.ID)
	}
	cp := *p
	m.players[p.ID] = &cp
	return nil
}

func (m *memory) GetPlayer(ctx context.Context, id string) (*game.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.players[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memory) ListPlayers(ctx context.Context) ([]*game.Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*game.Player, 0, len(m.players))
	for _, p := range m.players {
		cp := *p
		out = append(out, &cp)
	}
	SortPlayersByName(out)
	return out, nil
}

func (m *memory) Leaderboard(ctx context.Context, limit int) ([]*game.Player, error) {
	all, _ := m.ListPlayers(ctx)
	SortPlayersByRank(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// IncrementGamesPlayed bumps every listed player, or none if any is missing.
func (m *memory) IncrementGamesPlayed(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if _, ok := m.players[id]; !ok {
			return ErrNotFound
		}
	}
	for _, id := range ids {
		m.players[id].GamesPlayed++
	}
	return nil
}

func (m *memory) IncrementWins(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return ErrNotFound
	}
	p.Wins++
	return nil
}
