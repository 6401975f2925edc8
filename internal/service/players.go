// internal/service/players.go
//
// PlayerService manages the player directory.
// Responsibilities:
//   - Register players (trimmed, non-blank names).
//   - Read one player, all players by name, and the leaderboard.

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/store"
)

// PlayerService manages the player directory.
type PlayerService struct {
	players store.PlayerDirectory
	opts    options
}

// NewPlayerService wires a service over the directory.
func NewPlayerService(players store.PlayerDirectory, opts ...Option) *PlayerService {
	return &PlayerService{players: players, opts: buildOptions(opts)}
}

// CreatePlayer registers a player. The name is trimmed and must not be blank.
func (s *PlayerService) CreatePlayer(ctx context.Context, name string) (PlayerView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PlayerView{}, fmt.Errorf("%w: the player name must be informed", game.ErrInvalidPlayerName)
	}
	p := &game.Player{
		ID:        s.opts.newID(),
		Name:      name,
		CreatedAt: s.opts.now(),
	}
	if err := s.players.CreatePlayer(ctx, p); err != nil {
		return PlayerView{}, fmt.Errorf("create player: %w", err)
	}
	log.Info().Str("playerId", p.ID).Str("name", p.Name).Msg("player created")
	return toPlayerView(p), nil
}

// GetPlayer returns one player or game.ErrPlayerNotFound.
func (s *PlayerService) GetPlayer(ctx context.Context, id string) (PlayerView, error) {
	p, err := lookupPlayer(ctx, s.players, id)
	if err != nil {
		return PlayerView{}, err
	}
	return toPlayerView(p), nil
}

// ListPlayers returns every player ordered by name.
func (s *PlayerService) ListPlayers(ctx context.Context) ([]PlayerView, error) {
	ps, err := s.players.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return toPlayerViews(ps), nil
}

// Leaderboard returns the top players by wins.
func (s *PlayerService) Leaderboard(ctx context.Context, limit int) ([]PlayerView, error) {
	ps, err := s.players.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return toPlayerViews(ps), nil
}
