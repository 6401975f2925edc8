// internal/service/stats.go
//
// Per-player counters kept across games: gamesPlayed on every start or
// restart, wins on every winning guess.

package service

import (
	"context"

	"github.com/robalobadob/hilo/internal/store"
)

// StatsRecorder keeps the long-lived per-player counters in step with games.
type StatsRecorder struct {
	players store.PlayerDirectory
}

// NewStatsRecorder returns a recorder writing to players.
func NewStatsRecorder(players store.PlayerDirectory) *StatsRecorder {
	return &StatsRecorder{players: players}
}

// RecordGameStarted counts a new game for every participant.
func (r *StatsRecorder) RecordGameStarted(ctx context.Context, playerIDs []string) error {
	return r.players.IncrementGamesPlayed(ctx, playerIDs...)
}

// RecordWin counts a win. The caller guarantees one call per player per game.
func (r *StatsRecorder) RecordWin(ctx context.Context, playerID string) error {
	return r.players.IncrementWins(ctx, playerID)
}
