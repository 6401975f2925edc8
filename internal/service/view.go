// internal/service/view.go
//
// Client-facing views of games and players. None of these types has a field
// for mystery numbers, so nothing built from them can leak one.

package service

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/store"
)

// GameView is the public shape of a game.
type GameView struct {
	ID        string            `json:"id"`
	MinValue  int               `json:"minValue"`
	MaxValue  int               `json:"maxValue"`
	Round     int               `json:"round"`
	Status    game.Status       `json:"status"`
	Players   []PlayerEntryView `json:"players"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// PlayerEntryView is one participant as seen by clients.
type PlayerEntryView struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Attempts   int    `json:"attempts"`
	Winner     bool   `json:"winner"`
}

// PlayerView is the public shape of a player.
type PlayerView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GamesPlayed int       `json:"gamesPlayed"`
	Wins        int       `json:"wins"`
	CreatedAt   time.Time `json:"createdAt"`
}

// GuessOutcome is the result of SubmitGuess.
type GuessOutcome struct {
	GameID     string      `json:"gameId"`
	PlayerID   string      `json:"playerId"`
	PlayerName string      `json:"playerName"`
	Result     game.Result `json:"result"`
	Attempts   int         `json:"attempts"`
	Round      int         `json:"round"`
	Status     game.Status `json:"status"`
}

// toGameView maps a game to its view. names maps player id to display name.
func toGameView(g *game.Game, names map[string]string) GameView {
	v := GameView{
		ID:        g.ID,
		MinValue:  g.MinValue,
		MaxValue:  g.MaxValue,
		Round:     g.Round,
		Status:    g.Status,
		Players:   make([]PlayerEntryView, len(g.Players)),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
	for i, p := range g.Players {
		v.Players[i] = PlayerEntryView{
			PlayerID:   p.PlayerID,
			PlayerName: names[p.PlayerID],
			Attempts:   p.Attempts,
			Winner:     p.Winner,
		}
	}
	return v
}

func toPlayerView(p *game.Player) PlayerView {
	return PlayerView{
		ID:          p.ID,
		Name:        p.Name,
		GamesPlayed: p.GamesPlayed,
		Wins:        p.Wins,
		CreatedAt:   p.CreatedAt,
	}
}

func toPlayerViews(ps []*game.Player) []PlayerView {
	out := make([]PlayerView, len(ps))
	for i, p := range ps {
		out[i] = toPlayerView(p)
	}
	return out
}

// nameCache resolves display names once per request.
type nameCache struct {
	players store.PlayerDirectory
	names   map[string]string
}

func newNameCache(players store.PlayerDirectory) *nameCache {
	return &nameCache{players: players, names: map[string]string{}}
}

// seed records names already loaded by the caller.
func (c *nameCache) seed(ps ...*game.Player) {
	for _, p := range ps {
		c.names[p.ID] = p.Name
	}
}

// resolve loads any unknown names for g. Players deleted from the directory
// keep an empty name.
func (c *nameCache) resolve(ctx context.Context, g *game.Game) (map[string]string, error) {
	for _, p := range g.Players {
		if _, ok := c.names[p.PlayerID]; ok {
			continue
		}
		pl, err := c.players.GetPlayer(ctx, p.PlayerID)
		if errors.Is(err, store.ErrNotFound) {
			c.names[p.PlayerID] = ""
			continue
		}
		if err != nil {
			return nil, err
		}
		c.names[p.PlayerID] = pl.Name
	}
	return c.names, nil
}
