// internal/game/types.go
//
// Core type definitions for the Hi-Lo game engine.
// Defines:
//   - Result: outcome of a single guess (hi/lo/win).
//   - Status: round state of a game (ongoing/waiting/finished).
//   - Game, PlayerEntry: state for a single game and each participant in it.
//   - Player: the long-lived player record a PlayerEntry refers to.

package game

import "time"

// Result represents the evaluation of a single guess against a mystery number.
// Possible values:
//   - "Hi":  the mystery number is higher than the guess.
//   - "Lo":  the mystery number is lower than the guess.
//   - "Win": the guess matched.
type Result string

const (
	ResultHi  Result = "Hi"
	ResultLo  Result = "Lo"
	ResultWin Result = "Win"
)

// Status is the round state of a game.
type Status string

const (
	StatusOngoing  Status = "Ongoing"
	StatusWaiting  Status = "WaitingForOtherPlayers"
	StatusFinished Status = "Finished"
)

// Game holds the state of a single Hi-Lo game.
type Game struct {
	ID        string        `json:"id"`
	MinValue  int           `json:"minValue"`
	MaxValue  int           `json:"maxValue"`
	Round     int           `json:"round"`
	Status    Status        `json:"status"`
	Players   []PlayerEntry `json:"players"`
	Version   int           `json:"version"` // bumped by the store on every successful update
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// PlayerEntry is one participant's state inside a game.
// MysteryNumber is never exposed outside the server.
type PlayerEntry struct {
	PlayerID      string `json:"playerId"`
	MysteryNumber int    `json:"mysteryNumber"`
	Attempts      int    `json:"attempts"`
	Winner        bool   `json:"winner"`
}

// Player is a participant that outlives individual games.
type Player struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GamesPlayed int       `json:"gamesPlayed"`
	Wins        int       `json:"wins"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Finished reports whether the game no longer accepts guesses.
func (g *Game) Finished() bool { return g.Status == StatusFinished }

// PlayerIDs returns the participants in game order.
func (g *Game) PlayerIDs() []string {
	ids := make([]string, len(g.Players))
	for i, p := range g.Players {
		ids[i] = p.PlayerID
	}
	return ids
}

// Entry returns the index of playerID in g.Players, or -1.
func (g *Game) Entry(playerID string) int {
	for i, p := range g.Players {
		if p.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of g.
func (g *Game) Clone() *Game {
	c := *g
	c.Players = append([]PlayerEntry(nil), g.Players...)
	return &c
}
