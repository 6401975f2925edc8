// internal/game/engine.go
//
// Core game engine for a Hi-Lo game.
// Responsibilities:
//   - Create new games (and restarts of finished ones) with one mystery number per player.
//   - Validate and apply guesses (game open, membership, one guess per round, range).
//   - Score guesses (Evaluate) and advance the round state machine (NextState).
//
// Notes:
//   - The engine is pure: it mutates the *Game it is handed and nothing else.
//     Persistence, player lookup and stats belong to the caller.
//   - Mystery numbers come from an injected Source so tests can seed them.
package game

import (
	"fmt"
	"time"
)

// Validate checks the parameters of a new game.
// Errors are checked in order: range, empty player list, duplicates.
func Validate(minValue, maxValue int, playerIDs []string) error {
	if minValue <= 0 {
		return fmt.Errorf("%w: minimum value must be greater than zero", ErrInvalidRange)
	}
	if maxValue <= minValue {
		return fmt.Errorf("%w: maximum value must be greater than the minimum value", ErrInvalidRange)
	}
	if len(playerIDs) == 0 {
		return fmt.Errorf("%w: at least one player is required", ErrNoPlayers)
	}
	seen := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// New constructs a game in round 1 with a mystery number drawn per player.
func New(id string, minValue, maxValue int, playerIDs []string, src Source, now time.Time) (*Game, error) {
	if err := Validate(minValue, maxValue, playerIDs); err != nil {
		return nil, err
	}
	g := &Game{
		ID:        id,
		MinValue:  minValue,
		MaxValue:  maxValue,
		Round:     1,
		Status:    StatusOngoing,
		Players:   make([]PlayerEntry, len(playerIDs)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, pid := range playerIDs {
		g.Players[i] = PlayerEntry{
			PlayerID:      pid,
			MysteryNumber: drawMystery(src, minValue, maxValue),
		}
	}
	return g, nil
}

// Restart builds a fresh game with the same range and membership as g.
// g itself is left untouched.
func (g *Game) Restart(id string, src Source, now time.Time) (*Game, error) {
	if !g.Finished() {
		return nil, fmt.Errorf("%w: game %s must finish before it can be restarted", ErrGameNotFinished, g.ID)
	}
	return New(id, g.MinValue, g.MaxValue, g.PlayerIDs(), src, now)
}

// ApplyGuess validates and scores a guess, mutating the game state.
//
// Validation rules, in order:
//   - Game must not be finished.
//   - Player must be part of the game.
//   - Player must not have guessed already this round.
//   - Guess must lie in [MinValue, MaxValue].
//
// On success the player's attempts grow by one, the winner flag is set on a
// win, and status/round advance per NextState.
func (g *Game) ApplyGuess(playerID string, guess int, now time.Time) (Result, error) {
	if g.Finished() {
		return "", fmt.Errorf("%w: game %s is finished, restart it to play again", ErrGameFinished, g.ID)
	}
	idx := g.Entry(playerID)
	if idx < 0 {
		return "", fmt.Errorf("%w: player %s is not playing game %s", ErrPlayerNotInGame, playerID, g.ID)
	}
	if g.Players[idx].Attempts == g.Round {
		return "", fmt.Errorf("%w: wait for round %d to end", ErrAlreadyGuessed, g.Round)
	}
	if guess < g.MinValue || guess > g.MaxValue {
		return "", fmt.Errorf("%w: guess must be between %d and %d", ErrGuessOutOfRange, g.MinValue, g.MaxValue)
	}

	res := Evaluate(guess, g.Players[idx].MysteryNumber)
	won := res == ResultWin

	// roundComplete only looks at the other players, so computing the next
	// state before or after touching this entry gives the same answer.
	g.Status, g.Round = NextState(g, idx, won)

	e := &g.Players[idx]
	e.Attempts++
	if won {
		e.Winner = true
	}
	g.UpdatedAt = now
	return res, nil
}

// Evaluate compares a guess with a mystery number.
// Lo means the secret is lower than the guess, Hi means it is higher.
func Evaluate(guess, mystery int) Result {
	switch {
	case guess > mystery:
		return ResultLo
	case guess < mystery:
		return ResultHi
	default:
		return ResultWin
	}
}

// NextState computes the status and round after the player at idx guessed.
//
// A round is complete once every other player has Attempts == Round. A win
// only finishes the game when the round is complete; otherwise the game
// waits for the stragglers, and the last of them finishes it. Without a win
// a complete round starts the next one.
func NextState(g *Game, idx int, won bool) (Status, int) {
	complete := roundComplete(g, idx)

	if won {
		if complete {
			return StatusFinished, g.Round
		}
		return StatusWaiting, g.Round
	}
	if !complete {
		return g.Status, g.Round
	}
	if g.Status == StatusWaiting {
		return StatusFinished, g.Round
	}
	return StatusOngoing, g.Round + 1
}

// roundComplete reports whether every player other than idx used this round's turn.
func roundComplete(g *Game, idx int) bool {
	for i, p := range g.Players {
		if i != idx && p.Attempts != g.Round {
			return false
		}
	}
	return true
}
