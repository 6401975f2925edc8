// internal/game/errors.go
//
// Error taxonomy for the Hi-Lo engine.
// Defines:
//   - Sentinel errors for caller-input and state-precondition failures.
//   - Code: stable machine-readable code per sentinel, for transports.
//   - IsValidation: tells domain failures apart from infrastructure ones.

package game

import "errors"

// Validation and state-precondition errors. Callers match them with errors.Is;
// the engine wraps them with context via fmt.Errorf("%w: ...").
var (
	ErrInvalidRange      = errors.New("invalid range")
	ErrNoPlayers         = errors.New("no players")
	ErrDuplicatePlayer   = errors.New("duplicate player")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrPlayerNotInGame   = errors.New("player not in game")
	ErrGameNotFound      = errors.New("game not found")
	ErrGameFinished      = errors.New("game finished")
	ErrGameNotFinished   = errors.New("game not finished")
	ErrAlreadyGuessed    = errors.New("already guessed this round")
	ErrGuessOutOfRange   = errors.New("guess out of range")
	ErrInvalidPlayerName = errors.New("invalid player name")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidRange, "INVALID_RANGE"},
	{ErrNoPlayers, "NO_PLAYERS"},
	{ErrDuplicatePlayer, "DUPLICATE_PLAYER"},
	{ErrPlayerNotFound, "PLAYER_NOT_FOUND"},
	{ErrPlayerNotInGame, "PLAYER_NOT_IN_GAME"},
	{ErrGameNotFound, "GAME_NOT_FOUND"},
	{ErrGameFinished, "GAME_FINISHED"},
	{ErrGameNotFinished, "GAME_NOT_FINISHED"},
	{ErrAlreadyGuessed, "ALREADY_GUESSED_THIS_ROUND"},
	{ErrGuessOutOfRange, "GUESS_OUT_OF_RANGE"},
	{ErrInvalidPlayerName, "INVALID_PLAYER_NAME"},
}

// Code returns the machine-readable code for a validation error,
// or "" if err is not one of this package's errors.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// IsValidation reports whether err is a caller-input or state-precondition
// failure rather than an infrastructure failure.
func IsValidation(err error) bool { return Code(err) != "" }
