// internal/service/options.go
//
// Functional options shared by GameService and PlayerService.
// Defaults: UTC wall clock, uuid ids, an OS-seeded random source and
// five tries for SubmitGuess.

package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hilo/internal/game"
)

const defaultMaxTries = 5

type options struct {
	src      game.Source
	now      func() time.Time
	newID    func() string
	maxTries uint
}

// Option customizes a service.
type Option func(*options)

// WithSource sets the random source for mystery numbers.
func WithSource(src game.Source) Option { return func(o *options) { o.src = src } }

// WithClock sets the time source.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithIDs sets the id generator for new games and players.
func WithIDs(newID func() string) Option { return func(o *options) { o.newID = newID } }

// WithMaxTries bounds how often SubmitGuess runs when it keeps losing
// optimistic-concurrency races.
func WithMaxTries(n uint) Option {
	return func(o *options) {
		if n > 0 {
			o.maxTries = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		maxTries: defaultMaxTries,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.src == nil {
		o.src = game.NewSource(0)
	}
	return o
}
