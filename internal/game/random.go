// internal/game/random.go
//
// Random source for mystery numbers.
// Responsibilities:
//   - Source: the one method the engine needs, so tests can inject draws.
//   - NewSource: a mutex-guarded PCG generator, seeded or OS-seeded.
//   - drawMystery: a uniform draw over an inclusive range.

package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Source draws mystery numbers. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// lockedSource serializes access to a non-concurrent Source.
type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

// NewSource returns a goroutine-safe PCG source.
// A zero seed draws the seed from crypto/rand, so runs are not reproducible.
func NewSource(seed uint64) Source {
	s1, s2 := seed, seed^0x9e3779b97f4a7c15
	if seed == 0 {
		var b [16]byte
		_, _ = crand.Read(b[:])
		s1 = binary.LittleEndian.Uint64(b[:8])
		s2 = binary.LittleEndian.Uint64(b[8:])
	}
	return &lockedSource{src: rand.New(rand.NewPCG(s1, s2))}
}

// drawMystery returns a uniform integer in [min, max].
func drawMystery(src Source, min, max int) int {
	return min + src.IntN(max-min+1)
}
