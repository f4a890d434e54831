package catalog

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is the source used by Catalog.Select.
type Random interface {
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

// lockedRand serializes access to a non goroutine-safe *rand.Rand.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a goroutine-safe source seeded with seed.
// The same seed always produces the same sequence.
func NewRandom(seed uint64) Random {
	return &lockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeRandom returns a goroutine-safe source seeded from the clock.
func NewTimeRandom() Random {
	return NewRandom(uint64(time.Now().UnixNano()))
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
