// Package engine implements the random machinery of a draft session: the
// weighted settings draw and the pool deal. All randomness flows through one
// injected generator so tests can pin a seed and assert exact outcomes.
package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Engine wraps a random source. rand.Rand is not safe for concurrent use and
// sessions resolve in parallel, so draws are serialized here.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an engine around the given generator.
func New(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// NewSeeded creates an engine seeded from crypto/rand. This is the
// production constructor; the draw itself only needs uniformity.
func NewSeeded() (*Engine, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("failed to read random seed: %w", err)
	}
	seed1 := binary.LittleEndian.Uint64(b[:8])
	seed2 := binary.LittleEndian.Uint64(b[8:])
	return New(rand.New(rand.NewPCG(seed1, seed2))), nil
}

// intN draws a uniform value in [0, n) under the engine lock.
func (e *Engine) intN(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.IntN(n)
}

// shuffle permutes n elements under the engine lock.
func (e *Engine) shuffle(n int, swap func(i, j int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng.Shuffle(n, swap)
}
