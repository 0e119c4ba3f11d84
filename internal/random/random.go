// Package random builds the random index sources consumed by engines.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewSource returns a deterministic generator for seed.
// The result is not safe for concurrent use.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NewRandomSource seeds a generator from crypto/rand.
func NewRandomSource() (*rand.Rand, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSource(seed), nil
}

// Locked wraps a generator so several goroutines can draw from it.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocked returns a concurrency-safe source seeded with seed.
func NewLocked(seed int64) *Locked {
	return &Locked{rng: NewSource(seed)}
}

// Intn returns a value in [0, n).
func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}
