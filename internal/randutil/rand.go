// Package randutil centralises construction of seeded math/rand/v2
// generators so every call site derives the two 64-bit PCG seeds the same
// way and gets reproducible sequences from a single int64 seed.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const seedSpread = 0x9e3779b97f4a7c15 // golden ratio increment

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(scramble(u), scramble(u+seedSpread)))
}

// FromSeed resolves an optional seed flag: a nil seed falls back to the
// wall clock. The effective seed is returned so it can be logged and the
// run replayed.
func FromSeed(seed *int64) (*rand.Rand, int64) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return New(s), s
}

// splitmix64 finalizer, spreads low-entropy seeds across the state space
func scramble(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
