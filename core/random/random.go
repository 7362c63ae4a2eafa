// Package random provides the seedable randomness used by every sampling
// operation.
//
// A Source never hands one generator to several goroutines. Instead each
// parallel task derives its own *rand.Rand from the base seed and the task's
// positional path, so results are reproducible regardless of how tasks are
// scheduled across workers.
package random

import (
	"math/rand/v2"
)

// Source is an immutable base seed from which generators are derived.
type Source struct {
	seed uint64
}

// New returns a Source for the given seed.
func New(seed uint64) Source {
	return Source{seed: seed}
}

// FromState resolves a random_state setting. A nil state draws a fresh seed
// from the runtime generator; an integer state is used as the seed.
func FromState(state *int64) Source {
	if state == nil {
		return Source{seed: rand.Uint64()}
	}
	return Source{seed: uint64(*state)}
}

// Seed returns the base seed.
func (s Source) Seed() uint64 {
	return s.seed
}

// Derive returns a child Source for the task identified by path. Deriving the
// same path from the same Source always yields the same child.
func (s Source) Derive(path ...int) Source {
	seed := s.seed
	for _, p := range path {
		seed = mix(seed ^ mix(uint64(p)+0x9e3779b97f4a7c15))
	}
	return Source{seed: seed}
}

// Rand returns a new generator seeded from this Source. Each call returns an
// independent generator positioned at the start of the same stream.
func (s Source) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, mix(s.seed^0xda3e39cb94b95bdb)))
}

// mix is the SplitMix64 finalizer.
func mix(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
