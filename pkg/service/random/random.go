package random

import (
	"math/rand/v2"
	"sync"

	"github.com/secmon-lab/tyche/pkg/domain/interfaces"
)

// Source is a seeded, goroutine-safe PRNG
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ interfaces.RandomSource = &Source{}

// New creates a Source. The same seed always yields the same sequence.
func New(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns a uniform value in [0,1)
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NormFloat64 returns a standard normal value
func (s *Source) NormFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.NormFloat64()
}

// Factory creates a fresh source for every call with the same seed.
// Perturbation runs use it so baseline and perturbed evaluations see identical draws.
type Factory func() interfaces.RandomSource

// NewFactory returns a Factory bound to seed
func NewFactory(seed uint64) Factory {
	return func() interfaces.RandomSource {
		return New(seed)
	}
}
