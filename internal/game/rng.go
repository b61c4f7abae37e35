package game

import "math/rand/v2"

// RandomSource abstracts the uniform draw so spawn offers can be replayed.
type RandomSource interface {
	Float64() float64 // [0, 1)
}

type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG draws from the runtime's global generator.
func DefaultRNG() RandomSource { return globalRNG{} }

type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a reproducible source for tests and replays.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }

// pick returns a uniformly chosen element of pool.
func pick(pool []TypeID, rng RandomSource) TypeID {
	i := int(rng.Float64() * float64(len(pool)))
	if i >= len(pool) {
		i = len(pool) - 1
	}
	return pool[i]
}
