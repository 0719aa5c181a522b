package app

import "math/rand/v2"

// RandomSource yields uniformly distributed values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a source backed by the runtime's seeded generator.
func NewRandomSource() RandomSource {
	return globalRandom{}
}

// NewSeededRandomSource returns a reproducible source.
//
// Parameters:
//   - seed: the PCG seed
//
// Returns:
//   - RandomSource: the generator
func NewSeededRandomSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalRandom struct{}

func (globalRandom) Float64() float64 {
	return rand.Float64()
}
