package rng

import (
	"math/rand/v2"
)

// Adapter implements ports.RNGPort with PCG streams whose seeds are derived
// from the run's base seed and the stage name.
type Adapter struct{}

// NewAdapter creates an RNG adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Source creates a deterministic source for a named stage
func (a *Adapter) Source(stage string, baseSeed int64) rand.Source {
	// Stage names separate the sampling, split and bootstrap streams so that
	// changing one stage's consumption never shifts another's numbers.
	return rand.NewPCG(uint64(baseSeed), uint64(hashString(stage)))
}

// Stream creates a deterministic RNG for a named stage
func (a *Adapter) Stream(stage string, baseSeed int64) *rand.Rand {
	return rand.New(a.Source(stage, baseSeed))
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
