package ports

import (
	"math/rand/v2"
)

// RNGPort provides seeded random streams for deterministic operations
type RNGPort interface {
	// Source returns a deterministic source for a named stage of a run.
	// The same stage and base seed always yield the same stream.
	Source(stage string, baseSeed int64) rand.Source

	// Stream wraps Source in a *rand.Rand.
	Stream(stage string, baseSeed int64) *rand.Rand
}
