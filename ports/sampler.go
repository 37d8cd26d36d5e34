package ports

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"firesens/domain/problem"
)

// SampleMatrix is a sampler's output. Names echoes the ordered name list the
// sampler was asked for so column alignment can be checked structurally.
type SampleMatrix struct {
	Names []string
	Rows  *mat.Dense
}

// Sampler draws a quasi-random sample for a problem definition. The number of
// rows is chosen by the sampler's scheme and is generally not n. The same
// definition, n and seed always yield the same matrix.
type Sampler interface {
	Sample(ctx context.Context, def problem.Definition, n int, seed int64) (*SampleMatrix, error)
}
