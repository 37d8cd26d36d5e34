// Package saltelli draws Saltelli cross-sampled designs from a scrambled
// Halton sequence. The row layout is the one the sobol estimator expects.
package saltelli

import (
	"context"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/samplemv"

	"firesens/domain/core"
	"firesens/domain/problem"
	"firesens/ports"
)

// maxBaseDims is the Halton dimension limit of the gonum implementation.
const maxBaseDims = 1000

// StageName is the RNG stage used for Halton scrambling.
const StageName = "sampling"

// RowsPerBase returns how many rows one base sample expands to:
// A, AB_1..AB_d, [BA_1..BA_d], B.
func RowsPerBase(d int, secondOrder bool) int {
	if secondOrder {
		return 2*d + 2
	}
	return d + 2
}

// Sampler implements ports.Sampler
type Sampler struct {
	SecondOrder bool
	RNG         ports.RNGPort
}

// NewSampler creates a sampler whose scrambling streams come from rng.
func NewSampler(rng ports.RNGPort, secondOrder bool) *Sampler {
	return &Sampler{SecondOrder: secondOrder, RNG: rng}
}

// Sample draws n base points in 2d dimensions, scrambled from seed, and
// expands them into the Saltelli layout of n*RowsPerBase(d) rows.
func (s *Sampler) Sample(ctx context.Context, def problem.Definition, n int, seed int64) (*ports.SampleMatrix, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, core.NewExternalComputationError("saltelli sampler", fmt.Errorf("base sample count must be positive, got %d", n))
	}
	d := def.NumVars
	if 2*d > maxBaseDims {
		return nil, core.NewExternalComputationError("saltelli sampler",
			fmt.Errorf("%d parameters exceed the %d-dimension Halton limit", d, maxBaseDims/2))
	}

	bounds := make([]r1.Interval, 2*d)
	for i, b := range def.Bounds {
		bounds[i] = r1.Interval{Min: b.Low, Max: b.High}
		bounds[d+i] = bounds[i]
	}

	base := mat.NewDense(n, 2*d, nil)
	samplemv.Halton{
		Kind: samplemv.Owen,
		Q:    distmv.NewUniform(bounds, nil),
		Src:  s.source(seed),
	}.Sample(base)

	stride := RowsPerBase(d, s.SecondOrder)
	out := mat.NewDense(n*stride, d, nil)
	for j := 0; j < n; j++ {
		if j%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := base.RawRowView(j)
		a, b := row[:d], row[d:]

		r := j * stride
		out.SetRow(r, a)
		for i := 0; i < d; i++ {
			r++
			out.SetRow(r, a)
			out.Set(r, i, b[i])
		}
		if s.SecondOrder {
			for i := 0; i < d; i++ {
				r++
				out.SetRow(r, b)
				out.Set(r, i, a[i])
			}
		}
		r++
		out.SetRow(r, b)
	}

	return &ports.SampleMatrix{
		Names: append([]string(nil), def.Names...),
		Rows:  out,
	}, nil
}

func (s *Sampler) source(seed int64) rand.Source {
	if s.RNG == nil {
		return rand.NewPCG(uint64(seed), 0)
	}
	return s.RNG.Source(StageName, seed)
}
