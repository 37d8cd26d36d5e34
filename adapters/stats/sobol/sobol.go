// Package sobol estimates first-order, second-order and total-effect Sobol
// indices from model outputs laid out by the saltelli sampler.
package sobol

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"firesens/adapters/stats/saltelli"
	"firesens/domain/core"
	"firesens/domain/problem"
	"firesens/ports"
)

// StageName is the RNG stage used for bootstrap resampling.
const StageName = "bootstrap"

const (
	defaultResamples = 100
	defaultConfLevel = 0.95
)

// Estimator implements ports.Estimator using the Saltelli (2010) first-order
// and Jansen total-effect estimators, with bootstrap confidence intervals.
type Estimator struct {
	SecondOrder bool    // must match the sampler
	Resamples   int     // bootstrap resamples; 0 means 100
	ConfLevel   float64 // confidence level in (0,1); 0 means 0.95
	Seed        int64
	RNG         ports.RNGPort
}

// NewEstimator creates an estimator paired with a sampler of the same order.
func NewEstimator(rng ports.RNGPort, seed int64, secondOrder bool) *Estimator {
	return &Estimator{SecondOrder: secondOrder, Seed: seed, RNG: rng}
}

// layout holds the standardized outputs split into Saltelli blocks.
type layout struct {
	n  int
	a  []float64
	b  []float64
	ab [][]float64
	ba [][]float64
}

// Analyze computes indices for results aligned with a Saltelli sample of def.
func (e *Estimator) Analyze(ctx context.Context, def problem.Definition, results []float64) (*ports.Indices, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	l, err := e.split(def.NumVars, results)
	if err != nil {
		return nil, core.NewExternalComputationError("sobol estimator", err)
	}

	resamples := e.Resamples
	if resamples == 0 {
		resamples = defaultResamples
	}
	if resamples < 2 {
		return nil, core.NewConfigurationError("bootstrap needs at least 2 resamples, got %d", resamples)
	}
	confLevel := e.ConfLevel
	if confLevel == 0 {
		confLevel = defaultConfLevel
	}
	if confLevel <= 0 || confLevel >= 1 {
		return nil, core.NewConfigurationError("confidence level must be in (0,1), got %g", confLevel)
	}

	d := def.NumVars
	all := identity(l.n)
	idx := newAccumulator(d, e.SecondOrder)
	l.estimate(all, idx.s1, idx.st, idx.s2)

	// Bootstrap: recompute every index on resampled base rows and report
	// z * sd as the half-width.
	z := distuv.UnitNormal.Quantile(0.5 + confLevel/2)
	rnd := e.stream()
	bootS1 := make([][]float64, d)
	bootST := make([][]float64, d)
	for i := range bootS1 {
		bootS1[i] = make([]float64, resamples)
		bootST[i] = make([]float64, resamples)
	}
	var bootS2 [][][]float64
	if e.SecondOrder {
		bootS2 = make([][][]float64, d)
		for j := range bootS2 {
			bootS2[j] = make([][]float64, d)
			for k := j + 1; k < d; k++ {
				bootS2[j][k] = make([]float64, resamples)
			}
		}
	}

	pick := make([]int, l.n)
	s1 := make([]float64, d)
	st := make([]float64, d)
	var s2 [][]float64
	if e.SecondOrder {
		s2 = square(d)
	}
	for r := 0; r < resamples; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range pick {
			pick[i] = rnd.IntN(l.n)
		}
		l.estimate(pick, s1, st, s2)
		for i := 0; i < d; i++ {
			bootS1[i][r] = s1[i]
			bootST[i][r] = st[i]
		}
		for j := range bootS2 {
			for k := j + 1; k < d; k++ {
				bootS2[j][k][r] = s2[j][k]
			}
		}
	}
	for i := 0; i < d; i++ {
		idx.s1Conf[i] = z * stat.StdDev(bootS1[i], nil)
		idx.stConf[i] = z * stat.StdDev(bootST[i], nil)
	}
	for j := range bootS2 {
		for k := j + 1; k < d; k++ {
			idx.s2Conf[j][k] = z * stat.StdDev(bootS2[j][k], nil)
		}
	}

	return idx.export(def.Names), nil
}

// split validates the result vector against the layout and standardizes it.
func (e *Estimator) split(d int, y []float64) (*layout, error) {
	stride := saltelli.RowsPerBase(d, e.SecondOrder)
	if len(y) == 0 || len(y)%stride != 0 {
		return nil, fmt.Errorf("%d results do not fit a layout of %d rows per base sample", len(y), stride)
	}
	n := len(y) / stride
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 base samples, got %d", n)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("result %d is not finite (%g)", i, v)
		}
	}
	mean, std := stat.PopMeanStdDev(y, nil)
	if std == 0 {
		return nil, fmt.Errorf("model output has zero variance over the sample")
	}

	l := &layout{
		n:  n,
		a:  make([]float64, n),
		b:  make([]float64, n),
		ab: make([][]float64, d),
	}
	for i := range l.ab {
		l.ab[i] = make([]float64, n)
	}
	if e.SecondOrder {
		l.ba = make([][]float64, d)
		for i := range l.ba {
			l.ba[i] = make([]float64, n)
		}
	}
	norm := func(v float64) float64 { return (v - mean) / std }
	for j := 0; j < n; j++ {
		base := j * stride
		l.a[j] = norm(y[base])
		for i := 0; i < d; i++ {
			l.ab[i][j] = norm(y[base+1+i])
			if e.SecondOrder {
				l.ba[i][j] = norm(y[base+1+d+i])
			}
		}
		l.b[j] = norm(y[base+stride-1])
	}
	return l, nil
}

// estimate fills s1, st and (when non-nil) the upper triangle of s2 using the
// base rows listed in pick.
func (l *layout) estimate(pick []int, s1, st []float64, s2 [][]float64) {
	m := len(pick)
	ab := make([]float64, 2*m)
	for r, j := range pick {
		ab[r] = l.a[j]
		ab[m+r] = l.b[j]
	}
	variance := stat.PopVariance(ab, nil)
	if variance == 0 {
		// Degenerate resample: every picked row has the same output.
		for i := range s1 {
			s1[i], st[i] = 0, 0
		}
		for j := range s2 {
			for k := range s2[j] {
				s2[j][k] = 0
			}
		}
		return
	}

	terms := make([]float64, m)
	for i := range l.ab {
		for r, j := range pick {
			terms[r] = l.b[j] * (l.ab[i][j] - l.a[j])
		}
		s1[i] = stat.Mean(terms, nil) / variance

		for r, j := range pick {
			diff := l.a[j] - l.ab[i][j]
			terms[r] = diff * diff
		}
		st[i] = 0.5 * stat.Mean(terms, nil) / variance
	}

	if s2 == nil || l.ba == nil {
		return
	}
	for j := range l.ab {
		for k := j + 1; k < len(l.ab); k++ {
			for r, p := range pick {
				terms[r] = l.ba[j][p]*l.ab[k][p] - l.a[p]*l.b[p]
			}
			s2[j][k] = stat.Mean(terms, nil)/variance - s1[j] - s1[k]
		}
	}
}

func (e *Estimator) stream() *rand.Rand {
	if e.RNG == nil {
		return rand.New(rand.NewPCG(uint64(e.Seed), 0))
	}
	return e.RNG.Stream(StageName, e.Seed)
}

// accumulator collects point estimates and confidence half-widths.
type accumulator struct {
	s1, s1Conf []float64
	st, stConf []float64
	s2, s2Conf [][]float64
}

func newAccumulator(d int, secondOrder bool) *accumulator {
	acc := &accumulator{
		s1:     make([]float64, d),
		s1Conf: make([]float64, d),
		st:     make([]float64, d),
		stConf: make([]float64, d),
	}
	if secondOrder {
		acc.s2 = square(d)
		acc.s2Conf = square(d)
	}
	return acc
}

func (acc *accumulator) export(names []string) *ports.Indices {
	return &ports.Indices{
		Names:  append([]string(nil), names...),
		S1:     acc.s1,
		S1Conf: acc.s1Conf,
		ST:     acc.st,
		STConf: acc.stConf,
		S2:     acc.s2,
		S2Conf: acc.s2Conf,
	}
}

func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// square allocates a d x d matrix. Only the upper triangle (j < k) of S2 is
// estimated; the rest stays zero so the indices remain JSON-encodable.
func square(d int) [][]float64 {
	m := make([][]float64, d)
	for j := range m {
		m[j] = make([]float64, d)
	}
	return m
}
