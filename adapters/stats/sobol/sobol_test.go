package sobol

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firesens/adapters/rng"
	"firesens/adapters/stats/saltelli"
	"firesens/domain/core"
	"firesens/domain/params"
	"firesens/domain/problem"
)

// evaluate samples def with the paired sampler and applies f to every row.
func evaluate(t *testing.T, def problem.Definition, n int, secondOrder bool, f func(x []float64) float64) []float64 {
	t.Helper()
	sm, err := saltelli.NewSampler(rng.NewAdapter(), secondOrder).Sample(context.Background(), def, n, 42)
	require.NoError(t, err)

	rows, _ := sm.Rows.Dims()
	y := make([]float64, rows)
	for r := 0; r < rows; r++ {
		y[r] = f(sm.Rows.RawRowView(r))
	}
	return y
}

func TestAnalyze_LinearModelCoefficientRatio(t *testing.T) {
	def, err := problem.NewDefinition("linear", []string{"a", "b"},
		[]params.Bound{{Low: 0, High: 1}, {Low: 0, High: 1}})
	require.NoError(t, err)

	y := evaluate(t, def, 4096, false, func(x []float64) float64 { return x[0] + 2*x[1] })

	idx, err := NewEstimator(rng.NewAdapter(), 42, false).Analyze(context.Background(), def, y)
	require.NoError(t, err)
	require.Len(t, idx.S1, 2)

	// Var(a) : Var(2b) = 1 : 4, so S1 = [0.2, 0.8].
	assert.InDelta(t, 0.2, idx.S1[0], 0.03)
	assert.InDelta(t, 0.8, idx.S1[1], 0.03)
	assert.InDelta(t, 4.0, idx.S1[1]/idx.S1[0], 0.6)

	// No interaction: total effects match first-order effects.
	for i := range idx.S1 {
		assert.InDelta(t, idx.S1[i], idx.ST[i], 0.05, "ST[%d] should match S1[%d]", i, i)
		assert.Greater(t, idx.S1Conf[i], 0.0)
	}
	assert.Equal(t, def.Names, idx.Names)
	assert.Nil(t, idx.S2)
}

func TestAnalyze_IshigamiBoundedIndices(t *testing.T) {
	bound := params.Bound{Low: -math.Pi, High: math.Pi}
	def, err := problem.NewDefinition("ishigami", []string{"x1", "x2", "x3"}, []params.Bound{bound, bound, bound})
	require.NoError(t, err)

	ishigami := func(x []float64) float64 {
		return math.Sin(x[0]) + 7*math.Pow(math.Sin(x[1]), 2) + 0.1*math.Pow(x[2], 4)*math.Sin(x[0])
	}
	y := evaluate(t, def, 2048, true, ishigami)

	idx, err := NewEstimator(rng.NewAdapter(), 42, true).Analyze(context.Background(), def, y)
	require.NoError(t, err)

	// Analytical values: S1 = [0.314, 0.442, 0], ST = [0.558, 0.442, 0.244].
	assert.InDelta(t, 0.314, idx.S1[0], 0.08)
	assert.InDelta(t, 0.442, idx.S1[1], 0.08)
	assert.InDelta(t, 0.0, idx.S1[2], 0.08)
	assert.InDelta(t, 0.558, idx.ST[0], 0.08)
	assert.InDelta(t, 0.244, idx.ST[2], 0.08)

	for i := range idx.S1 {
		assert.GreaterOrEqual(t, idx.S1[i], -0.08)
		assert.LessOrEqual(t, idx.S1[i], idx.ST[i]+0.08)
	}

	// The only interaction is x1-x3 (S13 = 0.244).
	require.Len(t, idx.S2, 3)
	assert.InDelta(t, 0.244, idx.S2[0][2], 0.12)
	assert.InDelta(t, 0.0, idx.S2[0][1], 0.12)
}

func TestAnalyze_RejectsNonConformingResults(t *testing.T) {
	def, err := problem.NewDefinition("linear", []string{"a", "b"},
		[]params.Bound{{Low: 0, High: 1}, {Low: 0, High: 1}})
	require.NoError(t, err)
	e := NewEstimator(nil, 1, false)

	_, err = e.Analyze(context.Background(), def, make([]float64, 13))
	assert.True(t, core.IsExternalComputationError(err), "length not a multiple of d+2")

	_, err = e.Analyze(context.Background(), def, make([]float64, 16))
	assert.True(t, core.IsExternalComputationError(err), "constant output has no variance")

	y := make([]float64, 16)
	for i := range y {
		y[i] = float64(i)
	}
	y[3] = math.NaN()
	_, err = e.Analyze(context.Background(), def, y)
	assert.True(t, core.IsExternalComputationError(err))
}

func TestAnalyze_DeterministicConfidence(t *testing.T) {
	def, err := problem.NewDefinition("linear", []string{"a", "b"},
		[]params.Bound{{Low: 0, High: 1}, {Low: 0, High: 1}})
	require.NoError(t, err)
	y := evaluate(t, def, 256, false, func(x []float64) float64 { return x[0] * x[1] })

	first, err := NewEstimator(rng.NewAdapter(), 9, false).Analyze(context.Background(), def, y)
	require.NoError(t, err)
	second, err := NewEstimator(rng.NewAdapter(), 9, false).Analyze(context.Background(), def, y)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	bad := &Estimator{Resamples: 1}
	_, err = bad.Analyze(context.Background(), def, y)
	assert.True(t, core.IsConfigurationError(err))
}
