package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firesens/adapters/stats/saltelli"
	"firesens/adapters/stats/sobol"
	"firesens/domain/problem"
	"firesens/internal"
	"firesens/internal/testkit"
	"firesens/ports"
)

// MockSampler is a ports.Sampler driven by testify expectations
type MockSampler struct {
	mock.Mock
}

func (m *MockSampler) Sample(ctx context.Context, def problem.Definition, n int, seed int64) (*ports.SampleMatrix, error) {
	args := m.Called(ctx, def, n, seed)
	sm, _ := args.Get(0).(*ports.SampleMatrix)
	return sm, args.Error(1)
}

// MockEstimator is a ports.Estimator driven by testify expectations
type MockEstimator struct {
	mock.Mock
}

func (m *MockEstimator) Analyze(ctx context.Context, def problem.Definition, results []float64) (*ports.Indices, error) {
	args := m.Called(ctx, def, results)
	idx, _ := args.Get(0).(*ports.Indices)
	return idx, args.Error(1)
}

// services wires the real collaborators over the synthetic test kit
type services struct {
	kit       *testkit.TestKit
	generator *SampleGenerator
	evaluator *ModelEvaluator
	verifier  *ErrorVerifier
	analyzer  *SensitivityAnalyzer
	pipeline  *Pipeline
}

func newServices(t *testing.T, secondOrder bool, workers int) *services {
	t.Helper()
	kit := testkit.NewTestKit()
	logger := internal.NewNopLogger()

	sampler := saltelli.NewSampler(kit.RNGAdapter(), secondOrder)
	estimator := sobol.NewEstimator(kit.RNGAdapter(), 42, secondOrder)

	s := &services{kit: kit}
	s.generator = NewSampleGenerator(kit.Catalog(), kit.Bounds(), sampler, logger)
	s.evaluator = NewModelEvaluator(kit.Catalog(), kit.Merger(), workers, logger)
	s.verifier = NewErrorVerifier(kit.Catalog(), kit.Merger(), logger)
	s.analyzer = NewSensitivityAnalyzer(estimator, logger)
	s.pipeline = NewPipeline(kit.Catalog(), kit.Merger(), s.generator, s.evaluator, kit.RNGAdapter(), logger)
	return s
}

// evaluatedSet generates and evaluates a problem set for req
func (s *services) evaluatedSet(t *testing.T, req SampleRequest) *problem.ProblemSet {
	t.Helper()
	ps, baseline, err := s.generator.Generate(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, s.evaluator.Evaluate(context.Background(), ps, baseline))
	return ps
}
