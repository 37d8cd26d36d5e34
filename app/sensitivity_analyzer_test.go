package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firesens/domain/core"
	"firesens/domain/problem"
	"firesens/internal/testkit"
	"firesens/ports"
)

func TestAnalyze_LinearModel(t *testing.T) {
	s := newServices(t, false, 1)
	ps := s.evaluatedSet(t, SampleRequest{ModelKey: testkit.ModelLinear, ResultVar: "ROS", N: 2048})

	report, err := s.analyzer.Analyze(context.Background(), ps, problem.SelectResults)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, report.Names)
	assert.Equal(t, []int{0, 1}, report.Positions)
	assert.Equal(t, testkit.ModelLinear, report.ModelName)

	s1, st := report.Indices.S1, report.Indices.ST
	assert.InDelta(t, 4.0, s1[1]/s1[0], 1.0)
	for i := range s1 {
		assert.GreaterOrEqual(t, s1[i], -0.05)
		assert.InDelta(t, s1[i], st[i], 0.05)
	}
}

func TestAnalyze_SecondOrderIndices(t *testing.T) {
	s := newServices(t, true, 2)
	ps := s.evaluatedSet(t, SampleRequest{ModelKey: testkit.ModelIshigami, ResultVar: "Y", N: 1024})

	report, err := s.analyzer.Analyze(context.Background(), ps, problem.SelectResults)
	require.NoError(t, err)
	require.Len(t, report.Indices.S2, 3)

	for i := range report.Names {
		assert.LessOrEqual(t, report.Indices.S1[i], report.Indices.ST[i]+0.1)
	}

	// The report is handed to presentation as JSON.
	_, err = json.Marshal(report)
	assert.NoError(t, err)
}

func TestAnalyze_SplitSetIsShapeError(t *testing.T) {
	s := newServices(t, false, 1)
	res, err := s.pipeline.Run(context.Background(), RunRequest{
		SampleRequest: SampleRequest{ModelKey: testkit.ModelLinear, ResultVar: "ROS", N: 16},
		ValProp:       0.2,
	})
	require.NoError(t, err)

	for _, sel := range []problem.Selector{problem.SelectResults, problem.SelectTrain, problem.SelectVal} {
		_, err := s.analyzer.Analyze(context.Background(), res.ProblemSet, sel)
		assert.True(t, core.IsShapeError(err), "selector %s", sel)
	}
}

func TestAnalyze_UnevaluatedSetIsShapeError(t *testing.T) {
	s := newServices(t, false, 1)
	ps, _, err := s.generator.Generate(context.Background(), SampleRequest{ModelKey: testkit.ModelLinear, ResultVar: "ROS", N: 4})
	require.NoError(t, err)

	_, err = s.analyzer.Analyze(context.Background(), ps, problem.SelectResults)
	assert.True(t, core.IsShapeError(err))
}

func TestAnalyze_NonConformingEstimator(t *testing.T) {
	s := newServices(t, false, 1)
	ps := s.evaluatedSet(t, SampleRequest{ModelKey: testkit.ModelLinear, ResultVar: "ROS", N: 4})

	two := []float64{0.2, 0.8}
	cases := map[string]struct {
		idx *ports.Indices
		err error
	}{
		"short S1":     {idx: &ports.Indices{Names: []string{"a", "b"}, S1: two[:1], S1Conf: two, ST: two, STConf: two}},
		"renamed":      {idx: &ports.Indices{Names: []string{"b", "a"}, S1: two, S1Conf: two, ST: two, STConf: two}},
		"nil indices":  {},
		"collaborator": {err: errors.New("singular design")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			estimator := new(MockEstimator)
			estimator.On("Analyze", mock.Anything, ps.Definition, mock.Anything).Return(tc.idx, tc.err)

			_, err := NewSensitivityAnalyzer(estimator, nil).Analyze(context.Background(), ps, problem.SelectResults)
			assert.True(t, core.IsExternalComputationError(err), "got %v", err)
			estimator.AssertExpectations(t)
		})
	}
}
