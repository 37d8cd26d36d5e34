package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firesens/app"
	"firesens/domain/problem"
	"firesens/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Sampling:   config.SamplingConfig{Count: 64, Seed: 1, SecondOrder: true},
		Analysis:   config.AnalysisConfig{BootstrapResamples: 20, ConfLevel: 0.95},
		Evaluation: config.EvaluationConfig{Workers: 2},
		Logging:    config.LoggingConfig{Level: "ERROR"},
	}
}

func TestPrintModels(t *testing.T) {
	w, err := newWiring(testConfig(t))
	require.NoError(t, err)

	var table bytes.Buffer
	require.NoError(t, printModels(&table, w, "table"))
	assert.Contains(t, table.String(), "toyspread")
	assert.Contains(t, table.String(), "fuel_height, fuel_load")

	var out bytes.Buffer
	require.NoError(t, printModels(&out, w, "json"))
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Len(t, decoded, 3)
}

func TestAnalyzeAndPrint(t *testing.T) {
	cfg := testConfig(t)
	w, err := newWiring(cfg)
	require.NoError(t, err)

	res, err := w.pipeline.Run(context.Background(), app.RunRequest{
		SampleRequest: app.SampleRequest{ModelKey: "ishigami", ResultVar: "Y", N: cfg.Sampling.Count},
	})
	require.NoError(t, err)
	report, err := w.analyzer.Analyze(context.Background(), res.ProblemSet, problem.SelectResults)
	require.NoError(t, err)

	var table bytes.Buffer
	require.NoError(t, printSobol(&table, res, report, "table"))
	assert.Contains(t, table.String(), "x1 x x3")

	var out bytes.Buffer
	require.NoError(t, printSobol(&out, res, report, "json"))
	assert.Contains(t, out.String(), `"S1"`)
	assert.Contains(t, out.String(), `"fingerprint"`)
}

func TestWiring_BoundsFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("variables:\n  a:\n    range: [10, 11]\n"), 0o600))

	cfg := testConfig(t)
	cfg.Paths.BoundsFile = path
	w, err := newWiring(cfg)
	require.NoError(t, err)

	res, err := w.pipeline.Run(context.Background(), app.RunRequest{
		SampleRequest: app.SampleRequest{ModelKey: "linear", ResultVar: "ROS", N: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.ProblemSet.Definition.Bounds[0].Low)

	var out bytes.Buffer
	report, err := w.verifier.Verify(context.Background(), res.ProblemSet, problem.SelectResults)
	require.NoError(t, err)
	require.NoError(t, printVerification(&out, report, "table"))
	assert.Contains(t, out.String(), "Mean |deviation|")
}

func TestWiring_MissingBoundsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.BoundsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := newWiring(cfg)
	assert.Error(t, err)
}
