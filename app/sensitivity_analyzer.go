package app

import (
	"context"
	"fmt"

	"firesens/domain/core"
	"firesens/domain/problem"
	"firesens/internal"
	"firesens/ports"
)

// SobolReport is the tuple handed to presentation: indices, the ordered
// names, display positions and the model name.
type SobolReport struct {
	RunID     core.RunID     `json:"run_id"`
	ModelName string         `json:"model"`
	ResultVar string         `json:"result_var"`
	Names     []string       `json:"names"`
	Positions []int          `json:"positions"`
	Indices   *ports.Indices `json:"indices"`
}

// SensitivityAnalyzer computes Sobol indices for an evaluated problem set
type SensitivityAnalyzer struct {
	estimator ports.Estimator
	logger    *internal.Logger
}

// NewSensitivityAnalyzer creates a sensitivity analyzer
func NewSensitivityAnalyzer(estimator ports.Estimator, logger *internal.Logger) *SensitivityAnalyzer {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &SensitivityAnalyzer{estimator: estimator, logger: logger}
}

// Analyze computes indices for the results picked by sel. The estimator needs
// the complete sample in the layout the sampler produced, so a split problem
// set is rejected rather than coerced.
func (a *SensitivityAnalyzer) Analyze(ctx context.Context, ps *problem.ProblemSet, sel problem.Selector) (*SobolReport, error) {
	if ps.IsSplit() {
		return nil, core.NewShapeError("problem set %s is split; sensitivity analysis needs the unsplit sample", ps.RunID)
	}
	selection, err := ps.Select(sel)
	if err != nil {
		return nil, err
	}
	def := ps.Definition

	idx, err := a.estimator.Analyze(ctx, def, selection.Results)
	if err != nil {
		if core.IsExternalComputationError(err) || core.IsConfigurationError(err) || ctx.Err() != nil {
			return nil, err
		}
		return nil, core.NewExternalComputationError("estimator", err)
	}
	if err := conforms(def, idx); err != nil {
		return nil, core.NewExternalComputationError("estimator", err)
	}

	positions := make([]int, def.NumVars)
	for i := range positions {
		positions[i] = i
	}
	report := &SobolReport{
		RunID:     ps.RunID,
		ModelName: def.ModelName,
		ResultVar: ps.ResultVar,
		Names:     append([]string(nil), def.Names...),
		Positions: positions,
		Indices:   idx,
	}

	if a.logger.GetLevel() >= internal.LogLevelDebug {
		for i, name := range def.Names {
			a.logger.Debug("%s: S1=%.3f ST=%.3f", name, idx.S1[i], idx.ST[i])
		}
	}
	return report, nil
}

// conforms checks that the estimator answered for exactly the definition's names.
func conforms(def problem.Definition, idx *ports.Indices) error {
	if idx == nil {
		return fmt.Errorf("no indices returned")
	}
	if !def.SameNames(idx.Names) {
		return fmt.Errorf("indices are for %v, expected %v", idx.Names, def.Names)
	}
	for label, v := range map[string][]float64{"S1": idx.S1, "S1_conf": idx.S1Conf, "ST": idx.ST, "ST_conf": idx.STConf} {
		if len(v) != def.NumVars {
			return fmt.Errorf("%s has %d entries, expected %d", label, len(v), def.NumVars)
		}
	}
	if idx.S2 != nil && len(idx.S2) != def.NumVars {
		return fmt.Errorf("S2 has %d rows, expected %d", len(idx.S2), def.NumVars)
	}
	return nil
}
