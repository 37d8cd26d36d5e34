package app

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	"firesens/domain/core"
	"firesens/domain/problem"
	"firesens/internal"
	"firesens/ports"
)

// VerificationReport summarizes the deviation between stored results and a
// fresh evaluation of the same samples.
type VerificationReport struct {
	RunID            core.RunID       `json:"run_id"`
	ModelName        string           `json:"model"`
	ResultVar        string           `json:"result_var"`
	Selector         problem.Selector `json:"selector"`
	Samples          int              `json:"samples"`
	MeanAbsDeviation float64          `json:"mean_abs_deviation"`
	MaxAbsDeviation  float64          `json:"max_abs_deviation"`
}

// ErrorVerifier re-evaluates stored samples to detect model drift or a
// mismatched problem set.
type ErrorVerifier struct {
	catalog ports.ModelCatalog
	merger  ports.ParameterMerger
	logger  *internal.Logger
}

// NewErrorVerifier creates an error verifier
func NewErrorVerifier(catalog ports.ModelCatalog, merger ports.ParameterMerger, logger *internal.Logger) *ErrorVerifier {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ErrorVerifier{catalog: catalog, merger: merger, logger: logger}
}

// Verify re-derives the output for every row selected by sel and reports the
// mean absolute deviation from the stored values. The baseline is the merge
// of all of the model's groups regardless of which groups were varied, so
// deviations are only comparable between sets generated with the same groups.
func (v *ErrorVerifier) Verify(ctx context.Context, ps *problem.ProblemSet, sel problem.Selector) (*VerificationReport, error) {
	selection, err := ps.Select(sel)
	if err != nil {
		return nil, err
	}
	n := selection.Rows()
	if n == 0 || len(selection.Results) != n {
		return nil, core.NewShapeError("selection %q has %d rows and %d results", sel, n, len(selection.Results))
	}
	if _, cols := selection.Input.Dims(); cols != ps.Definition.NumVars {
		return nil, core.NewShapeError("selection %q has %d columns, definition has %d", sel, cols, ps.Definition.NumVars)
	}

	model, err := v.catalog.Model(ps.Definition.ModelName)
	if err != nil {
		return nil, err
	}
	baseline, err := model.Defaults().MergeAll()
	if err != nil {
		return nil, err
	}

	ev := rowEvaluator{
		model:     model,
		merger:    v.merger,
		baseline:  baseline,
		names:     ps.Definition.Names,
		resultVar: ps.ResultVar,
	}
	deviations := make([]float64, n)
	for r := 0; r < n; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fresh, err := ev.eval(selection.Input.RawRowView(r))
		if err != nil {
			return nil, err
		}
		deviations[r] = math.Abs(fresh - selection.Results[r])
	}

	mean, err := stats.Mean(deviations)
	if err != nil {
		return nil, core.NewExternalComputationError("deviation summary", err)
	}
	maxDev, err := stats.Max(deviations)
	if err != nil {
		return nil, core.NewExternalComputationError("deviation summary", err)
	}

	report := &VerificationReport{
		RunID:            ps.RunID,
		ModelName:        ps.Definition.ModelName,
		ResultVar:        ps.ResultVar,
		Selector:         selection.Selector,
		Samples:          n,
		MeanAbsDeviation: mean,
		MaxAbsDeviation:  maxDev,
	}
	v.logger.Info("verified %d %s samples of %s: mean |dev| %.3g, max %.3g",
		n, sel, report.ModelName, mean, maxDev)
	return report, nil
}
