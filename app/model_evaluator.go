package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"firesens/domain/core"
	"firesens/domain/params"
	"firesens/domain/problem"
	"firesens/internal"
	"firesens/ports"
)

// ModelEvaluator computes one scalar per sample row
type ModelEvaluator struct {
	catalog ports.ModelCatalog
	merger  ports.ParameterMerger
	workers int
	logger  *internal.Logger
}

// NewModelEvaluator creates an evaluator. workers <= 1 evaluates serially.
func NewModelEvaluator(catalog ports.ModelCatalog, merger ports.ParameterMerger, workers int, logger *internal.Logger) *ModelEvaluator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ModelEvaluator{catalog: catalog, merger: merger, workers: workers, logger: logger}
}

// Evaluate fills the results of an unsplit problem set. Rows are evaluated
// against a copy of baseline with the sampled columns overlaid by name.
// On error the problem set is left without results.
func (e *ModelEvaluator) Evaluate(ctx context.Context, ps *problem.ProblemSet, baseline params.Mapping) error {
	data, err := ps.Unsplit()
	if err != nil {
		return err
	}
	if err := ps.Validate(); err != nil {
		return err
	}
	model, err := e.catalog.Model(ps.Definition.ModelName)
	if err != nil {
		return err
	}

	start := time.Now()
	ev := rowEvaluator{
		model:     model,
		merger:    e.merger,
		baseline:  baseline,
		names:     ps.Definition.Names,
		resultVar: ps.ResultVar,
	}
	results, err := e.evaluateRows(ctx, ev, data.Input)
	if err != nil {
		return err
	}
	data.Results = results

	e.logger.Info("evaluated %d samples of %s in %.2fs (%d workers)",
		len(results), model.Name(), time.Since(start).Seconds(), e.workers)
	return nil
}

// evaluateRows runs ev over every row of input, preserving row order. With
// more than one worker, contiguous chunks are evaluated concurrently and each
// worker writes only its own slots of the result slice.
func (e *ModelEvaluator) evaluateRows(ctx context.Context, ev rowEvaluator, input *mat.Dense) ([]float64, error) {
	rows, _ := input.Dims()
	results := make([]float64, rows)
	if rows == 0 {
		return results, nil
	}

	// The first row runs alone so an unknown output fails before any other
	// row is evaluated.
	v, err := ev.eval(input.RawRowView(0))
	if err != nil {
		return nil, err
	}
	results[0] = v

	workers := e.workers
	if workers > rows-1 {
		workers = rows - 1
	}
	if workers <= 1 {
		for r := 1; r < rows; r++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if results[r], err = ev.eval(input.RawRowView(r)); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (rows - 1 + workers - 1) / workers
	for lo := 1; lo < rows; lo += chunk {
		lo, hi := lo, min(lo+chunk, rows)
		g.Go(func() error {
			for r := lo; r < hi; r++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := ev.eval(input.RawRowView(r))
				if err != nil {
					return err
				}
				results[r] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// rowEvaluator is the per-row computation shared by evaluation and verification.
type rowEvaluator struct {
	model     ports.Model
	merger    ports.ParameterMerger
	baseline  params.Mapping
	names     []string
	resultVar string
}

// eval overlays row onto the baseline by position, normalizes, evaluates,
// normalizes the outputs and extracts the result variable.
func (ev rowEvaluator) eval(row []float64) (float64, error) {
	fm := ev.baseline.Clone()
	for i, name := range ev.names {
		fm[name] = row[i]
	}
	if ev.merger != nil {
		fm = ev.merger.Normalize(fm)
	}
	out, err := ev.model.Evaluate(fm)
	if err != nil {
		return 0, core.NewExternalComputationError("model "+ev.model.Name(), err)
	}
	if ev.merger != nil {
		out = ev.merger.Normalize(out)
	}
	v, ok := out[ev.resultVar]
	if !ok {
		return 0, core.NewUnknownOutputError(ev.model.Name(), ev.resultVar)
	}
	return v, nil
}
