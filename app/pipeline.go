package app

import (
	"context"
	"time"

	"firesens/domain/core"
	"firesens/domain/problem"
	"firesens/internal"
	"firesens/internal/analysis"
	"firesens/internal/profiling"
	"firesens/ports"
)

// Pipeline runs the generate, evaluate, profile and optional split steps
// that produce an analysis-ready problem set.
type Pipeline struct {
	catalog   ports.ModelCatalog
	merger    ports.ParameterMerger
	generator *SampleGenerator
	evaluator *ModelEvaluator
	rng       ports.RNGPort
	profiler  *profiling.DistributionAnalyzer
	logger    *internal.Logger
}

// RunRequest extends a sample request with an optional validation split
type RunRequest struct {
	SampleRequest
	ValProp float64 `json:"val_prop,omitempty"` // 0 leaves the set unsplit
}

// RunResult is the outcome of one pipeline run
type RunResult struct {
	ProblemSet *problem.ProblemSet           `json:"problem_set"`
	Profile    *profiling.ResultProfile      `json:"profile,omitempty"`
	Partition  *analysis.PartitionStatistics `json:"partition,omitempty"`
	RuntimeMs  int64                         `json:"runtime_ms"`
}

// NewPipeline wires a pipeline from its services
func NewPipeline(catalog ports.ModelCatalog, merger ports.ParameterMerger, generator *SampleGenerator,
	evaluator *ModelEvaluator, rng ports.RNGPort, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Pipeline{
		catalog:   catalog,
		merger:    merger,
		generator: generator,
		evaluator: evaluator,
		rng:       rng,
		profiler:  profiling.NewDistributionAnalyzer(),
		logger:    logger,
	}
}

// Run builds, evaluates and optionally splits a problem set. The result
// variable is checked against the model's baseline output before sampling.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	start := time.Now()

	if req.ValProp < 0 || req.ValProp >= 1 {
		return nil, core.NewConfigurationError("validation proportion must be in [0,1), got %g", req.ValProp)
	}
	if err := p.Preflight(req.SampleRequest); err != nil {
		return nil, err
	}

	ps, baseline, err := p.generator.Generate(ctx, req.SampleRequest)
	if err != nil {
		return nil, err
	}
	if err := p.evaluator.Evaluate(ctx, ps, baseline); err != nil {
		return nil, err
	}

	result := &RunResult{ProblemSet: ps}
	data, err := ps.Unsplit()
	if err != nil {
		return nil, err
	}
	profile, err := p.profiler.AnalyzeDistribution(data.Results)
	if err != nil {
		p.logger.Warn("could not profile results of %s: %v", ps.RunID, err)
	} else {
		result.Profile = &profile
		p.logger.Debug("%s %s: mean=%.4g std=%.4g range=[%.4g, %.4g]",
			ps.Definition.ModelName, ps.ResultVar, profile.Mean, profile.StdDev, profile.Min, profile.Max)
	}

	if req.ValProp > 0 {
		partitioner := analysis.NewDataPartitionerWithSeed(p.rng, ps.Seed)
		stats, err := partitioner.PartitionProblemSet(ps, req.ValProp)
		if err != nil {
			return nil, err
		}
		result.Partition = stats
		p.logger.Info("split %s into %d train / %d val rows", ps.RunID, stats.TrainRows, stats.ValidationRows)
	}

	result.RuntimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// Preflight evaluates the model once at its baseline and checks that the
// requested result variable is produced.
func (p *Pipeline) Preflight(req SampleRequest) error {
	model, err := p.catalog.Model(req.ModelKey)
	if err != nil {
		return err
	}
	baseline, err := model.Defaults().MergeAll()
	if err != nil {
		return err
	}
	ev := rowEvaluator{model: model, merger: p.merger, baseline: baseline, resultVar: req.ResultVar}
	if _, err := ev.eval(nil); err != nil {
		if core.IsUnknownOutputError(err) {
			p.logger.Error("model %s does not produce %q", model.Name(), req.ResultVar)
		}
		return err
	}
	return nil
}
