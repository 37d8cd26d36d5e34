package app

import (
	"context"
	"errors"
	"fmt"

	"firesens/domain/core"
	"firesens/domain/params"
	"firesens/domain/problem"
	"firesens/internal"
	"firesens/ports"
)

// MinSampleCount is the smallest base sample count the estimator can use.
const MinSampleCount = 2

// SampleGenerator builds problem definitions and draws their samples
type SampleGenerator struct {
	catalog ports.ModelCatalog
	bounds  ports.BoundsRegistry
	sampler ports.Sampler
	logger  *internal.Logger
}

// SampleRequest describes which parameters of which model to vary
type SampleRequest struct {
	ModelKey   string             `json:"model"`
	Groups     []params.GroupName `json:"groups,omitempty"` // empty means every canonical group the model declares
	ResultVar  string             `json:"result_var"`
	N          int                `json:"n"`
	Seed       int64              `json:"seed"` // seeds the sampler and any later split
	ParamNames []string           `json:"param_names,omitempty"` // optional subset/reordering of the group union
}

// NewSampleGenerator creates a sample generator
func NewSampleGenerator(catalog ports.ModelCatalog, bounds ports.BoundsRegistry, sampler ports.Sampler, logger *internal.Logger) *SampleGenerator {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &SampleGenerator{catalog: catalog, bounds: bounds, sampler: sampler, logger: logger}
}

// Define resolves the request into an ordered problem definition and the
// model's baseline mapping. Nothing is sampled.
func (g *SampleGenerator) Define(req SampleRequest) (problem.Definition, params.Mapping, error) {
	model, err := g.catalog.Model(req.ModelKey)
	if err != nil {
		return problem.Definition{}, nil, err
	}
	set := model.Defaults()

	baseline, err := set.MergeAll()
	if err != nil {
		return problem.Definition{}, nil, err
	}

	groups := req.Groups
	if len(groups) == 0 {
		groups = defaultGroups(set)
	}
	union, err := set.Select(groups...)
	if err != nil {
		return problem.Definition{}, nil, err
	}

	names := union.Names()
	if len(req.ParamNames) > 0 {
		names, err = orderNames(union, req.ParamNames)
		if err != nil {
			return problem.Definition{}, nil, err
		}
	}

	bounds := make([]params.Bound, len(names))
	for i, name := range names {
		r, ok := g.bounds.Range(name)
		if !ok {
			return problem.Definition{}, nil, core.NewConfigurationError("no range registered for parameter %q", name)
		}
		bounds[i] = r
	}

	def, err := problem.NewDefinition(req.ModelKey, names, bounds)
	if err != nil {
		return problem.Definition{}, nil, err
	}
	return def, baseline, nil
}

// Generate builds the problem set for req. The returned set is unsplit and
// unevaluated; the baseline is the merge of every model group.
func (g *SampleGenerator) Generate(ctx context.Context, req SampleRequest) (*problem.ProblemSet, params.Mapping, error) {
	if req.N < MinSampleCount {
		return nil, nil, core.NewConfigurationError("sample count must be at least %d, got %d", MinSampleCount, req.N)
	}
	def, baseline, err := g.Define(req)
	if err != nil {
		return nil, nil, err
	}

	g.logger.Debug("sampling %s: %d parameters %v, N=%d, seed=%d", def.ModelName, def.NumVars, def.Names, req.N, req.Seed)
	sm, err := g.sampler.Sample(ctx, def, req.N, req.Seed)
	if err != nil {
		if core.IsExternalComputationError(err) || core.IsConfigurationError(err) || ctx.Err() != nil {
			return nil, nil, err
		}
		return nil, nil, core.NewExternalComputationError("sampler", err)
	}
	if sm == nil || sm.Rows == nil {
		return nil, nil, core.NewExternalComputationError("sampler", errors.New("sampler returned no matrix"))
	}
	if !def.SameNames(sm.Names) {
		return nil, nil, core.NewExternalComputationError("sampler",
			fmt.Errorf("echoed names %v do not match requested %v", sm.Names, def.Names))
	}
	rows, cols := sm.Rows.Dims()
	if cols != def.NumVars {
		return nil, nil, core.NewExternalComputationError("sampler",
			fmt.Errorf("sample has %d columns, expected %d", cols, def.NumVars))
	}

	ps := problem.New(def, req.ResultVar, req.N, req.Seed, sm.Rows)
	g.logger.Info("generated problem set %s for %s: %d samples x %d parameters", ps.RunID, def.ModelName, rows, cols)
	return ps, baseline, nil
}

// defaultGroups is every canonical group the model declares, in canonical order.
func defaultGroups(set params.ParameterSet) []params.GroupName {
	var groups []params.GroupName
	for _, name := range params.CanonicalGroups {
		if _, ok := set.Group(name); ok {
			groups = append(groups, name)
		}
	}
	return groups
}

// orderNames checks that requested is a duplicate-free subset of the union
// and returns it as the column order.
func orderNames(union params.Group, requested []string) ([]string, error) {
	known := make(map[string]bool, len(union))
	for _, p := range union {
		known[p.Name] = true
	}
	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		if !known[name] {
			return nil, core.NewConfigurationError("parameter %q is not in the selected groups", name)
		}
		if seen[name] {
			return nil, core.NewConfigurationError("parameter %q requested twice", name)
		}
		seen[name] = true
	}
	return append([]string(nil), requested...), nil
}
