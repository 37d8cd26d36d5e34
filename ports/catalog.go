package ports

import (
	"firesens/domain/params"
)

// Model is one rate-of-spread model as seen by the pipeline.
type Model interface {
	// Name is the catalog key of the model.
	Name() string
	// Defaults returns the grouped parameter defaults.
	Defaults() params.ParameterSet
	// Evaluate runs the model on a full parameter mapping and returns its
	// outputs keyed by variable name. It must be a pure function of fm.
	Evaluate(fm params.Mapping) (params.Mapping, error)
}

// ModelCatalog resolves model keys to models
type ModelCatalog interface {
	Model(key string) (Model, error)
	Keys() []string
}

// BoundsRegistry exposes the admissible range of every known variable
type BoundsRegistry interface {
	Range(name string) (params.Bound, bool)
}

// ParameterMerger normalizes a mapping by filling derived fields. It must be
// pure and must not drop keys it does not recognize.
type ParameterMerger interface {
	Normalize(fm params.Mapping) params.Mapping
}
