// Package catalog provides explicitly constructed, in-memory implementations
// of the model catalog, bounds registry and parameter merger ports.
package catalog

import (
	"sort"
	"sync"

	"firesens/domain/core"
	"firesens/domain/params"
	"firesens/ports"
)

// Registry implements ports.ModelCatalog over registered models
type Registry struct {
	mu     sync.RWMutex
	models map[string]ports.Model
}

// NewRegistry creates a registry holding the given models
func NewRegistry(models ...ports.Model) *Registry {
	r := &Registry{models: make(map[string]ports.Model, len(models))}
	for _, m := range models {
		r.Register(m)
	}
	return r
}

// Register adds or replaces a model under its own name
func (r *Registry) Register(m ports.Model) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[m.Name()] = m
}

// Model looks up a model by key
func (r *Registry) Model(key string) (ports.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[key]
	if !ok {
		return nil, core.NewConfigurationError("model %q is not registered", key)
	}
	return m, nil
}

// Keys returns the registered model keys, sorted
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.models))
	for k := range r.models {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvalFunc computes a model's outputs from a full parameter mapping
type EvalFunc func(fm params.Mapping) (params.Mapping, error)

// FuncModel adapts a plain function and a parameter set to ports.Model
type FuncModel struct {
	Key string
	Set params.ParameterSet
	Fn  EvalFunc
}

func (m *FuncModel) Name() string { return m.Key }

func (m *FuncModel) Defaults() params.ParameterSet { return m.Set }

// Evaluate runs Fn; the caller's mapping is never handed out for mutation.
func (m *FuncModel) Evaluate(fm params.Mapping) (params.Mapping, error) {
	return m.Fn(fm.Clone())
}
