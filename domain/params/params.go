// Package params holds the typed parameter records shared by models,
// catalogs and the sampling pipeline.
package params

import (
	"math"
	"sort"

	"firesens/domain/core"
)

// GroupName names a parameter group of a model.
type GroupName string

const (
	GroupEnvironment GroupName = "environment"
	GroupTypical     GroupName = "typical"
	GroupFuelState   GroupName = "fuelstate"
	GroupModel       GroupName = "model"
)

// CanonicalGroups is the default group selection, in order.
var CanonicalGroups = []GroupName{GroupEnvironment, GroupTypical, GroupFuelState, GroupModel}

// Parameter is one named default value.
type Parameter struct {
	Name    string
	Default float64
}

// Group is an ordered list of parameters. Declaration order is preserved
// because it becomes the column order of a sample matrix.
type Group []Parameter

// Names returns the parameter names in declaration order.
func (g Group) Names() []string {
	names := make([]string, len(g))
	for i, p := range g {
		names[i] = p.Name
	}
	return names
}

// Mapping is a full model input (or output) state.
type Mapping map[string]float64

// Clone returns an independent copy.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the sorted keys.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bound is an admissible closed range.
type Bound struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Width returns High - Low.
func (b Bound) Width() float64 { return b.High - b.Low }

// Valid reports whether both ends are finite and Low <= High.
func (b Bound) Valid() bool {
	return finite(b.Low) && finite(b.High) && b.Low <= b.High
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Contains reports whether v lies in [Low, High].
func (b Bound) Contains(v float64) bool { return v >= b.Low && v <= b.High }

// ParameterSet is the typed per-model record of parameter groups.
// The four canonical groups are optional; models with additional
// groups declare them in Extra.
type ParameterSet struct {
	Environment Group
	Typical     Group
	FuelState   Group
	Model       Group
	Extra       map[GroupName]Group
}

// Group returns a named group and whether the model declares it.
// A canonical group with no parameters counts as undeclared.
func (s ParameterSet) Group(name GroupName) (Group, bool) {
	var g Group
	switch name {
	case GroupEnvironment:
		g = s.Environment
	case GroupTypical:
		g = s.Typical
	case GroupFuelState:
		g = s.FuelState
	case GroupModel:
		g = s.Model
	default:
		extra, ok := s.Extra[name]
		return extra, ok
	}
	return g, len(g) > 0
}

// GroupNames lists declared groups: canonical ones first, then extras sorted.
func (s ParameterSet) GroupNames() []GroupName {
	var names []GroupName
	for _, name := range CanonicalGroups {
		if _, ok := s.Group(name); ok {
			names = append(names, name)
		}
	}
	extras := make([]string, 0, len(s.Extra))
	for name := range s.Extra {
		extras = append(extras, string(name))
	}
	sort.Strings(extras)
	for _, name := range extras {
		names = append(names, GroupName(name))
	}
	return names
}

// Select returns the ordered union of the named groups. A group named twice
// contributes once. Unknown groups and names declared by more than one
// selected group are configuration errors.
func (s ParameterSet) Select(groups ...GroupName) (Group, error) {
	seen := make(map[string]GroupName)
	selected := make(map[GroupName]bool, len(groups))
	var union Group
	for _, name := range groups {
		if selected[name] {
			continue
		}
		selected[name] = true
		g, ok := s.Group(name)
		if !ok {
			return nil, core.NewConfigurationError("group %q is not defined for this model", name)
		}
		for _, p := range g {
			if owner, dup := seen[p.Name]; dup {
				return nil, core.NewConfigurationError("parameter %q declared in both %q and %q", p.Name, owner, name)
			}
			seen[p.Name] = name
			union = append(union, p)
		}
	}
	return union, nil
}

// Merge unions the named groups into one mapping.
func (s ParameterSet) Merge(groups ...GroupName) (Mapping, error) {
	union, err := s.Select(groups...)
	if err != nil {
		return nil, err
	}
	fm := make(Mapping, len(union))
	for _, p := range union {
		fm[p.Name] = p.Default
	}
	return fm, nil
}

// MergeAll unions every declared group.
func (s ParameterSet) MergeAll() (Mapping, error) {
	return s.Merge(s.GroupNames()...)
}
