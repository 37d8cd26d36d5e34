package catalog

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"firesens/domain/core"
	"firesens/domain/params"
)

// Bounds implements ports.BoundsRegistry with a name -> range table
type Bounds struct {
	ranges map[string]params.Bound
}

// NewBounds creates a bounds registry from a table
func NewBounds(ranges map[string]params.Bound) *Bounds {
	b := &Bounds{ranges: make(map[string]params.Bound, len(ranges))}
	for name, r := range ranges {
		b.ranges[name] = r
	}
	return b
}

// Set registers or replaces the range of a variable
func (b *Bounds) Set(name string, r params.Bound) {
	b.ranges[name] = r
}

// Range returns the admissible range of a variable
func (b *Bounds) Range(name string) (params.Bound, bool) {
	r, ok := b.ranges[name]
	return r, ok
}

// Names lists the variables with a registered range, sorted
func (b *Bounds) Names() []string {
	names := make([]string, 0, len(b.ranges))
	for name := range b.ranges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overlay copies every range of other into b, replacing existing entries
func (b *Bounds) Overlay(other *Bounds) {
	for name, r := range other.ranges {
		b.ranges[name] = r
	}
}

// boundsFile is the on-disk layout:
//
//	variables:
//	  wind:
//	    range: [0, 20]
//	    unit: m/s
type boundsFile struct {
	Variables map[string]struct {
		Range []float64 `yaml:"range"`
		Unit  string    `yaml:"unit,omitempty"`
	} `yaml:"variables"`
}

// LoadBoundsFile reads a YAML variable-properties file
func LoadBoundsFile(path string) (*Bounds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigurationError("read bounds file %s: %v", path, err)
	}
	return ParseBounds(data)
}

// ParseBounds decodes the YAML variable-properties layout
func ParseBounds(data []byte) (*Bounds, error) {
	var file boundsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, core.NewConfigurationError("parse bounds: %v", err)
	}

	b := NewBounds(nil)
	for name, v := range file.Variables {
		if len(v.Range) != 2 {
			return nil, core.NewConfigurationError("variable %q: range needs exactly two values, got %d", name, len(v.Range))
		}
		r := params.Bound{Low: v.Range[0], High: v.Range[1]}
		if !r.Valid() {
			return nil, core.NewConfigurationError("variable %q: range [%g, %g] must be finite with low <= high", name, r.Low, r.High)
		}
		b.Set(name, r)
	}
	return b, nil
}
