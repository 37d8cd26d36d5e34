package catalog

import (
	"firesens/domain/params"
)

// Derivation fills Target from Inputs whenever every input is present.
type Derivation struct {
	Target string
	Inputs []string
	Fn     func(in []float64) float64
}

// Merger implements ports.ParameterMerger by applying derivations in order.
// A derivation whose inputs are incomplete is skipped; unknown keys pass
// through untouched.
type Merger struct {
	rules []Derivation
}

// NewMerger creates a merger with the given derivation rules
func NewMerger(rules ...Derivation) *Merger {
	return &Merger{rules: rules}
}

// Normalize returns a copy of fm with derived fields recomputed
func (m *Merger) Normalize(fm params.Mapping) params.Mapping {
	out := fm.Clone()
	in := make([]float64, 0, 4)
	for _, rule := range m.rules {
		in = in[:0]
		complete := true
		for _, name := range rule.Inputs {
			v, ok := out[name]
			if !ok {
				complete = false
				break
			}
			in = append(in, v)
		}
		if complete {
			out[rule.Target] = rule.Fn(in)
		}
	}
	return out
}
