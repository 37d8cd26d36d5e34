package problem

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"firesens/domain/core"
)

// Selector picks which stored results an operation looks at.
type Selector string

const (
	SelectResults Selector = "results"
	SelectTrain   Selector = "train"
	SelectVal     Selector = "val"
)

// ParseSelector parses a selector name.
func ParseSelector(s string) (Selector, error) {
	switch sel := Selector(strings.ToLower(strings.TrimSpace(s))); sel {
	case SelectResults, SelectTrain, SelectVal:
		return sel, nil
	case "":
		return SelectResults, nil
	default:
		return "", core.NewConfigurationError("unknown selector %q (want results, train or val)", s)
	}
}

// Selection is a resolved (input, results) pair with aligned rows.
type Selection struct {
	Selector Selector
	Input    *mat.Dense
	Results  []float64
}

// Rows returns the number of selected rows.
func (s Selection) Rows() int {
	if s.Input == nil {
		return 0
	}
	r, _ := s.Input.Dims()
	return r
}

// Select resolves a selector against the problem set's current shape.
// "results" is only valid on an unsplit set and "train"/"val" only on a
// split set; no coercion between shapes is attempted.
func (ps *ProblemSet) Select(sel Selector) (Selection, error) {
	switch data := ps.Data.(type) {
	case *Unsplit:
		if sel != SelectResults {
			return Selection{}, core.NewShapeError("selector %q requires a split problem set", sel)
		}
		if !data.Evaluated() {
			return Selection{}, core.NewShapeError("problem set %s has %d results for %d samples",
				ps.RunID, len(data.Results), data.Rows())
		}
		return Selection{Selector: sel, Input: data.Input, Results: data.Results}, nil
	case *Split:
		var p Partition
		switch sel {
		case SelectTrain:
			p = data.Train
		case SelectVal:
			p = data.Val
		default:
			return Selection{}, core.NewShapeError("selector %q is ambiguous on a split problem set; use train or val", sel)
		}
		return Selection{Selector: sel, Input: p.Input, Results: p.Results}, nil
	default:
		return Selection{}, core.NewShapeError("problem set has no data")
	}
}

// Validate checks the structural invariants of a problem set.
func (ps *ProblemSet) Validate() error {
	if err := ps.Definition.Validate(); err != nil {
		return err
	}
	check := func(label string, input *mat.Dense, results []float64) error {
		if input == nil {
			return core.NewShapeError("%s input is missing", label)
		}
		r, c := input.Dims()
		if c != ps.Definition.NumVars {
			return core.NewShapeError("%s input has %d columns, definition has %d", label, c, ps.Definition.NumVars)
		}
		if results != nil && len(results) != r {
			return core.NewShapeError("%s has %d results for %d rows", label, len(results), r)
		}
		return nil
	}
	switch data := ps.Data.(type) {
	case *Unsplit:
		return check("sample", data.Input, data.Results)
	case *Split:
		if err := check("train", data.Train.Input, data.Train.Results); err != nil {
			return err
		}
		return check("val", data.Val.Input, data.Val.Results)
	default:
		return core.NewShapeError("unexpected data %T", ps.Data)
	}
}
