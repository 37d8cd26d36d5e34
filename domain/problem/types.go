// Package problem defines the Problem Set: the record describing one
// sampling-and-evaluation run.
package problem

import (
	"gonum.org/v1/gonum/mat"

	"firesens/domain/core"
	"firesens/domain/params"
)

// Definition is the ordered problem definition handed to the sampler and
// the estimator. Names[i] is column i of every sample matrix.
type Definition struct {
	ModelName string         `json:"model_name"`
	Names     []string       `json:"names"`
	Bounds    []params.Bound `json:"bounds"`
	NumVars   int            `json:"num_vars"`
}

// NewDefinition builds a definition and checks its lengths agree.
func NewDefinition(model string, names []string, bounds []params.Bound) (Definition, error) {
	def := Definition{
		ModelName: model,
		Names:     append([]string(nil), names...),
		Bounds:    append([]params.Bound(nil), bounds...),
		NumVars:   len(names),
	}
	return def, def.Validate()
}

// Validate checks len(Names) == NumVars == len(Bounds) and that every bound
// is finite and ordered.
func (d Definition) Validate() error {
	if d.NumVars == 0 {
		return core.NewConfigurationError("problem definition has no parameters")
	}
	if len(d.Names) != d.NumVars || len(d.Bounds) != d.NumVars {
		return core.NewConfigurationError("definition lengths disagree: names=%d bounds=%d num_vars=%d",
			len(d.Names), len(d.Bounds), d.NumVars)
	}
	for i, b := range d.Bounds {
		if !b.Valid() {
			return core.NewConfigurationError("bounds for %q are not a finite ordered range: [%g, %g]", d.Names[i], b.Low, b.High)
		}
	}
	return nil
}

// SameNames reports whether names matches the definition exactly, order included.
func (d Definition) SameNames(names []string) bool {
	if len(names) != len(d.Names) {
		return false
	}
	for i := range names {
		if names[i] != d.Names[i] {
			return false
		}
	}
	return true
}

// boundPairs is the fingerprint representation of the bounds.
func (d Definition) boundPairs() [][2]float64 {
	pairs := make([][2]float64, len(d.Bounds))
	for i, b := range d.Bounds {
		pairs[i] = [2]float64{b.Low, b.High}
	}
	return pairs
}

// Data is the shape of a problem set's samples and results. It is either
// *Unsplit or *Split.
type Data interface {
	isData()
	// Rows is the total number of samples across partitions.
	Rows() int
}

// Unsplit holds the sample matrix and, once evaluated, one result per row.
type Unsplit struct {
	Input   *mat.Dense
	Results []float64
}

func (*Unsplit) isData() {}

func (u *Unsplit) Rows() int {
	if u.Input == nil {
		return 0
	}
	r, _ := u.Input.Dims()
	return r
}

// Evaluated reports whether Results is aligned with Input.
func (u *Unsplit) Evaluated() bool {
	return u.Results != nil && len(u.Results) == u.Rows()
}

// Partition is one side of a split. Rows holds the original row indices.
type Partition struct {
	Input   *mat.Dense
	Results []float64
	Rows    []int
}

// Len returns the number of rows in the partition.
func (p Partition) Len() int { return len(p.Rows) }

// Split holds train and validation partitions.
type Split struct {
	Train Partition
	Val   Partition
}

func (*Split) isData() {}

func (s *Split) Rows() int { return s.Train.Len() + s.Val.Len() }

// ProblemSet is the central record of a run.
type ProblemSet struct {
	RunID       core.RunID `json:"run_id"`
	Fingerprint core.Hash  `json:"fingerprint"`
	Definition  Definition `json:"definition"`
	ResultVar   string     `json:"result_var"`
	SampleCount int        `json:"sample_count"`
	Seed        int64      `json:"seed"`
	Data        Data       `json:"-"`
}

// New creates an unsplit, unevaluated problem set.
// seed is the seed the sample was drawn with.
func New(def Definition, resultVar string, n int, seed int64, input *mat.Dense) *ProblemSet {
	data := &Unsplit{Input: input}
	return &ProblemSet{
		RunID:       core.NewRunID(),
		Fingerprint: core.ComputeRunFingerprint(def.ModelName, def.Names, def.boundPairs(), n, data.Rows(), seed),
		Definition:  def,
		ResultVar:   resultVar,
		SampleCount: n,
		Seed:        seed,
		Data:        data,
	}
}

// Unsplit returns the unsplit data or a shape error.
func (ps *ProblemSet) Unsplit() (*Unsplit, error) {
	u, ok := ps.Data.(*Unsplit)
	if !ok {
		return nil, core.NewShapeError("problem set %s is split; operation requires the unsplit sample", ps.RunID)
	}
	return u, nil
}

// Split returns the split data or a shape error.
func (ps *ProblemSet) Split() (*Split, error) {
	s, ok := ps.Data.(*Split)
	if !ok {
		return nil, core.NewShapeError("problem set %s is not split", ps.RunID)
	}
	return s, nil
}

// IsSplit reports whether the problem set has been partitioned.
func (ps *ProblemSet) IsSplit() bool {
	_, ok := ps.Data.(*Split)
	return ok
}
