package problem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"firesens/domain/core"
	"firesens/domain/params"
)

func twoVarDefinition(t *testing.T) Definition {
	t.Helper()
	def, err := NewDefinition("linear", []string{"a", "b"}, []params.Bound{{Low: 0, High: 1}, {Low: 0, High: 1}})
	require.NoError(t, err)
	return def
}

func TestNewDefinition_Invariants(t *testing.T) {
	def := twoVarDefinition(t)
	assert.Equal(t, 2, def.NumVars)
	assert.Len(t, def.Names, def.NumVars)
	assert.Len(t, def.Bounds, def.NumVars)

	_, err := NewDefinition("linear", []string{"a", "b"}, []params.Bound{{Low: 0, High: 1}})
	assert.True(t, core.IsConfigurationError(err))

	_, err = NewDefinition("linear", []string{"a"}, []params.Bound{{Low: 2, High: 1}})
	assert.True(t, core.IsConfigurationError(err))

	_, err = NewDefinition("linear", []string{"a"}, []params.Bound{{Low: 0, High: math.Inf(1)}})
	assert.True(t, core.IsConfigurationError(err))

	_, err = NewDefinition("linear", nil, nil)
	assert.True(t, core.IsConfigurationError(err))
}

func TestSameNames_IsOrderSensitive(t *testing.T) {
	def := twoVarDefinition(t)
	assert.True(t, def.SameNames([]string{"a", "b"}))
	assert.False(t, def.SameNames([]string{"b", "a"}))
	assert.False(t, def.SameNames([]string{"a"}))
}

func TestSelect_UnsplitShapes(t *testing.T) {
	ps := New(twoVarDefinition(t), "ROS", 2, 1, mat.NewDense(3, 2, nil))

	_, err := ps.Select(SelectResults)
	assert.True(t, core.IsShapeError(err), "unevaluated set must not resolve")

	ps.Data.(*Unsplit).Results = []float64{1, 2, 3}
	sel, err := ps.Select(SelectResults)
	require.NoError(t, err)
	assert.Equal(t, 3, sel.Rows())

	_, err = ps.Select(SelectVal)
	assert.True(t, core.IsShapeError(err))
}

func TestSelect_SplitShapes(t *testing.T) {
	ps := New(twoVarDefinition(t), "ROS", 2, 1, mat.NewDense(3, 2, nil))
	ps.Data = &Split{
		Train: Partition{Input: mat.NewDense(2, 2, nil), Results: []float64{1, 2}, Rows: []int{0, 2}},
		Val:   Partition{Input: mat.NewDense(1, 2, nil), Results: []float64{3}, Rows: []int{1}},
	}

	_, err := ps.Unsplit()
	assert.True(t, core.IsShapeError(err))
	assert.True(t, ps.IsSplit())
	assert.Equal(t, 3, ps.Data.Rows())

	_, err = ps.Select(SelectResults)
	assert.True(t, core.IsShapeError(err))

	val, err := ps.Select(SelectVal)
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, val.Results)
	require.NoError(t, ps.Validate())
}

func TestValidate_ColumnMismatch(t *testing.T) {
	ps := New(twoVarDefinition(t), "ROS", 2, 1, mat.NewDense(3, 3, nil))
	err := ps.Validate()
	assert.True(t, core.IsShapeError(err))
}

func TestParseSelector(t *testing.T) {
	for in, want := range map[string]Selector{"": SelectResults, "VAL": SelectVal, " train ": SelectTrain} {
		got, err := ParseSelector(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSelector("test")
	assert.True(t, core.IsConfigurationError(err))
}

func TestNew_AssignsIdentity(t *testing.T) {
	a := New(twoVarDefinition(t), "ROS", 8, 42, mat.NewDense(1, 2, nil))
	b := New(twoVarDefinition(t), "ROS", 8, 42, mat.NewDense(1, 2, nil))
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	// A different row layout for the same base count is a different sample.
	c := New(twoVarDefinition(t), "ROS", 8, 42, mat.NewDense(2, 2, nil))
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}
