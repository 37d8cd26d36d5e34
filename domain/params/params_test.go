package params

import (
	"math"
	"testing"

	"firesens/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spreadSet() ParameterSet {
	return ParameterSet{
		Environment: Group{{"wind", 2}, {"slope", 0.1}},
		FuelState:   Group{{"moisture", 0.08}},
		Model:       Group{{"coeff", 1.5}},
		Extra:       map[GroupName]Group{"terrain": {{"roughness", 0.3}}},
	}
}

func TestSelect_PreservesGroupThenDeclarationOrder(t *testing.T) {
	set := spreadSet()

	union, err := set.Select(GroupFuelState, GroupEnvironment)
	require.NoError(t, err)
	assert.Equal(t, []string{"moisture", "wind", "slope"}, union.Names())
}

func TestSelect_RepeatedGroupCountsOnce(t *testing.T) {
	set := spreadSet()

	union, err := set.Select(GroupEnvironment, GroupFuelState, GroupEnvironment)
	require.NoError(t, err)
	assert.Equal(t, []string{"wind", "slope", "moisture"}, union.Names())

	fm, err := set.Merge(GroupEnvironment, GroupEnvironment)
	require.NoError(t, err)
	assert.Len(t, fm, 2)
}

func TestSelect_UnknownGroup(t *testing.T) {
	set := spreadSet()

	_, err := set.Select(GroupTypical)
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))

	_, err = set.Select("canopy")
	assert.True(t, core.IsConfigurationError(err))
}

func TestMerge_DuplicateNameIsConfigurationError(t *testing.T) {
	set := spreadSet()
	set.Typical = Group{{"wind", 3}}

	_, err := set.MergeAll()
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "wind")
}

func TestMergeAll_IsOrderIndependent(t *testing.T) {
	set := spreadSet()

	all, err := set.MergeAll()
	require.NoError(t, err)
	reversed, err := set.Merge("terrain", GroupModel, GroupFuelState, GroupEnvironment)
	require.NoError(t, err)

	assert.Equal(t, all, reversed)
	assert.Equal(t, []string{"coeff", "moisture", "roughness", "slope", "wind"}, all.Keys())
}

func TestGroupNames(t *testing.T) {
	set := spreadSet()
	assert.Equal(t, []GroupName{GroupEnvironment, GroupFuelState, GroupModel, "terrain"}, set.GroupNames())
}

func TestMappingClone(t *testing.T) {
	fm := Mapping{"a": 1}
	cp := fm.Clone()
	cp["a"] = 2
	assert.Equal(t, 1.0, fm["a"])
}

func TestBound(t *testing.T) {
	b := Bound{Low: 0, High: 2}
	assert.True(t, b.Valid())
	assert.Equal(t, 2.0, b.Width())
	assert.True(t, b.Contains(1))
	assert.False(t, b.Contains(2.5))
	assert.False(t, Bound{Low: 1, High: 0}.Valid())
	assert.False(t, Bound{Low: 0, High: math.Inf(1)}.Valid())
	assert.False(t, Bound{Low: math.Inf(-1), High: 0}.Valid())
	assert.False(t, Bound{Low: math.NaN(), High: 1}.Valid())
}
