package testkit

import (
	"math"

	"firesens/adapters/catalog"
	"firesens/adapters/rng"
	"firesens/domain/params"
	"firesens/ports"
)

// Synthetic model keys
const (
	ModelLinear    = "linear"
	ModelIshigami  = "ishigami"
	ModelToySpread = "toyspread"
)

// Ishigami constants used by ModelIshigami
const (
	IshigamiA = 7.0
	IshigamiB = 0.1
)

// TestKit provides synthetic models, their bounds and merger, wired the same
// way the CLI wires a real catalog.
type TestKit struct {
	catalog *catalog.Registry
	bounds  *catalog.Bounds
	merger  *catalog.Merger
	rng     *rng.Adapter
}

// NewTestKit creates a test kit with every synthetic model registered
func NewTestKit() *TestKit {
	return &TestKit{
		catalog: catalog.NewRegistry(Linear(), Ishigami(), ToySpread()),
		bounds:  catalog.NewBounds(SyntheticBounds()),
		merger:  catalog.NewMerger(ToySpreadDerivations()...),
		rng:     rng.NewAdapter(),
	}
}

// Catalog returns the model catalog
func (t *TestKit) Catalog() ports.ModelCatalog { return t.catalog }

// Registry returns the concrete registry so tests can add models
func (t *TestKit) Registry() *catalog.Registry { return t.catalog }

// Bounds returns the bounds registry
func (t *TestKit) Bounds() *catalog.Bounds { return t.bounds }

// Merger returns the parameter merger
func (t *TestKit) Merger() ports.ParameterMerger { return t.merger }

// RNGAdapter returns the seeded RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort { return t.rng }

// Linear is ROS = a + 2b with a in environment and b in fuelstate.
// There is no interaction, so S1[b]/S1[a] = 4 and ST = S1.
func Linear() *catalog.FuncModel {
	return &catalog.FuncModel{
		Key: ModelLinear,
		Set: params.ParameterSet{
			Environment: params.Group{{Name: "a", Default: 0.5}},
			FuelState:   params.Group{{Name: "b", Default: 0.5}},
		},
		Fn: func(fm params.Mapping) (params.Mapping, error) {
			return params.Mapping{"ROS": fm["a"] + 2*fm["b"]}, nil
		},
	}
}

// Ishigami is the standard three-input benchmark with known indices.
func Ishigami() *catalog.FuncModel {
	return &catalog.FuncModel{
		Key: ModelIshigami,
		Set: params.ParameterSet{
			Environment: params.Group{{Name: "x1", Default: 0}, {Name: "x2", Default: 0}},
			Model:       params.Group{{Name: "x3", Default: 0}},
		},
		Fn: func(fm params.Mapping) (params.Mapping, error) {
			x1, x2, x3 := fm["x1"], fm["x2"], fm["x3"]
			s2 := math.Sin(x2)
			return params.Mapping{
				"Y": math.Sin(x1) + IshigamiA*s2*s2 + IshigamiB*math.Pow(x3, 4)*math.Sin(x1),
			}, nil
		},
	}
}

// ToySpread is a four-group spread model. It reads the derived bulk_density
// field, so it only produces sensible values on normalized mappings.
func ToySpread() *catalog.FuncModel {
	return &catalog.FuncModel{
		Key: ModelToySpread,
		Set: params.ParameterSet{
			Environment: params.Group{{Name: "wind", Default: 5}, {Name: "slope", Default: 0}},
			Typical:     params.Group{{Name: "fuel_height", Default: 0.5}, {Name: "fuel_load", Default: 1}},
			FuelState:   params.Group{{Name: "moisture", Default: 0.1}},
			Model:       params.Group{{Name: "coeff", Default: 1}},
		},
		Fn: func(fm params.Mapping) (params.Mapping, error) {
			ros := fm["coeff"] *
				(1 + 0.1*fm["wind"]) *
				(1 + 0.02*fm["slope"]) *
				fm["bulk_density"] *
				math.Exp(-5*fm["moisture"])
			return params.Mapping{"ROS": ros}, nil
		},
	}
}

// ToySpreadDerivations fills bulk_density on inputs and ROS_kmh on outputs.
func ToySpreadDerivations() []catalog.Derivation {
	return []catalog.Derivation{
		{
			Target: "bulk_density",
			Inputs: []string{"fuel_load", "fuel_height"},
			Fn:     func(in []float64) float64 { return in[0] / in[1] },
		},
		{
			Target: "ROS_kmh",
			Inputs: []string{"ROS"},
			Fn:     func(in []float64) float64 { return in[0] * 3.6 },
		},
	}
}

// SyntheticBounds covers every parameter of the synthetic models
func SyntheticBounds() map[string]params.Bound {
	return map[string]params.Bound{
		"a":           {Low: 0, High: 1},
		"b":           {Low: 0, High: 1},
		"x1":          {Low: -math.Pi, High: math.Pi},
		"x2":          {Low: -math.Pi, High: math.Pi},
		"x3":          {Low: -math.Pi, High: math.Pi},
		"wind":        {Low: 0, High: 20},
		"slope":       {Low: -30, High: 30},
		"fuel_height": {Low: 0.2, High: 2},
		"fuel_load":   {Low: 0.2, High: 3},
		"moisture":    {Low: 0.05, High: 0.4},
		"coeff":       {Low: 0.5, High: 2},
	}
}
