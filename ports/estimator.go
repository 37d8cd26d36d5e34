package ports

import (
	"context"

	"firesens/domain/problem"
)

// Indices holds variance-based sensitivity indices, one entry per name.
type Indices struct {
	Names  []string    `json:"names"`
	S1     []float64   `json:"S1"`
	S1Conf []float64   `json:"S1_conf"`
	ST     []float64   `json:"ST"`
	STConf []float64   `json:"ST_conf"`
	S2     [][]float64 `json:"S2,omitempty"`
	S2Conf [][]float64 `json:"S2_conf,omitempty"`
}

// Estimator computes Sobol indices from results laid out exactly as the
// paired sampler produced them.
type Estimator interface {
	Analyze(ctx context.Context, def problem.Definition, results []float64) (*Indices, error)
}
