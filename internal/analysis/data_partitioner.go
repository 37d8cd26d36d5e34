package analysis

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"firesens/domain/core"
	"firesens/domain/problem"
	"firesens/ports"
)

// SplitStage is the RNG stage used to shuffle rows before splitting
const SplitStage = "split"

// DataPartitioner implements the train/validation split of an evaluated problem set
type DataPartitioner struct {
	randomSeed int64
	rng        ports.RNGPort
}

// PartitionStatistics provides metadata about the partitioning
type PartitionStatistics struct {
	TotalRows       int     `json:"total_rows"`
	TrainRows       int     `json:"train_rows"`
	ValidationRows  int     `json:"validation_rows"`
	ValidationRatio float64 `json:"validation_ratio"`
	RandomSeed      int64   `json:"random_seed"`
	PartitionMethod string  `json:"partition_method"`
}

// NewDataPartitionerWithSeed creates a partitioner with a specific seed for reproducibility.
// A nil rng falls back to a PCG stream seeded from seed alone.
func NewDataPartitionerWithSeed(rng ports.RNGPort, seed int64) *DataPartitioner {
	return &DataPartitioner{randomSeed: seed, rng: rng}
}

// PartitionProblemSet splits an evaluated, unsplit problem set into train and
// validation partitions. nVal = ceil(valProp * n); both sides must be
// non-empty. The same permutation is applied to inputs and results, and
// ps.Data is replaced by the split variant.
func (dp *DataPartitioner) PartitionProblemSet(ps *problem.ProblemSet, valProp float64) (*PartitionStatistics, error) {
	if math.IsNaN(valProp) || valProp <= 0 || valProp >= 1 {
		return nil, core.NewConfigurationError("validation proportion must be in (0,1), got %g", valProp)
	}
	if ps.IsSplit() {
		return nil, core.NewShapeError("problem set %s is already split", ps.RunID)
	}
	data, err := ps.Unsplit()
	if err != nil {
		return nil, err
	}
	if !data.Evaluated() {
		return nil, core.NewShapeError("problem set %s must be evaluated before splitting (%d results for %d rows)",
			ps.RunID, len(data.Results), data.Rows())
	}

	total := data.Rows()
	valSize := int(math.Ceil(valProp * float64(total)))
	trainSize := total - valSize
	if valSize < 1 || trainSize < 1 {
		return nil, core.NewConfigurationError("cannot split %d rows with validation proportion %g: train=%d val=%d",
			total, valProp, trainSize, valSize)
	}

	order := dp.randomPartition(total)
	split := &problem.Split{
		Train: extractPartition(data, order[:trainSize]),
		Val:   extractPartition(data, order[trainSize:]),
	}
	ps.Data = split

	return &PartitionStatistics{
		TotalRows:       total,
		TrainRows:       trainSize,
		ValidationRows:  valSize,
		ValidationRatio: float64(valSize) / float64(total),
		RandomSeed:      dp.randomSeed,
		PartitionMethod: "simple_random",
	}, nil
}

// randomPartition returns a seeded permutation of 0..n-1
func (dp *DataPartitioner) randomPartition(n int) []int {
	var rnd *rand.Rand
	if dp.rng != nil {
		rnd = dp.rng.Stream(SplitStage, dp.randomSeed)
	} else {
		rnd = rand.New(rand.NewPCG(uint64(dp.randomSeed), 0))
	}
	return rnd.Perm(n)
}

// extractPartition copies the listed rows into a new partition
func extractPartition(data *problem.Unsplit, rows []int) problem.Partition {
	_, cols := data.Input.Dims()
	input := mat.NewDense(len(rows), cols, nil)
	results := make([]float64, len(rows))
	for i, r := range rows {
		input.SetRow(i, data.Input.RawRowView(r))
		results[i] = data.Results[r]
	}
	return problem.Partition{
		Input:   input,
		Results: results,
		Rows:    append([]int(nil), rows...),
	}
}
