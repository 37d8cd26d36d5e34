package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters, for log lines.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeRunFingerprint hashes everything that determines a problem set's
// sample matrix: the ordered names and bounds, the base count n, the total
// row count (which fixes the cross-sampling layout) and the sampling seed.
func ComputeRunFingerprint(model string, names []string, bounds [][2]float64, n, rows int, seed int64) Hash {
	var data strings.Builder
	data.WriteString(model)
	for i, name := range names {
		data.WriteString("|")
		data.WriteString(name)
		if i < len(bounds) {
			data.WriteString(fmt.Sprintf("[%g,%g]", bounds[i][0], bounds[i][1]))
		}
	}
	data.WriteString(fmt.Sprintf("|n=%d|rows=%d|seed=%d", n, rows, seed))
	return NewHash([]byte(data.String()))
}
