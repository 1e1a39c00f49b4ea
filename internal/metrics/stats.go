// Package metrics holds the small statistical helpers the ranker and the
// run summary share.
package metrics

import (
	"math"

	"github.com/iblwz/statllm/internal/numeric"
)

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev computes the population standard deviation.
// Returns 0 for empty input.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Present filters a score set down to the values that are actually there.
// Missing scores contribute nothing; they are never counted as zero.
func Present(scores map[string]numeric.Score) []float64 {
	var values []float64
	for _, s := range scores {
		if s.Valid {
			values = append(values, s.Value)
		}
	}
	return values
}
