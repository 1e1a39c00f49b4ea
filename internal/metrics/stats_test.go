package metrics

import (
	"math"
	"sort"
	"testing"

	"github.com/iblwz/statllm/internal/numeric"
)

const epsilon = 1e-9

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		input  []float64
		expect float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5.0}, 5.0},
		{"multiple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"negative", []float64{-2, 0, 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mean(tt.input)
			if !approxEqual(got, tt.expect) {
				t.Errorf("Mean(%v) = %f, want %f", tt.input, got, tt.expect)
			}
		})
	}
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name   string
		input  []float64
		expect float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5.0}, 0},
		{"simple", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StdDev(tt.input)
			if !approxEqual(got, tt.expect) {
				t.Errorf("StdDev(%v) = %f, want %f", tt.input, got, tt.expect)
			}
		})
	}
}

func TestPresent(t *testing.T) {
	scores := map[string]numeric.Score{
		"a": numeric.ScoreOf(0.5),
		"b": numeric.Missing(),
		"c": numeric.ScoreOf(0.9),
	}
	got := Present(scores)
	sort.Float64s(got)
	if len(got) != 2 || !approxEqual(got[0], 0.5) || !approxEqual(got[1], 0.9) {
		t.Errorf("Present = %v, want [0.5 0.9]", got)
	}
}
