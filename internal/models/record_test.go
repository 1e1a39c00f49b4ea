package models

import (
	"testing"

	"github.com/iblwz/statllm/internal/numeric"
)

func TestRecordMetric(t *testing.T) {
	r := Record{
		Name:    "gpt-4o",
		Metrics: map[string]numeric.Score{"MMLU": numeric.ScoreOf(0.887)},
	}

	if got := r.Metric("MMLU"); !got.Valid || got.Value != 0.887 {
		t.Errorf("Metric(MMLU) = %+v, want valid 0.887", got)
	}
	if got := r.Metric("HumanEval"); got.Valid {
		t.Errorf("Metric(HumanEval) = %+v, want missing", got)
	}
}

func TestRecordMetric_NilMap(t *testing.T) {
	var r Record
	if got := r.Metric("MMLU"); got.Valid {
		t.Errorf("Metric on nil map = %+v, want missing", got)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	var s Snapshot
	if !s.Empty() {
		t.Error("zero snapshot should be empty")
	}

	s.Categories = map[string][]Entry{"Coding": {{Name: "A", Score: 90}}}
	if s.Empty() {
		t.Error("populated snapshot should not be empty")
	}
}
