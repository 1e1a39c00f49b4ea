// Package models holds the shared data shapes that flow through the
// summarizer pipeline: canonical per-entity records, ranked groups, and the
// persisted snapshot format.
package models

import "github.com/iblwz/statllm/internal/numeric"

// Canonical metric keys. Every source label is mapped onto one of these by
// the schema alias tables; raw labels never leave the extractor.
const (
	FieldName     = "name"
	FieldProvider = "provider"
)

// Record is one evaluated entity after extraction and normalization.
// Metrics are keyed by metric label (the canonical field for table sources,
// the flattened key path for JSON documents, the section label for scraped
// text) and are always either a unit-scale score or explicitly missing.
type Record struct {
	Name string
	// Category is the explicit classification supplied by the source (a
	// provider column, a section label). Empty when the source had none;
	// the classifier then infers one from the name.
	Category string
	Metrics  map[string]numeric.Score
}

// Metric returns the named metric, or missing when the record has no value
// for it.
func (r *Record) Metric(key string) numeric.Score {
	if r.Metrics == nil {
		return numeric.Missing()
	}
	return r.Metrics[key]
}

// RankedEntity is a record placed inside a category group, carrying its
// derived per-category scores and composite ranking score.
type RankedEntity struct {
	Name      string
	Category  string
	Scores    map[string]numeric.Score // category key → derived score
	Composite float64
}

// Group is an ordered sequence of ranked entities under one category label,
// sorted descending by composite score.
type Group struct {
	Label    string
	Entities []RankedEntity
}

// Entry is one (name, score) pair inside a snapshot. Score is stored in
// display-scale percent points so deltas match what readers saw.
type Entry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Snapshot is the persisted top-K-per-category result of one run. It is
// replaced wholesale at the end of each successful run.
type Snapshot struct {
	Date       string             `json:"date,omitempty"`
	Categories map[string][]Entry `json:"categories"`
}

// Empty reports whether the snapshot carries no prior data.
func (s Snapshot) Empty() bool {
	return len(s.Categories) == 0
}
