// Package extract locates record boundaries inside untrusted semi-structured
// leaderboard sources and converts them into canonical records. Three shapes
// are supported: markdown documents with delimited tables, trees of nested
// JSON documents, and scraped text segments anchored by rank markers. All
// three are treated as equally unreliable; a block that yields no usable
// record is dropped and counted, never fatal.
package extract

import (
	"errors"
	"fmt"

	"github.com/iblwz/statllm/internal/models"
	"github.com/iblwz/statllm/internal/schema"
)

// ErrNoData signals that no candidate table or segment was found anywhere in
// the input. Callers send a "no data today" notice instead of crashing.
var ErrNoData = errors.New("no leaderboard data found in source")

// Document is one identified JSON document from a model tree.
type Document struct {
	ID   string
	Body []byte
}

// Input is the tagged-variant source shape. Exactly one of the three fields
// is set per invocation.
type Input struct {
	// Table is a raw text blob believed to contain one or more markdown
	// tables.
	Table string
	// Documents is a sequence of per-entity JSON documents.
	Documents []Document
	// Sections maps a category label to the raw scraped text of that
	// category's rendered section.
	Sections map[string]string
}

// Diagnostics counts what the extractor saw and what it had to drop.
type Diagnostics struct {
	Tables    int // candidate tables inspected (table mode)
	Documents int // documents parsed (JSON mode)
	Segments  int // rank-anchored segments located (scraped mode)
	Dropped   int // blocks lacking an extractable name or score
}

// Extractor turns one Input into canonical records using the configured
// alias tables.
type Extractor struct {
	Aliases schema.AliasTable
}

// New returns an Extractor over the given alias table.
func New(aliases schema.AliasTable) *Extractor {
	return &Extractor{Aliases: aliases}
}

// Extract dispatches on the populated input variant. Empty input yields zero
// records and a nil error; the caller decides whether that is ErrNoData.
func (e *Extractor) Extract(in Input) ([]models.Record, Diagnostics, error) {
	switch {
	case in.Table != "":
		return e.extractTable(in.Table)
	case len(in.Documents) > 0:
		return e.extractDocuments(in.Documents)
	case len(in.Sections) > 0:
		return e.extractSections(in.Sections)
	default:
		return nil, Diagnostics{}, nil
	}
}

// CheckNoData wraps a zero-record result in ErrNoData with a diagnostic
// summary, so callers can distinguish "source had nothing" from success.
func CheckNoData(records []models.Record, diag Diagnostics) error {
	if len(records) > 0 {
		return nil
	}
	return fmt.Errorf("%w (tables=%d documents=%d segments=%d dropped=%d)",
		ErrNoData, diag.Tables, diag.Documents, diag.Segments, diag.Dropped)
}
