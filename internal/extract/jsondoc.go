package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iblwz/statllm/internal/models"
	"github.com/iblwz/statllm/internal/numeric"
)

// scoreContainers are the top-level keys whose subtrees hold benchmark
// results. When none are present the whole document is flattened.
var scoreContainers = []string{"benchmarks", "evals", "scores", "results", "metrics"}

// extractDocuments converts each JSON document into one record whose metrics
// are keyed by the full flattened key path (lowercased), so benchmark names
// buried in paths like "benchmarks.humaneval.pass@1" stay matchable. A
// document that fails to parse or yields no numeric leaf is dropped.
func (e *Extractor) extractDocuments(docs []Document) ([]models.Record, Diagnostics, error) {
	var diag Diagnostics
	var records []models.Record

	for _, doc := range docs {
		var parsed map[string]any
		if err := json.Unmarshal(doc.Body, &parsed); err != nil {
			slog.Warn("skipping unparseable document", "id", doc.ID, "error", err)
			diag.Dropped++
			continue
		}
		diag.Documents++

		metrics := flattenScores(parsed)
		if len(metrics) == 0 {
			diag.Dropped++
			continue
		}

		records = append(records, models.Record{
			Name:    documentName(parsed, doc.ID),
			Metrics: metrics,
		})
	}

	slog.Info("json tree extracted", "documents", diag.Documents, "dropped", diag.Dropped)
	return records, diag, nil
}

// documentName prefers the document's own name/id fields, falling back to
// the tree identifier.
func documentName(doc map[string]any, fallback string) string {
	for _, key := range []string{"name", "id"} {
		if s, ok := doc[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return fallback
}

// flattenScores flattens the document's score containers (or the whole
// document when it has none) to dotted key paths with normalized values.
func flattenScores(doc map[string]any) map[string]numeric.Score {
	var containers []any
	for _, key := range scoreContainers {
		switch doc[key].(type) {
		case map[string]any, []any:
			containers = append(containers, doc[key])
		}
	}
	if len(containers) == 0 {
		containers = append(containers, any(doc))
	}

	out := make(map[string]numeric.Score)
	for _, c := range containers {
		flattenInto(out, c, "")
	}
	return out
}

func flattenInto(out map[string]numeric.Score, v any, path string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flattenInto(out, child, joinPath(path, k))
		}
	case []any:
		for i, child := range val {
			flattenInto(out, child, fmt.Sprintf("%s[%d]", path, i))
		}
	default:
		score := numeric.FromAny(val)
		if !score.Valid {
			return
		}
		out[strings.ToLower(path)] = score.Normalize()
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
