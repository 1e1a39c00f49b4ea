// Package rank derives per-category scores from raw metrics, computes
// composite ranking scores, and orders entities within their classified
// groups. The exclusion filter runs before any scoring so excluded entities
// never influence top-K computation.
package rank

import (
	"errors"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/iblwz/statllm/internal/classify"
	"github.com/iblwz/statllm/internal/metrics"
	"github.com/iblwz/statllm/internal/models"
	"github.com/iblwz/statllm/internal/numeric"
)

// ErrAllExcluded signals that the exclusion pattern removed every record.
// Distinct from no-data: it almost always means the pattern is too broad.
var ErrAllExcluded = errors.New("exclusion pattern filtered out every entity")

// Category binds a canonical category key to the benchmark keywords that
// feed it. Keywords match metric labels by containment, so both canonical
// fields ("humaneval") and flattened paths ("humaneval.pass@1") qualify.
type Category struct {
	Key      string
	Keywords []string
}

// DefaultCategories mirrors the benchmark families tracked across
// leaderboard sources. The key itself always matches, so scraped sections
// labeled with the category name feed it directly.
func DefaultCategories() []Category {
	return []Category{
		{"coding", []string{"humaneval", "livecodebench", "mbpp", "coding"}},
		{"math", []string{"aime", "gsm8k", "math"}},
		{"knowledge", []string{"gpqa", "mmlu", "knowledge"}},
		{"multimodal", []string{"mmmu", "multimodal"}},
	}
}

// preferredSuffixes orders standard metric names: when several metric labels
// satisfy the same keyword, a label ending in an earlier suffix wins.
var preferredSuffixes = []string{"pass@1", "acc_norm", "acc", "accuracy", "score"}

// Ranker groups, scores, and orders canonical records.
type Ranker struct {
	Categories []Category
	Exclude    *regexp.Regexp // nil disables the filter
	TopK       int            // entities kept per category for snapshots; <=0 keeps all
}

// Rank classifies records into groups, derives per-category scores, and
// sorts each group descending by composite score. Ties keep encounter
// order; the sort is stable and introduces no secondary key.
func (r *Ranker) Rank(records []models.Record, c *classify.Classifier) (map[string]*models.Group, error) {
	kept := r.filter(records)
	if len(records) > 0 && len(kept) == 0 {
		return nil, ErrAllExcluded
	}

	groups := make(map[string]*models.Group)
	for _, rec := range kept {
		label := c.Classify(rec.Name, rec.Category)
		g, ok := groups[label]
		if !ok {
			g = &models.Group{Label: label}
			groups[label] = g
		}
		g.Entities = append(g.Entities, r.score(rec, label))
	}

	for _, g := range groups {
		sort.SliceStable(g.Entities, func(i, j int) bool {
			return g.Entities[i].Composite > g.Entities[j].Composite
		})
	}

	slog.Info("ranked entities", "input", len(records), "kept", len(kept), "groups", len(groups))
	return groups, nil
}

// filter drops records whose name matches the exclusion pattern.
func (r *Ranker) filter(records []models.Record) []models.Record {
	if r.Exclude == nil {
		return records
	}
	var kept []models.Record
	for _, rec := range records {
		if r.Exclude.MatchString(rec.Name) {
			slog.Debug("excluded entity", "name", rec.Name)
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// score derives one RankedEntity: per-category best-match scores plus the
// composite mean over the present ones. An entity with no present scores
// composites to 0.0 but stays in its group; exclusion is a separate,
// explicit policy.
func (r *Ranker) score(rec models.Record, label string) models.RankedEntity {
	scores := make(map[string]numeric.Score, len(r.Categories))
	for _, cat := range r.Categories {
		scores[cat.Key] = derive(rec.Metrics, cat.Keywords)
	}
	return models.RankedEntity{
		Name:      rec.Name,
		Category:  label,
		Scores:    scores,
		Composite: metrics.Mean(metrics.Present(scores)),
	}
}

// derive picks the category score from the metrics whose labels contain one
// of the keywords, restricted to the sane [0,1] range. Candidates are ranked
// by preferred metric suffix first, then by value; all-missing yields
// missing, never zero.
func derive(scores map[string]numeric.Score, keywords []string) numeric.Score {
	best := numeric.Missing()
	bestRank := len(preferredSuffixes) + 1
	for _, kw := range keywords {
		for key, s := range scores {
			if !strings.Contains(key, kw) || !s.InUnitRange() {
				continue
			}
			rank := suffixRank(key)
			if rank < bestRank || (rank == bestRank && (!best.Valid || s.Value > best.Value)) {
				best = s
				bestRank = rank
			}
		}
	}
	return best
}

func suffixRank(key string) int {
	for i, suffix := range preferredSuffixes {
		if strings.HasSuffix(key, suffix) {
			return i
		}
	}
	return len(preferredSuffixes)
}

// Top returns the first k entities of a group, or all of them when k <= 0
// or the group is smaller.
func Top(g *models.Group, k int) []models.RankedEntity {
	if k <= 0 || k >= len(g.Entities) {
		return g.Entities
	}
	return g.Entities[:k]
}
