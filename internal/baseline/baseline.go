// Package baseline compares today's ranked results against the prior run's
// snapshot, computing per-entity rank movement and score deltas. Entities
// are matched by exact name within the same category; spelling variants
// across days read as a new entrant, an acknowledged limitation.
package baseline

import (
	"math"

	"github.com/iblwz/statllm/internal/models"
)

// Direction is the rank movement of an entity relative to the prior run.
type Direction int

const (
	DirectionNew Direction = iota
	DirectionUp
	DirectionDown
	DirectionUnchanged
)

// Movement describes one entity's day-over-day change.
type Movement struct {
	Name      string
	Direction Direction
	// Places is how many rank positions the entity moved (always >= 0;
	// zero for unchanged and new entrants).
	Places int
	// Delta is the score change in display points, rounded to one decimal.
	// Zero deltas are not displayed.
	Delta float64
}

// Diff compares today's snapshot against the prior one, producing a movement
// per entity per category. An absent or empty prior snapshot is "no prior
// data": every entity becomes a new entrant and no error occurs.
func Diff(today, prior models.Snapshot) map[string][]Movement {
	out := make(map[string][]Movement, len(today.Categories))

	for category, entries := range today.Categories {
		priorRank := make(map[string]int)
		priorScore := make(map[string]float64)
		for i, e := range prior.Categories[category] {
			if _, seen := priorRank[e.Name]; seen {
				continue
			}
			priorRank[e.Name] = i + 1
			priorScore[e.Name] = e.Score
		}

		movements := make([]Movement, 0, len(entries))
		for i, e := range entries {
			m := Movement{Name: e.Name, Direction: DirectionNew}
			if prev, ok := priorRank[e.Name]; ok {
				todayRank := i + 1
				switch {
				case prev > todayRank:
					m.Direction = DirectionUp
				case prev < todayRank:
					m.Direction = DirectionDown
				default:
					m.Direction = DirectionUnchanged
				}
				m.Places = abs(prev - todayRank)
				m.Delta = round1(e.Score - priorScore[e.Name])
			}
			movements = append(movements, m)
		}
		out[category] = movements
	}

	return out
}

// BuildSnapshot captures the top k entities of every group as display-scale
// percent scores. The result replaces the prior snapshot wholesale.
func BuildSnapshot(groups map[string]*models.Group, k int, date string) models.Snapshot {
	snap := models.Snapshot{
		Date:       date,
		Categories: make(map[string][]models.Entry, len(groups)),
	}
	for label, g := range groups {
		n := len(g.Entities)
		if k > 0 && k < n {
			n = k
		}
		entries := make([]models.Entry, 0, n)
		for _, e := range g.Entities[:n] {
			entries = append(entries, models.Entry{
				Name:  e.Name,
				Score: round1(e.Composite * 100),
			})
		}
		snap.Categories[label] = entries
	}
	return snap
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
