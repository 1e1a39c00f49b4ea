// Package report serializes ranked and diffed groups into size-bounded text
// chunks. Packing is greedy first-fit against a byte budget: every chunk
// re-opens with the report header so it reads on its own, and a category
// block too large for any chunk falls back to a line-granular splitter that
// sacrifices header repetition rather than dropping content.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/iblwz/statllm/internal/baseline"
	"github.com/iblwz/statllm/internal/models"
	"github.com/iblwz/statllm/internal/numeric"
)

// Defaults for the rendered report. The delivery channel measures encoded
// bytes, so the budget is in bytes, not runes.
const (
	DefaultBudget   = 3800
	DefaultHeader   = "📊 LLM Stats — Daily Summary"
	DefaultFooter   = "Source: llm-stats.com"
	maxNameWidth    = 40
	missingScoreStr = "—"
)

// Renderer turns grouped results into report chunks.
type Renderer struct {
	Header      string
	Attribution string
	Budget      int
	// Order is the fixed display order of group labels. Groups not listed
	// render after the ordered ones, alphabetically, so nothing classified
	// into an unexpected label disappears.
	Order []string
	// Categories is the ordered list of per-entity category keys to print.
	Categories []string
	// Labels maps category keys and group labels to display names (e.g. a
	// localized label set). Missing entries fall back to the raw key.
	Labels map[string]string
	// TopK bounds how many entities a group prints; <= 0 prints all.
	TopK int
}

// Render produces the chunked report. moves may be nil when no prior
// snapshot exists; entities then carry no markers at all (a first run is
// not "everything is new").
func (r *Renderer) Render(groups map[string]*models.Group, moves map[string][]baseline.Movement) []string {
	header := r.Header
	if header == "" {
		header = DefaultHeader
	}
	budget := r.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	var blocks [][]string
	for _, label := range r.displayOrder(groups) {
		blocks = append(blocks, r.groupBlock(groups[label], moves[label]))
	}

	chunks := pack(header+"\n", blocks, budget)
	if len(chunks) == 0 {
		chunks = []string{header + "\n"}
	}

	attribution := r.Attribution
	if attribution == "" {
		attribution = DefaultFooter
	}
	chunks[len(chunks)-1] = strings.TrimRight(chunks[len(chunks)-1], "\n") + "\n" + attribution
	return chunks
}

// displayOrder lists configured labels first (those actually present), then
// any remaining group labels alphabetically.
func (r *Renderer) displayOrder(groups map[string]*models.Group) []string {
	var order []string
	seen := make(map[string]bool)
	for _, label := range r.Order {
		if _, ok := groups[label]; ok && !seen[label] {
			order = append(order, label)
			seen[label] = true
		}
	}
	var rest []string
	for label := range groups {
		if !seen[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// groupBlock renders one category block: a group header line plus one line
// per ranked entity.
func (r *Renderer) groupBlock(g *models.Group, moves []baseline.Movement) []string {
	lines := []string{fmt.Sprintf("— %s:", r.label(g.Label))}

	byName := make(map[string]baseline.Movement, len(moves))
	for _, m := range moves {
		byName[m.Name] = m
	}

	entities := g.Entities
	if r.TopK > 0 && r.TopK < len(entities) {
		entities = entities[:r.TopK]
	}
	for _, e := range entities {
		lines = append(lines, r.entityLine(e, byName, len(moves) > 0))
	}
	return lines
}

func (r *Renderer) entityLine(e models.RankedEntity, byName map[string]baseline.Movement, diffed bool) string {
	var b strings.Builder
	b.WriteString("  • ")
	b.WriteString(runewidth.Truncate(e.Name, maxNameWidth, "…"))
	b.WriteString(":")

	for _, key := range r.Categories {
		b.WriteString(" ")
		b.WriteString(r.label(key))
		b.WriteString(" ")
		b.WriteString(formatScore(e.Scores[key]))
		b.WriteString(",")
	}
	line := strings.TrimSuffix(b.String(), ",")

	if diffed {
		if marker := formatMovement(byName[e.Name]); marker != "" {
			line += " " + marker
		}
	}
	return line
}

func (r *Renderer) label(key string) string {
	if display, ok := r.Labels[key]; ok && display != "" {
		return display
	}
	return key
}

func formatScore(s numeric.Score) string {
	if !s.Valid {
		return missingScoreStr
	}
	return fmt.Sprintf("%.1f%%", s.Value*100)
}

// formatMovement renders the diff marker: ↑/↓ with the number of places
// moved, 🆕 for new entrants, nothing for unchanged. The score delta is
// appended only when non-zero.
func formatMovement(m baseline.Movement) string {
	var marker string
	switch m.Direction {
	case baseline.DirectionUp:
		marker = fmt.Sprintf("↑%d", m.Places)
	case baseline.DirectionDown:
		marker = fmt.Sprintf("↓%d", m.Places)
	case baseline.DirectionNew:
		return "🆕"
	case baseline.DirectionUnchanged:
		marker = ""
	}
	if m.Delta != 0 {
		delta := fmt.Sprintf("(%+.1f)", m.Delta)
		if marker == "" {
			return delta
		}
		return marker + " " + delta
	}
	return marker
}

// pack appends blocks to chunks greedy first-fit: when a block would push
// the current chunk past the budget, the chunk is closed and a new one
// starts with the repeated header. A block that cannot fit even alone is
// split line by line instead; content is never dropped.
func pack(header string, blocks [][]string, budget int) []string {
	var chunks []string
	current := header

	flush := func() {
		if current != header {
			chunks = append(chunks, strings.TrimRight(current, "\n"))
			current = header
		}
	}

	for _, block := range blocks {
		text := strings.Join(block, "\n") + "\n\n"

		if len(header)+len(text) > budget {
			flush()
			chunks = append(chunks, splitLines(header, block, budget)...)
			continue
		}
		if len(current)+len(text) > budget {
			flush()
		}
		current += text
	}
	flush()
	return chunks
}

// splitLines is the degenerate-case fallback for a single block larger than
// the budget: lines accumulate up to the budget and each overflow starts a
// bare chunk. The first piece still gets the header when it fits.
func splitLines(header string, block []string, budget int) []string {
	var chunks []string
	current := ""
	if len(header) < budget {
		current = header
	}
	for _, line := range block {
		text := line + "\n"
		if current != "" && len(current)+len(text) > budget {
			chunks = append(chunks, strings.TrimRight(current, "\n"))
			current = ""
		}
		current += text
	}
	if current != "" {
		chunks = append(chunks, strings.TrimRight(current, "\n"))
	}
	return chunks
}
