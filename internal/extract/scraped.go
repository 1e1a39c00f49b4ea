package extract

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/iblwz/statllm/internal/models"
	"github.com/iblwz/statllm/internal/numeric"
	"github.com/iblwz/statllm/internal/schema"
)

// scoreScanLines bounds how deep into a segment the score search goes.
// Rendered cards put the headline number near the top; digging further
// starts picking up unrelated figures.
const scoreScanLines = 6

// plausibleScore is the accepted raw range for scraped scores. Rendered
// leaderboards show percent points; a "7" or a "2024" in a segment is noise.
const (
	plausibleScoreMin = 10
	plausibleScoreMax = 100
)

var rankMarker = regexp.MustCompile(`^([0-9]{1,2})[.)]?$`)

// extractSections converts scraped per-category text into records. Each
// section contributes records carrying a single metric keyed by the section
// label, with the label doubling as the explicit category, so scraped input
// flows through the same classify/rank pipeline as the other shapes.
func (e *Extractor) extractSections(sections map[string]string) ([]models.Record, Diagnostics, error) {
	var diag Diagnostics
	var records []models.Record

	// Deterministic order: map iteration must not affect encounter order
	// downstream (ties in ranking keep encounter order).
	labels := make([]string, 0, len(sections))
	for label := range sections {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		segs := splitSegments(sections[label])
		diag.Segments += len(segs)
		for _, seg := range segs {
			rec, ok := segmentRecord(seg, label)
			if !ok {
				diag.Dropped++
				continue
			}
			records = append(records, rec)
		}
	}

	slog.Info("scraped sections extracted", "sections", len(sections),
		"segments", diag.Segments, "dropped", diag.Dropped)
	return records, diag, nil
}

// splitSegments collapses the section into trimmed non-empty lines and cuts
// it at rank markers: the span between consecutive markers (or end-of-text
// for the last) is one entity's segment. Markers must count up from 1, so a
// stray "7" mid-text does not open a segment.
func splitSegments(section string) [][]string {
	var lines []string
	for _, raw := range strings.Split(section, "\n") {
		line := strings.Join(strings.Fields(raw), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	var starts []int
	next := 1
	for i, line := range lines {
		m := rankMarker.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n == next {
			starts = append(starts, i)
			next++
		}
	}
	if len(starts) == 0 {
		return nil
	}

	segs := make([][]string, 0, len(starts))
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		segs = append(segs, lines[start+1:end])
	}
	return segs
}

// segmentRecord pulls an entity name and score out of one segment. The name
// is the first line that neither repeats the section title, nor is mostly
// digits, nor is a bare number; the score is the first number within the
// plausible range in the segment's leading lines. Either missing drops the
// segment.
func segmentRecord(seg []string, label string) (models.Record, bool) {
	name := ""
	for _, line := range seg {
		if isTitleLine(line, label) || digitHeavy(line) || isNumericLine(line) {
			continue
		}
		name = line
		break
	}
	if name == "" {
		return models.Record{}, false
	}

	score := numeric.Missing()
	limit := min(len(seg), scoreScanLines)
	for _, line := range seg[:limit] {
		s := numeric.Parse(line)
		if s.Valid && s.Value >= plausibleScoreMin && s.Value <= plausibleScoreMax {
			score = s.Normalize()
			break
		}
	}
	if !score.Valid {
		return models.Record{}, false
	}

	return models.Record{
		Name:     name,
		Category: label,
		Metrics:  map[string]numeric.Score{schema.Canon(label): score},
	}, true
}

func isTitleLine(line, label string) bool {
	return strings.Contains(strings.ToLower(line), strings.ToLower(label))
}

// isNumericLine reports whether the line is nothing but a number and
// surrounding symbols ("92.4", "+0.3%"), i.e. a stat line, not a name.
func isNumericLine(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// digitHeavy reports whether more than half the line's characters are
// digits. Such lines are stat rows, never names.
func digitHeavy(s string) bool {
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits*2 > len([]rune(s))
}
