package extract

import (
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/iblwz/statllm/internal/models"
	"github.com/iblwz/statllm/internal/numeric"
	"github.com/iblwz/statllm/internal/schema"
)

// table is one contiguous block of pipe-delimited rows.
type table struct {
	header []string
	body   [][]string
}

// extractTable scans a markdown blob for pipe tables and converts the first
// one whose header the schema mapper accepts. Greedy first-match selection:
// a later table might map more columns, but the first candidate wins.
func (e *Extractor) extractTable(blob string) ([]models.Record, Diagnostics, error) {
	var diag Diagnostics

	tables := scanTables(blob)
	diag.Tables = len(tables)
	slog.Debug("markdown scan complete", "tables", len(tables))

	for _, t := range tables {
		cols, ok := schema.MapHeader(t.header, e.Aliases)
		if !ok {
			continue
		}
		slog.Info("selected leaderboard table", "columns", len(cols), "rows", len(t.body))
		records := e.tableRecords(t, cols, &diag)
		return records, diag, nil
	}

	return nil, diag, nil
}

// scanTables splits the blob into pipe-table blocks. A row is delimited by
// "|" at both ends; the header/body boundary is the first row made only of
// separator characters. The scan advances past each whole block so rows are
// never revisited.
func scanTables(blob string) []table {
	lines := strings.Split(blob, "\n")
	var tables []table

	i := 0
	for i < len(lines)-1 {
		if !isPipeRow(lines[i]) || !isSeparatorRow(lines[i+1]) {
			i++
			continue
		}

		t := table{header: splitCells(lines[i])}
		j := i + 2
		for j < len(lines) && isPipeRow(lines[j]) {
			t.body = append(t.body, splitCells(lines[j]))
			j++
		}
		tables = append(tables, t)
		i = j
	}
	return tables
}

// isPipeRow reports whether the line is pipe-delimited at both ends with at
// least one interior delimiter.
func isPipeRow(line string) bool {
	s := strings.TrimSpace(line)
	return len(s) >= 2 && strings.HasPrefix(s, "|") && strings.HasSuffix(s, "|") &&
		strings.Count(s, "|") >= 3
}

// isSeparatorRow reports whether the line consists only of table separator
// characters (pipes, dashes, colons, spaces).
func isSeparatorRow(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" || !strings.ContainsRune(s, '-') {
		return false
	}
	for _, r := range s {
		switch r {
		case '|', '-', ':', ' ':
		default:
			return false
		}
	}
	return true
}

// splitCells strips the outer pipes and splits on the interior ones, keeping
// empty cells so column positions stay aligned with the header.
func splitCells(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	parts := strings.Split(s, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// tableRecords converts table body rows into records using the mapped
// columns. Rows that are too short or have a blank name are dropped.
func (e *Extractor) tableRecords(t table, cols schema.ColumnMap, diag *Diagnostics) []models.Record {
	var records []models.Record
	for _, row := range t.body {
		rec, ok := rowRecord(row, cols)
		if !ok {
			diag.Dropped++
			continue
		}
		records = append(records, rec)
	}
	return records
}

func rowRecord(row []string, cols schema.ColumnMap) (models.Record, bool) {
	cell := func(pos int) string {
		if pos < 0 || pos >= len(row) {
			return ""
		}
		return row[pos]
	}

	name := plainText(cell(cols["name"]))
	if name == "" {
		return models.Record{}, false
	}

	rec := models.Record{
		Name:    name,
		Metrics: make(map[string]numeric.Score),
	}
	if pos, ok := cols["provider"]; ok {
		rec.Category = plainText(cell(pos))
	}

	for field, pos := range cols {
		if field == "name" || field == "provider" {
			continue
		}
		rec.Metrics[field] = numeric.Parse(cell(pos)).Normalize()
	}
	return rec, true
}

// plainText strips inline markdown (emphasis, links, code spans) from a cell
// so "**[GPT-4](https://...)**" reads as "GPT-4".
func plainText(cell string) string {
	if !strings.ContainsAny(cell, "*_`[<") {
		return strings.TrimSpace(cell)
	}

	src := []byte(cell)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
		case *ast.AutoLink:
			b.Write(v.Label(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
