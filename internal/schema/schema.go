// Package schema maps arbitrary source labels onto the canonical field
// taxonomy through alias tables. Matching is exact (case-insensitive,
// whitespace-collapsed), never substring: "math" must not claim a column
// titled "mathematics-adjacent-notes".
package schema

import "strings"

// AliasTable maps a canonical field name to its ordered list of acceptable
// source label variants. Order matters for tie-breaking when several raw
// labels could satisfy the same field: the earliest alias present in the
// header wins.
type AliasTable map[string][]string

// DefaultAliases covers the column labels observed across leaderboard
// sources. Config may replace this table wholesale.
func DefaultAliases() AliasTable {
	return AliasTable{
		"name":     {"name", "model", "model name"},
		"provider": {"provider", "company"},
		"humaneval": {"humaneval", "human eval", "aider polyglot", "code"},
		"aime2024":  {"aime 2024", "aime-2024", "aime"},
		"gpqa":      {"gpqa", "gpqa diamond", "knowledge"},
		"mmlu":      {"mmlu"},
		"mmlupro":   {"mmlu-pro", "mmlu pro"},
		"mmmu":      {"mmmu", "multimodal"},
		"math":      {"math", "gsm8k"},
	}
}

// ColumnMap maps canonical field names to column positions in a header row.
type ColumnMap map[string]int

// Canon lowercases and collapses interior whitespace so header labels and
// aliases compare on equal footing.
func Canon(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// MapHeader maps a header row onto canonical fields. For each field the
// first alias found in the header wins, and when the same label appears in
// several columns the first column position is kept; both are deliberate
// precedence rules. Returns ok=false when the header offers neither an
// identity field nor any scorable field, letting the extractor reject decoy
// tables and keep scanning.
func MapHeader(header []string, aliases AliasTable) (ColumnMap, bool) {
	index := make(map[string]int, len(header))
	for i, label := range header {
		key := Canon(label)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	cols := make(ColumnMap)
	for field, variants := range aliases {
		for _, v := range variants {
			if pos, ok := index[Canon(v)]; ok {
				cols[field] = pos
				break
			}
		}
	}

	if !cols.HasIdentity() || !cols.hasScorable() {
		return nil, false
	}
	return cols, true
}

// HasIdentity reports whether a name column was mapped.
func (c ColumnMap) HasIdentity() bool {
	_, ok := c["name"]
	return ok
}

func (c ColumnMap) hasScorable() bool {
	for field := range c {
		if field != "name" && field != "provider" {
			return true
		}
	}
	return false
}
