package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iblwz/statllm/internal/schema"
)

const readmeFixture = `# LLM Leaderboard

Some introduction text.

| Section | Page |
|---------|------|
| Intro   | 1    |
| Results | 2    |

## Results

| Model | Provider | HumanEval | MMLU |
|-------|----------|-----------|------|
| **GPT-4o** | OpenAI | 90.2% | 88.7 |
| [Claude 3.5](https://example.com) | Anthropic | 92.0 | 88.3 |
| Gemini 1.5 | Google | 84.1 | 85.9 |
`

func TestExtractTable_SkipsDecoyAndParses(t *testing.T) {
	ex := New(schema.DefaultAliases())

	records, diag, err := ex.Extract(Input{Table: readmeFixture})
	require.NoError(t, err)

	assert.Equal(t, 2, diag.Tables, "both tables should be scanned")
	require.Len(t, records, 3)

	assert.Equal(t, "GPT-4o", records[0].Name, "inline markdown stripped from name")
	assert.Equal(t, "OpenAI", records[0].Category)
	assert.InDelta(t, 0.902, records[0].Metrics["humaneval"].Value, 1e-9)
	assert.InDelta(t, 0.887, records[0].Metrics["mmlu"].Value, 1e-9)

	assert.Equal(t, "Claude 3.5", records[1].Name, "link markup stripped from name")
}

func TestExtractTable_FirstCandidateWins(t *testing.T) {
	blob := `
| Model | MMLU |
|-------|------|
| A     | 80   |

| Model | MMLU | HumanEval |
|-------|------|-----------|
| B     | 90   | 95        |
`
	ex := New(schema.DefaultAliases())
	records, _, err := ex.Extract(Input{Table: blob})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Name, "greedy selection keeps the first candidate table")
}

func TestExtractTable_EmptyAndMalformed(t *testing.T) {
	ex := New(schema.DefaultAliases())

	records, diag, err := ex.Extract(Input{Table: ""})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, diag.Tables)

	// Separator row without a header above it is not a table.
	records, _, err = ex.Extract(Input{Table: "|---|---|\n| a | b |\n"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractTable_DropsBlankNameRows(t *testing.T) {
	blob := `
| Model | MMLU |
|-------|------|
| GPT-4 | 86.4 |
|       | 99.9 |
`
	ex := New(schema.DefaultAliases())
	records, diag, err := ex.Extract(Input{Table: blob})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, diag.Dropped)
}

func TestExtractTable_EmptyCellsKeepAlignment(t *testing.T) {
	blob := `
| Model | HumanEval | MMLU |
|-------|-----------|------|
| GPT-4 |           | 86.4 |
`
	ex := New(schema.DefaultAliases())
	records, _, err := ex.Extract(Input{Table: blob})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Metrics["humaneval"].Valid, "empty cell is missing")
	assert.InDelta(t, 0.864, records[0].Metrics["mmlu"].Value, 1e-9,
		"later columns must not shift into the empty one")
}

func TestScanTables_AdvancesPastBlocks(t *testing.T) {
	blob := `
| A | B |
|---|---|
| 1 | 2 |
| 3 | 4 |
text between
| C | D |
|---|---|
| 5 | 6 |
`
	tables := scanTables(blob)
	require.Len(t, tables, 2)
	assert.Len(t, tables[0].body, 2)
	assert.Len(t, tables[1].body, 1)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GPT-4o", "GPT-4o"},
		{"**GPT-4o**", "GPT-4o"},
		{"[Claude 3.5](https://example.com)", "Claude 3.5"},
		{"**[Claude 3.5](x)**", "Claude 3.5"},
		{"`o1-mini`", "o1-mini"},
		{"  padded  ", "padded"},
	}
	for _, tt := range tests {
		if got := plainText(tt.in); got != tt.want {
			t.Errorf("plainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
