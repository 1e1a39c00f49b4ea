package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHeader_RecognizedColumns(t *testing.T) {
	header := []string{"Model", "Provider", "HumanEval", "MMLU"}

	cols, ok := MapHeader(header, DefaultAliases())
	require.True(t, ok)

	assert.Equal(t, 0, cols["name"])
	assert.Equal(t, 1, cols["provider"])
	assert.Equal(t, 2, cols["humaneval"])
	assert.Equal(t, 3, cols["mmlu"])
}

func TestMapHeader_RejectsDecoyTable(t *testing.T) {
	_, ok := MapHeader([]string{"Title", "Description"}, DefaultAliases())
	assert.False(t, ok, "header without identity or scorable fields is not a candidate")
}

func TestMapHeader_RejectsIdentityOnly(t *testing.T) {
	_, ok := MapHeader([]string{"Model", "Notes"}, DefaultAliases())
	assert.False(t, ok, "identity without any scorable field is not a candidate")
}

func TestMapHeader_ExactMatchOnly(t *testing.T) {
	cols, ok := MapHeader([]string{"Model", "mathematics-adjacent-notes", "MMLU"}, DefaultAliases())
	require.True(t, ok)
	_, mapped := cols["math"]
	assert.False(t, mapped, "substring matches must not map")
}

func TestMapHeader_FirstColumnWinsOnDuplicates(t *testing.T) {
	cols, ok := MapHeader([]string{"Model", "MMLU", "MMLU"}, DefaultAliases())
	require.True(t, ok)
	assert.Equal(t, 1, cols["mmlu"])
}

func TestMapHeader_AliasOrderBreaksTies(t *testing.T) {
	// Both "mmlu-pro" and "mmlu pro" are present; the earlier alias in the
	// list decides which column the field binds to.
	aliases := AliasTable{
		"name":    {"model"},
		"mmlupro": {"mmlu-pro", "mmlu pro"},
	}
	cols, ok := MapHeader([]string{"Model", "MMLU Pro", "MMLU-Pro"}, aliases)
	require.True(t, ok)
	assert.Equal(t, 2, cols["mmlupro"])
}

func TestMapHeader_CaseAndWhitespaceInsensitive(t *testing.T) {
	cols, ok := MapHeader([]string{"  MODEL  ", "Human   Eval"}, DefaultAliases())
	require.True(t, ok)
	assert.Equal(t, 0, cols["name"])
	assert.Equal(t, 1, cols["humaneval"])
}

func TestCanon(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  MMLU  Pro ", "mmlu pro"},
		{"Model", "model"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Canon(tt.in); got != tt.want {
			t.Errorf("Canon(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
