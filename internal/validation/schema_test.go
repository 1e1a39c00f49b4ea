package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
aliases:
  humaneval: ["humaneval", "human eval (pass@1)"]
categories:
  - key: coding
    keywords: [humaneval, mbpp]
providers:
  - label: OpenAI
    keywords: [gpt, o1]
exclude: '(?i)mixtral'
report:
  header: "Daily report"
  chunk_budget: 3800
  top_k: 10
  display_order: [OpenAI, Anthropic]
snapshot:
  path: state/snapshot.json.gz
telegram:
  chat_id: "42"
sources:
  - type: readme
    params:
      url: "https://raw.example.com/README.md"
`

func TestValidateConfigBytes_Valid(t *testing.T) {
	errs := ValidateConfigBytes([]byte(validConfigYAML))
	assert.Empty(t, errs)
}

func TestValidateConfigBytes_EmptyDocumentIsValid(t *testing.T) {
	assert.Empty(t, ValidateConfigBytes([]byte(`{}`)))
}

func TestValidateConfigBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown top-level key", "budget: 3800\n"},
		{"chunk_budget wrong type", "report:\n  chunk_budget: large\n"},
		{"chunk_budget below minimum", "report:\n  chunk_budget: 0\n"},
		{"category missing keywords", "categories:\n  - key: coding\n"},
		{"provider keywords empty", "providers:\n  - label: OpenAI\n    keywords: []\n"},
		{"bad source type", "sources:\n  - type: rss\n"},
		{"azure missing container", "snapshot:\n  azure:\n    service_url: https://x\n    blob: snap.json\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateConfigBytes([]byte(tt.yaml))
			assert.NotEmpty(t, errs)
		})
	}
}

func TestValidateConfigBytes_ErrorsNameTheLocation(t *testing.T) {
	errs := ValidateConfigBytes([]byte("report:\n  chunk_budget: large\n"))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "/report/chunk_budget")
}

func TestValidateConfigBytes_UnparseableYAML(t *testing.T) {
	errs := ValidateConfigBytes([]byte("report: [broken\n  yaml"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "YAML parse error")
}

func TestValidateConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".statllm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfigYAML), 0o644))

	errs, err := ValidateConfigFile(path)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateConfigFile_Missing(t *testing.T) {
	_, err := ValidateConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
