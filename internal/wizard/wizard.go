// Package wizard collects the settings for a fresh .statllm.yaml through an
// interactive form.
package wizard

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/iblwz/statllm/internal/projectconfig"
)

// ConfigSpec holds all fields collected during the interactive wizard.
type ConfigSpec struct {
	ReadmeURL    string
	ChatID       string
	TopK         int
	ChunkBudget  int
	SnapshotPath string
	DisplayOrder []string
}

const configYAMLTemplate = `# statllm project configuration.
# Alias tables, category keywords, and provider rules fall back to the
# built-in defaults unless overridden here.

report:
  chunk_budget: {{ .ChunkBudget }}
  top_k: {{ .TopK }}
{{- if .DisplayOrder }}
  display_order:
{{- range .DisplayOrder }}
    - {{ . }}
{{- end }}
{{- end }}

snapshot:
  path: {{ .SnapshotPath }}

# The bot token is read from the TELEGRAM_BOT_TOKEN environment variable.
telegram:
  chat_id: "{{ .ChatID }}"

sources:
  - type: readme
    params:
      url: "{{ .ReadmeURL }}"
`

// RunConfigWizard runs an interactive huh form to collect project settings.
func RunConfigWizard(in io.Reader, out io.Writer) (*ConfigSpec, error) {
	var (
		readmeURL    string
		chatID       string
		topKRaw      = strconv.Itoa(projectconfig.DefaultTopK)
		budgetRaw    = strconv.Itoa(projectconfig.DefaultChunkBudget)
		snapshotPath = projectconfig.DefaultSnapshotPath
		orderRaw     string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Leaderboard README URL").
				Description("Raw markdown URL of the leaderboard to ingest").
				Placeholder("https://raw.githubusercontent.com/...").
				Value(&readmeURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Telegram chat ID").
				Description("Chat that receives the daily summary").
				Placeholder("-1001234567890").
				Value(&chatID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("chat ID is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Entities per category").
				Value(&topKRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Message size budget (bytes)").
				Value(&budgetRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Snapshot path").
				Value(&snapshotPath),
			huh.NewInput().
				Title("Provider display order").
				Description("Comma-separated, empty keeps alphabetical").
				Placeholder("OpenAI, Anthropic, Google").
				Value(&orderRaw),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	topK, _ := strconv.Atoi(strings.TrimSpace(topKRaw))
	budget, _ := strconv.Atoi(strings.TrimSpace(budgetRaw))

	return &ConfigSpec{
		ReadmeURL:    strings.TrimSpace(readmeURL),
		ChatID:       strings.TrimSpace(chatID),
		TopK:         topK,
		ChunkBudget:  budget,
		SnapshotPath: strings.TrimSpace(snapshotPath),
		DisplayOrder: splitAndTrim(orderRaw),
	}, nil
}

// GenerateConfigYAML renders a .statllm.yaml from the given spec.
func GenerateConfigYAML(spec *ConfigSpec) (string, error) {
	tmpl, err := template.New("config").Parse(configYAMLTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("not a valid URL")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
