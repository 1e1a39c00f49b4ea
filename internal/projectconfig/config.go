// Package projectconfig provides the Config struct and loader for
// .statllm.yaml project-level configuration files. All pipeline data that
// varies per deployment (alias tables, category keywords, provider rules,
// display labels, budgets, sources) lives here, not in code.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Default values for project configuration. These are the single source of
// truth: New() references them and no other code should duplicate them.
const (
	DefaultChunkBudget  = 3800
	DefaultTopK         = 10
	DefaultSnapshotPath = ".statllm/snapshot.json.gz"
	DefaultHeader       = "📊 LLM Stats — Daily Summary"
	DefaultAttribution  = "Source: llm-stats.com"
)

// Source types accepted in the sources list.
const (
	SourceReadme     = "readme"
	SourceModelsTree = "models_tree"
	SourceSections   = "sections"
)

// CategoryRule binds a ranking category key to the benchmark keywords that
// feed it.
type CategoryRule struct {
	Key      string   `yaml:"key"`
	Keywords []string `yaml:"keywords"`
}

// ProviderRule is one entry of the ordered provider classification list.
type ProviderRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// ReportConfig holds rendering settings.
type ReportConfig struct {
	Header       string            `yaml:"header,omitempty"`
	Attribution  string            `yaml:"attribution,omitempty"`
	ChunkBudget  int               `yaml:"chunk_budget,omitempty"`
	TopK         int               `yaml:"top_k,omitempty"`
	DisplayOrder []string          `yaml:"display_order,omitempty"`
	Labels       map[string]string `yaml:"labels,omitempty"`
}

// AzureSnapshotConfig selects the Azure Blob snapshot store.
type AzureSnapshotConfig struct {
	ServiceURL string `yaml:"service_url"`
	Container  string `yaml:"container"`
	Blob       string `yaml:"blob"`
}

// SnapshotConfig holds snapshot persistence settings. When Azure is set it
// takes precedence over the file path.
type SnapshotConfig struct {
	Path  string               `yaml:"path,omitempty"`
	Azure *AzureSnapshotConfig `yaml:"azure,omitempty"`
}

// TelegramConfig holds delivery settings. An empty token falls back to the
// TELEGRAM_BOT_TOKEN environment variable at run time.
type TelegramConfig struct {
	Token  string `yaml:"token,omitempty"`
	ChatID string `yaml:"chat_id,omitempty"`
}

// GitHubConfig holds fetch authentication. An empty token falls back to the
// GITHUB_TOKEN environment variable at run time.
type GitHubConfig struct {
	Token string `yaml:"token,omitempty"`
}

// SourceConfig is one raw entry of the sources list. Params are decoded into
// a typed source spec by Decode.
type SourceConfig struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params,omitempty"`
}

// ReadmeSource fetches a raw markdown leaderboard document.
type ReadmeSource struct {
	URL string `mapstructure:"url"`
}

// ModelsTreeSource lists and fetches per-model JSON documents from a GitHub
// repository directory.
type ModelsTreeSource struct {
	Owner string `mapstructure:"owner"`
	Repo  string `mapstructure:"repo"`
	Dir   string `mapstructure:"dir"`
	Ref   string `mapstructure:"ref"`
}

// SectionsSource fetches scraped leaderboard pages, one per category label.
type SectionsSource struct {
	Pages map[string]string `mapstructure:"pages"`
}

// Decode converts the raw params into the typed spec for the source type.
func (s SourceConfig) Decode() (any, error) {
	switch s.Type {
	case SourceReadme:
		var v ReadmeSource
		if err := mapstructure.Decode(s.Params, &v); err != nil {
			return nil, err
		}
		if v.URL == "" {
			return nil, fmt.Errorf("readme source requires url")
		}
		return v, nil
	case SourceModelsTree:
		var v ModelsTreeSource
		if err := mapstructure.Decode(s.Params, &v); err != nil {
			return nil, err
		}
		if v.Owner == "" || v.Repo == "" || v.Dir == "" {
			return nil, fmt.Errorf("models_tree source requires owner, repo, and dir")
		}
		return v, nil
	case SourceSections:
		var v SectionsSource
		if err := mapstructure.Decode(s.Params, &v); err != nil {
			return nil, err
		}
		if len(v.Pages) == 0 {
			return nil, fmt.Errorf("sections source requires at least one page")
		}
		return v, nil
	default:
		return nil, fmt.Errorf("'%s' is not a valid source type", s.Type)
	}
}

// Config is the top-level configuration loaded from .statllm.yaml.
// Nil alias/category/provider tables mean "use the built-in defaults";
// a present table replaces the built-in one wholesale.
type Config struct {
	Aliases    map[string][]string `yaml:"aliases,omitempty"`
	Categories []CategoryRule      `yaml:"categories,omitempty"`
	Providers  []ProviderRule      `yaml:"providers,omitempty"`
	Exclude    string              `yaml:"exclude,omitempty"`
	Report     ReportConfig        `yaml:"report,omitempty"`
	Snapshot   SnapshotConfig      `yaml:"snapshot,omitempty"`
	Telegram   TelegramConfig      `yaml:"telegram,omitempty"`
	GitHub     GitHubConfig        `yaml:"github,omitempty"`
	Sources    []SourceConfig      `yaml:"sources,omitempty"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Report: ReportConfig{
			Header:      DefaultHeader,
			Attribution: DefaultAttribution,
			ChunkBudget: DefaultChunkBudget,
			TopK:        DefaultTopK,
		},
		Snapshot: SnapshotConfig{
			Path: DefaultSnapshotPath,
		},
	}
}

// Load finds .statllm.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading .statllm.yaml: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .statllm.yaml: %w", err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .statllm.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".statllm.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst. Tables and lists
// replace wholesale when present; partial table merges would make the
// effective config impossible to reason about.
func mergeConfig(dst, src *Config) {
	if src.Aliases != nil {
		dst.Aliases = src.Aliases
	}
	if src.Categories != nil {
		dst.Categories = src.Categories
	}
	if src.Providers != nil {
		dst.Providers = src.Providers
	}
	if src.Exclude != "" {
		dst.Exclude = src.Exclude
	}

	// Report
	if src.Report.Header != "" {
		dst.Report.Header = src.Report.Header
	}
	if src.Report.Attribution != "" {
		dst.Report.Attribution = src.Report.Attribution
	}
	if src.Report.ChunkBudget != 0 {
		dst.Report.ChunkBudget = src.Report.ChunkBudget
	}
	if src.Report.TopK != 0 {
		dst.Report.TopK = src.Report.TopK
	}
	if src.Report.DisplayOrder != nil {
		dst.Report.DisplayOrder = src.Report.DisplayOrder
	}
	if src.Report.Labels != nil {
		dst.Report.Labels = src.Report.Labels
	}

	// Snapshot
	if src.Snapshot.Path != "" {
		dst.Snapshot.Path = src.Snapshot.Path
	}
	if src.Snapshot.Azure != nil {
		dst.Snapshot.Azure = src.Snapshot.Azure
	}

	// Telegram
	if src.Telegram.Token != "" {
		dst.Telegram.Token = src.Telegram.Token
	}
	if src.Telegram.ChatID != "" {
		dst.Telegram.ChatID = src.Telegram.ChatID
	}

	// GitHub
	if src.GitHub.Token != "" {
		dst.GitHub.Token = src.GitHub.Token
	}

	if src.Sources != nil {
		dst.Sources = src.Sources
	}
}
