// Package classify infers a provider category for an entity from its name
// when the source supplied no explicit one. Patterns are tried in a fixed
// precedence order because keyword sets can overlap by design (a vendor name
// can appear inside another vendor's product name); the earlier label wins.
package classify

import (
	"fmt"
	"regexp"
	"strings"
)

// Fallback is the universal category for names no pattern claims.
const Fallback = "Other"

// Rule pairs a category label with the keyword set that claims it. Keywords
// are matched as whole word-boundary tokens, case-insensitively.
type Rule struct {
	Label    string
	Keywords []string
}

// DefaultRules is the provider precedence list observed across leaderboard
// sources. Config may replace it; order is part of the contract.
func DefaultRules() []Rule {
	return []Rule{
		{"OpenAI", []string{"gpt", "o1", "o3", "o4"}},
		{"Anthropic", []string{"claude"}},
		{"Google", []string{"gemini", "palm"}},
		{"xAI", []string{"grok"}},
		{"Mistral", []string{"mistral"}},
		{"DeepSeek", []string{"deepseek"}},
		{"Alibaba/Qwen", []string{"qwen"}},
		{"Kimi", []string{"kimi"}},
		{"Cohere", []string{"cohere", "command"}},
		{"Perplexity", []string{"perplexity", "pplx", "sonar"}},
	}
}

// Classifier holds the compiled precedence list.
type Classifier struct {
	labels   []string
	patterns []*regexp.Regexp
}

// New compiles the rules, preserving their order. Keyword sets compile to a
// single alternation per label.
func New(rules []Rule) (*Classifier, error) {
	c := &Classifier{}
	for _, rule := range rules {
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("classify: rule %q has no keywords", rule.Label)
		}
		quoted := make([]string, len(rule.Keywords))
		for i, kw := range rule.Keywords {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(strings.TrimSpace(kw)))
		}
		pat, err := regexp.Compile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("classify: rule %q: %w", rule.Label, err)
		}
		c.labels = append(c.labels, rule.Label)
		c.patterns = append(c.patterns, pat)
	}
	return c, nil
}

// Classify returns the explicit category verbatim (trimmed) when present,
// otherwise the label of the first matching rule, otherwise Fallback.
func (c *Classifier) Classify(name, explicit string) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}
	for i, pat := range c.patterns {
		if pat.MatchString(name) {
			return c.labels[i]
		}
	}
	return Fallback
}
