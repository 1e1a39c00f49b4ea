package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iblwz/statllm/internal/extract"
	"github.com/iblwz/statllm/internal/models"
	"github.com/iblwz/statllm/internal/projectconfig"
	"github.com/iblwz/statllm/internal/rank"
)

const readmeInput = `# LLM Leaderboard

| Model | Provider | HumanEval | MMLU |
| ----- | -------- | --------- | ---- |
| o1-preview | OpenAI | 95.0% | 91.0 |
| GPT-4o | OpenAI | 90.2% | 88.7 |
| Claude 3.5 Sonnet | Anthropic | 92.0% | 88.3 |
| Mixtral-8x7B | Mistral | 40.2% | 70.6 |
`

type memStore struct {
	snap  models.Snapshot
	saved int
}

func (s *memStore) Load(context.Context) (models.Snapshot, error) { return s.snap, nil }
func (s *memStore) Save(_ context.Context, snap models.Snapshot) error {
	s.snap = snap
	s.saved++
	return nil
}

type memSink struct {
	chunks  []string
	notices []string
}

func (s *memSink) Deliver(_ context.Context, chunk string) error { s.chunks = append(s.chunks, chunk); return nil }
func (s *memSink) Notify(_ context.Context, msg string) error    { s.notices = append(s.notices, msg); return nil }

func testRunner(cfg *projectconfig.Config) (*Runner, *memStore, *memSink) {
	store := &memStore{}
	sink := &memSink{}
	return &Runner{
		Config:   cfg,
		Store:    store,
		Sink:     sink,
		Notifier: sink,
		Date:     "2025-06-01",
	}, store, sink
}

func TestRun_EndToEnd(t *testing.T) {
	r, store, sink := testRunner(projectconfig.New())

	res, err := r.Run(context.Background(), []extract.Input{{Table: readmeInput}})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Records)
	require.NotEmpty(t, sink.chunks)
	all := strings.Join(sink.chunks, "\n")
	assert.Contains(t, all, "GPT-4o")
	assert.Contains(t, all, "Claude 3.5 Sonnet")
	assert.Contains(t, all, "— OpenAI:")
	assert.Contains(t, all, "— Anthropic:")

	assert.Equal(t, 1, store.saved, "snapshot persisted after delivery")
	assert.Equal(t, "2025-06-01", store.snap.Date)
	assert.Empty(t, sink.notices)
}

func TestRun_NoDataNotifiesAndReturnsSentinel(t *testing.T) {
	r, store, sink := testRunner(projectconfig.New())

	_, err := r.Run(context.Background(), []extract.Input{{Table: "nothing tabular here"}})
	require.ErrorIs(t, err, extract.ErrNoData)

	require.Len(t, sink.notices, 1)
	assert.Contains(t, sink.notices[0], "No leaderboard data")
	assert.Empty(t, sink.chunks, "no report on a no-data day")
	assert.Zero(t, store.saved, "snapshot untouched on a no-data day")
}

func TestRun_AllExcludedNotifiesAndReturnsSentinel(t *testing.T) {
	cfg := projectconfig.New()
	cfg.Exclude = `(?i).` // matches everything
	r, store, sink := testRunner(cfg)

	_, err := r.Run(context.Background(), []extract.Input{{Table: readmeInput}})
	require.ErrorIs(t, err, rank.ErrAllExcluded)

	require.Len(t, sink.notices, 1)
	assert.Contains(t, sink.notices[0], "Exclusion pattern")
	assert.Zero(t, store.saved)
}

func TestRun_ExclusionFilter(t *testing.T) {
	cfg := projectconfig.New()
	cfg.Exclude = `(?i)\bmixtral\b`
	r, _, sink := testRunner(cfg)

	_, err := r.Run(context.Background(), []extract.Input{{Table: readmeInput}})
	require.NoError(t, err)
	assert.NotContains(t, strings.Join(sink.chunks, "\n"), "Mixtral")
}

func TestRun_BadExcludePatternIsAnError(t *testing.T) {
	cfg := projectconfig.New()
	cfg.Exclude = `[unclosed`
	r, _, _ := testRunner(cfg)

	_, err := r.Run(context.Background(), []extract.Input{{Table: readmeInput}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclude pattern")
}

func TestRun_DryRunPrintsInsteadOfDelivering(t *testing.T) {
	r, store, sink := testRunner(projectconfig.New())
	var out bytes.Buffer
	r.DryRun = true
	r.Out = &out

	_, err := r.Run(context.Background(), []extract.Input{{Table: readmeInput}})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "GPT-4o")
	assert.Empty(t, sink.chunks, "dry-run must not deliver")
	assert.Zero(t, store.saved, "dry-run must not persist state")
}

func TestRun_SecondDayCarriesMovement(t *testing.T) {
	r, store, sink := testRunner(projectconfig.New())
	ctx := context.Background()

	_, err := r.Run(ctx, []extract.Input{{Table: readmeInput}})
	require.NoError(t, err)
	firstDay := strings.Join(sink.chunks, "\n")
	assert.NotContains(t, firstDay, "🆕", "first run has no prior to compare against")

	// GPT-4o overtakes o1-preview on day two.
	dayTwo := strings.ReplaceAll(readmeInput, "| GPT-4o | OpenAI | 90.2% | 88.7 |",
		"| GPT-4o | OpenAI | 99.0% | 98.0 |")
	sink.chunks = nil

	_, err = r.Run(ctx, []extract.Input{{Table: dayTwo}})
	require.NoError(t, err)
	assert.Equal(t, 2, store.saved)

	secondDay := strings.Join(sink.chunks, "\n")
	assert.Contains(t, secondDay, "↑1")
	assert.Contains(t, secondDay, "↓1")
}

func TestRun_CustomDisplayOrderAndLabels(t *testing.T) {
	cfg := projectconfig.New()
	cfg.Report.DisplayOrder = []string{"Anthropic", "OpenAI"}
	cfg.Report.Labels = map[string]string{"Anthropic": "أنثروبيك"}
	r, _, sink := testRunner(cfg)

	_, err := r.Run(context.Background(), []extract.Input{{Table: readmeInput}})
	require.NoError(t, err)

	all := strings.Join(sink.chunks, "\n")
	assert.Contains(t, all, "— أنثروبيك:")
	assert.Less(t, strings.Index(all, "أنثروبيك"), strings.Index(all, "— OpenAI:"))
}

func TestGatherInputs_UndecodableSourceFails(t *testing.T) {
	cfg := projectconfig.New()
	cfg.Sources = []projectconfig.SourceConfig{{Type: "rss"}}
	r, _, _ := testRunner(cfg)

	_, err := r.GatherInputs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source 0")
}
