// Package pipeline orchestrates one summarizer run: gather sources, extract
// records, classify and rank them, diff against the prior snapshot, render
// the report, deliver it, and persist the new snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"

	"github.com/iblwz/statllm/internal/baseline"
	"github.com/iblwz/statllm/internal/classify"
	"github.com/iblwz/statllm/internal/deliver"
	"github.com/iblwz/statllm/internal/extract"
	"github.com/iblwz/statllm/internal/fetch"
	"github.com/iblwz/statllm/internal/models"
	"github.com/iblwz/statllm/internal/projectconfig"
	"github.com/iblwz/statllm/internal/rank"
	"github.com/iblwz/statllm/internal/report"
	"github.com/iblwz/statllm/internal/schema"
	"github.com/iblwz/statllm/internal/snapshot"
)

// Runner executes the full pipeline for one day.
type Runner struct {
	Config  *projectconfig.Config
	Fetcher *fetch.Client
	Store   snapshot.Store
	// Sink delivers report chunks; Notifier carries failure diagnostics.
	// The Telegram implementation serves both.
	Sink     deliver.Sink
	Notifier deliver.Notifier
	// Out receives the rendered chunks in dry-run mode.
	Out    io.Writer
	DryRun bool
	// Date labels the snapshot written at the end of the run.
	Date string
}

// Result summarizes a completed run.
type Result struct {
	Chunks  []string
	Records int
	Groups  int
}

// GatherInputs resolves the configured sources into extractor inputs,
// fetching each one.
func (r *Runner) GatherInputs(ctx context.Context) ([]extract.Input, error) {
	var inputs []extract.Input
	for i, src := range r.Config.Sources {
		spec, err := src.Decode()
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}

		switch s := spec.(type) {
		case projectconfig.ReadmeSource:
			body, err := r.Fetcher.Raw(ctx, s.URL)
			if err != nil {
				return nil, fmt.Errorf("fetching readme source: %w", err)
			}
			inputs = append(inputs, extract.Input{Table: string(body)})

		case projectconfig.ModelsTreeSource:
			entries, err := r.Fetcher.ListDocuments(ctx, s.Owner, s.Repo, s.Dir, s.Ref)
			if err != nil {
				return nil, err
			}
			docs, err := r.Fetcher.Documents(ctx, entries)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, extract.Input{Documents: docs})

		case projectconfig.SectionsSource:
			sections := make(map[string]string, len(s.Pages))
			for _, label := range sortedKeys(s.Pages) {
				body, err := r.Fetcher.Raw(ctx, s.Pages[label])
				if err != nil {
					return nil, fmt.Errorf("fetching %q section: %w", label, err)
				}
				sections[label] = string(body)
			}
			inputs = append(inputs, extract.Input{Sections: sections})
		}
	}
	return inputs, nil
}

// Run executes the pipeline over the given inputs. A no-data day and an
// all-excluded filter both notify the delivery channel with a distinct
// diagnostic before returning their sentinel error.
func (r *Runner) Run(ctx context.Context, inputs []extract.Input) (*Result, error) {
	extractor := extract.New(r.aliases())

	var records [][]models.Record
	var total int
	var diag extract.Diagnostics
	for _, in := range inputs {
		recs, d, err := extractor.Extract(in)
		if err != nil {
			return nil, err
		}
		records = append(records, recs)
		total += len(recs)
		diag.Tables += d.Tables
		diag.Documents += d.Documents
		diag.Segments += d.Segments
		diag.Dropped += d.Dropped
	}

	flat := flatten(records, total)
	if err := extract.CheckNoData(flat, diag); err != nil {
		r.notify(ctx, "No leaderboard data found today; skipping the summary.")
		return nil, err
	}

	classifier, err := r.classifier()
	if err != nil {
		return nil, err
	}
	ranker, err := r.ranker()
	if err != nil {
		return nil, err
	}

	groups, err := ranker.Rank(flat, classifier)
	if err != nil {
		if errors.Is(err, rank.ErrAllExcluded) {
			r.notify(ctx, "Exclusion pattern filtered out every entity; check the configuration.")
		}
		return nil, err
	}

	prior, err := r.Store.Load(ctx)
	if err != nil {
		return nil, err
	}
	today := baseline.BuildSnapshot(groups, r.Config.Report.TopK, r.Date)

	var moves map[string][]baseline.Movement
	if !prior.Empty() {
		moves = baseline.Diff(today, prior)
	}

	chunks := r.renderer().Render(groups, moves)

	if r.DryRun {
		for _, chunk := range chunks {
			fmt.Fprintln(r.Out, chunk)
			fmt.Fprintln(r.Out, "---")
		}
	} else {
		for i, chunk := range chunks {
			if err := r.Sink.Deliver(ctx, chunk); err != nil {
				return nil, fmt.Errorf("delivering chunk %d/%d: %w", i+1, len(chunks), err)
			}
		}
		if err := r.Store.Save(ctx, today); err != nil {
			return nil, err
		}
	}

	slog.Info("run complete", "records", len(flat), "groups", len(groups), "chunks", len(chunks), "dry_run", r.DryRun)
	return &Result{Chunks: chunks, Records: len(flat), Groups: len(groups)}, nil
}

func (r *Runner) aliases() schema.AliasTable {
	if r.Config.Aliases != nil {
		return schema.AliasTable(r.Config.Aliases)
	}
	return schema.DefaultAliases()
}

func (r *Runner) classifier() (*classify.Classifier, error) {
	rules := classify.DefaultRules()
	if r.Config.Providers != nil {
		rules = rules[:0]
		for _, p := range r.Config.Providers {
			rules = append(rules, classify.Rule{Label: p.Label, Keywords: p.Keywords})
		}
	}
	return classify.New(rules)
}

func (r *Runner) ranker() (*rank.Ranker, error) {
	categories := rank.DefaultCategories()
	if r.Config.Categories != nil {
		categories = categories[:0]
		for _, c := range r.Config.Categories {
			categories = append(categories, rank.Category{Key: c.Key, Keywords: c.Keywords})
		}
	}

	var exclude *regexp.Regexp
	if r.Config.Exclude != "" {
		var err error
		exclude, err = regexp.Compile(r.Config.Exclude)
		if err != nil {
			return nil, fmt.Errorf("compiling exclude pattern: %w", err)
		}
	}

	return &rank.Ranker{
		Categories: categories,
		Exclude:    exclude,
		TopK:       r.Config.Report.TopK,
	}, nil
}

func (r *Runner) renderer() *report.Renderer {
	var categories []string
	for _, c := range r.Config.Categories {
		categories = append(categories, c.Key)
	}
	if categories == nil {
		for _, c := range rank.DefaultCategories() {
			categories = append(categories, c.Key)
		}
	}

	return &report.Renderer{
		Header:      r.Config.Report.Header,
		Attribution: r.Config.Report.Attribution,
		Budget:      r.Config.Report.ChunkBudget,
		Order:       r.Config.Report.DisplayOrder,
		Categories:  categories,
		Labels:      r.Config.Report.Labels,
		TopK:        r.Config.Report.TopK,
	}
}

// notify sends a diagnostic through the channel, best-effort: a failed
// notice must not mask the error being reported.
func (r *Runner) notify(ctx context.Context, message string) {
	if r.Notifier == nil || r.DryRun {
		return
	}
	if err := r.Notifier.Notify(ctx, message); err != nil {
		slog.Warn("failed to send diagnostic notice", "error", err)
	}
}

func flatten(sets [][]models.Record, total int) []models.Record {
	flat := make([]models.Record, 0, total)
	for _, s := range sets {
		flat = append(flat, s...)
	}
	return flat
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
