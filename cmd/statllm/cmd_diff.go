package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/iblwz/statllm/internal/baseline"
	"github.com/iblwz/statllm/internal/models"
)

var diffOutputFormat string

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <today> <prior>",
		Short: "Compare two snapshot files",
		Long: `Compare two snapshot files offline and print the per-entity rank
movements and score deltas, without fetching anything or delivering a
report. Accepts both plain JSON and the gzip-compressed snapshots the run
command writes.`,
		Args: cobra.ExactArgs(2),
		RunE: diffCommandE,
	}

	cmd.Flags().StringVarP(&diffOutputFormat, "format", "f", "table", "Output format: table or json")

	return cmd
}

func diffCommandE(cmd *cobra.Command, args []string) error {
	if diffOutputFormat != "table" && diffOutputFormat != "json" {
		return fmt.Errorf("unsupported format %q: must be table or json", diffOutputFormat)
	}

	today, err := loadSnapshotFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	prior, err := loadSnapshotFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[1], err)
	}

	moves := baseline.Diff(today, prior)

	if diffOutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(moves)
	}
	printDiffTable(cmd.OutOrStdout(), moves)
	return nil
}

// loadSnapshotFile reads a snapshot from disk, transparently handling the
// gzip-compressed form by its magic bytes.
func loadSnapshotFile(path string) (models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Snapshot{}, err
	}

	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return models.Snapshot{}, err
		}
		defer gz.Close() //nolint:errcheck
		if data, err = io.ReadAll(gz); err != nil {
			return models.Snapshot{}, err
		}
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func printDiffTable(w io.Writer, moves map[string][]baseline.Movement) {
	categories := make([]string, 0, len(moves))
	for c := range moves {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Fprintf(w, "%s\n", category) //nolint:errcheck
		for _, m := range moves[category] {
			name := runewidth.FillRight(runewidth.Truncate(m.Name, 40, "…"), 40)
			fmt.Fprintf(w, "  %s %-10s %s\n", name, directionLabel(m), deltaLabel(m)) //nolint:errcheck
		}
	}
}

func directionLabel(m baseline.Movement) string {
	switch m.Direction {
	case baseline.DirectionUp:
		return fmt.Sprintf("up %d", m.Places)
	case baseline.DirectionDown:
		return fmt.Sprintf("down %d", m.Places)
	case baseline.DirectionNew:
		return "new"
	default:
		return "unchanged"
	}
}

func deltaLabel(m baseline.Movement) string {
	if m.Direction == baseline.DirectionNew || m.Delta == 0 {
		return ""
	}
	return fmt.Sprintf("%+.1f", m.Delta)
}
