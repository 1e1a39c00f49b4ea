package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iblwz/statllm/internal/models"
)

func writeSnapshotJSON(t *testing.T, dir, name string, snap models.Snapshot) string {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeSnapshotGzip(t *testing.T, dir, name string, snap models.Snapshot) string {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err = gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func runDiff(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"diff"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestDiffCommand_Table(t *testing.T) {
	dir := t.TempDir()
	today := writeSnapshotJSON(t, dir, "today.json", models.Snapshot{
		Categories: map[string][]models.Entry{
			"Coding": {
				{Name: "A", Score: 90.0},
				{Name: "B", Score: 80.0},
			},
		},
	})
	prior := writeSnapshotJSON(t, dir, "prior.json", models.Snapshot{
		Categories: map[string][]models.Entry{
			"Coding": {
				{Name: "B", Score: 85.0},
				{Name: "A", Score: 88.0},
			},
		},
	})

	out, err := runDiff(t, today, prior)
	require.NoError(t, err)

	assert.Contains(t, out, "Coding")
	assert.Contains(t, out, "up 1")
	assert.Contains(t, out, "down 1")
	assert.Contains(t, out, "+2.0")
	assert.Contains(t, out, "-5.0")
}

func TestDiffCommand_GzipSnapshot(t *testing.T) {
	dir := t.TempDir()
	snap := models.Snapshot{
		Categories: map[string][]models.Entry{"Math": {{Name: "A", Score: 91.0}}},
	}
	today := writeSnapshotGzip(t, dir, "today.json.gz", snap)
	prior := writeSnapshotJSON(t, dir, "prior.json", snap)

	out, err := runDiff(t, today, prior)
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")
}

func TestDiffCommand_JSONFormat(t *testing.T) {
	dir := t.TempDir()
	today := writeSnapshotJSON(t, dir, "today.json", models.Snapshot{
		Categories: map[string][]models.Entry{"Coding": {{Name: "A", Score: 90.0}}},
	})
	prior := writeSnapshotJSON(t, dir, "prior.json", models.Snapshot{})

	out, err := runDiff(t, today, prior, "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Name": "A"`)
}

func TestDiffCommand_BadFormat(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshotJSON(t, dir, "s.json", models.Snapshot{})

	_, err := runDiff(t, snap, snap, "--format", "csv")
	assert.Error(t, err)
}

func TestDiffCommand_MissingFile(t *testing.T) {
	dir := t.TempDir()
	snap := writeSnapshotJSON(t, dir, "s.json", models.Snapshot{})

	_, err := runDiff(t, filepath.Join(dir, "missing.json"), snap)
	assert.Error(t, err)
}
