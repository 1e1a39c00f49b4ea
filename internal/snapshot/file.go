package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/iblwz/statllm/internal/models"
)

// FileStore keeps the snapshot as a gzip-compressed JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the snapshot file. A missing file is an empty
// snapshot; a corrupt one logs a warning and is treated the same, so a bad
// write never wedges subsequent runs.
func (s *FileStore) Load(_ context.Context) (models.Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("no prior snapshot", "path", s.path)
			return models.Snapshot{}, nil
		}
		return models.Snapshot{}, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close() //nolint:errcheck

	gz, err := gzip.NewReader(f)
	if err != nil {
		slog.Warn("snapshot is not valid gzip, starting fresh", "path", s.path, "error", err)
		return models.Snapshot{}, nil
	}
	defer gz.Close() //nolint:errcheck

	var snap models.Snapshot
	if err := json.NewDecoder(gz).Decode(&snap); err != nil {
		slog.Warn("snapshot is corrupt, starting fresh", "path", s.path, "error", err)
		return models.Snapshot{}, nil
	}
	return snap, nil
}

// Save writes the snapshot atomically: encode to a temp file in the same
// directory, then rename over the old one.
func (s *FileStore) Save(_ context.Context, snap models.Snapshot) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	gz := gzip.NewWriter(tmp)
	if err := json.NewEncoder(gz).Encode(snap); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	slog.Debug("snapshot saved", "path", s.path, "categories", len(snap.Categories))
	return nil
}
