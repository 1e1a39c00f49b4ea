// Package snapshot persists the prior run's top-K results so the next run
// can diff against them. Loading tolerates a missing or unreadable snapshot
// by returning the empty value: first runs and wiped state are normal, not
// errors. Saving replaces the stored snapshot wholesale.
package snapshot

import (
	"context"

	"github.com/iblwz/statllm/internal/models"
)

// Store reads and writes the single current snapshot.
type Store interface {
	// Load returns the prior snapshot, or an empty one when none exists or
	// the stored data cannot be decoded.
	Load(ctx context.Context) (models.Snapshot, error)
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap models.Snapshot) error
}
