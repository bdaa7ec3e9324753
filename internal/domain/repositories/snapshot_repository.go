package repositories

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by Load when nothing is stored under the key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository stores the raw workspace snapshot under a single key.
// Save overwrites the whole payload; there are no partial writes.
type SnapshotRepository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Delete(ctx context.Context) error
	Close() error
}
