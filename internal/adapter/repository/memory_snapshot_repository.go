package repository

import (
	"context"

	"github.com/johnquangdev/script-workspace/internal/domain/repositories"
	"github.com/johnquangdev/script-workspace/internal/infrastructure/cache"
)

// MemorySnapshotRepository keeps the snapshot in process memory. Nothing
// survives a restart.
type MemorySnapshotRepository struct {
	store *cache.MemoryStore
	key   string
}

// NewMemorySnapshotRepository creates a memory-backed snapshot repository
func NewMemorySnapshotRepository(store *cache.MemoryStore, key string) *MemorySnapshotRepository {
	return &MemorySnapshotRepository{store: store, key: key}
}

func (r *MemorySnapshotRepository) Load(ctx context.Context) ([]byte, error) {
	payload, ok := r.store.Get(r.key)
	if !ok {
		return nil, repositories.ErrSnapshotNotFound
	}
	return payload, nil
}

func (r *MemorySnapshotRepository) Save(ctx context.Context, payload []byte) error {
	r.store.Set(r.key, payload, 0)
	return nil
}

func (r *MemorySnapshotRepository) Delete(ctx context.Context) error {
	r.store.Delete(r.key)
	return nil
}

func (r *MemorySnapshotRepository) Close() error {
	r.store.Close()
	return nil
}
