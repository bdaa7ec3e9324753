package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/johnquangdev/script-workspace/internal/domain/repositories"
)

// FileSnapshotRepository stores the snapshot as a JSON file. Writes go to a
// temporary file that is renamed over the target, under an advisory lock
// shared with other processes using the same path.
type FileSnapshotRepository struct {
	path string
	lock *flock.Flock
}

// NewFileSnapshotRepository creates a repository writing to path. The
// parent directory is created when missing.
func NewFileSnapshotRepository(path string) (*FileSnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &FileSnapshotRepository{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (r *FileSnapshotRepository) Load(ctx context.Context) ([]byte, error) {
	if err := r.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock snapshot file: %w", err)
	}
	defer r.lock.Unlock()

	payload, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, repositories.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return payload, nil
}

func (r *FileSnapshotRepository) Save(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("lock snapshot file: %w", err)
	}
	defer r.lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

func (r *FileSnapshotRepository) Delete(ctx context.Context) error {
	if err := r.lock.Lock(); err != nil {
		return fmt.Errorf("lock snapshot file: %w", err)
	}
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	return nil
}

func (r *FileSnapshotRepository) Close() error {
	return r.lock.Close()
}
