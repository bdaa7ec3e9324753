package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/johnquangdev/script-workspace/internal/domain/repositories"
)

// SQLSnapshotRepository stores the snapshot in the workspace_snapshots table
// through database/sql. It is used with the sqlite driver.
type SQLSnapshotRepository struct {
	db  *sql.DB
	key string
}

// NewSQLSnapshotRepository creates a repository over a migrated database
func NewSQLSnapshotRepository(db *sql.DB, key string) *SQLSnapshotRepository {
	return &SQLSnapshotRepository{db: db, key: key}
}

func (r *SQLSnapshotRepository) Load(ctx context.Context) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM workspace_snapshots WHERE snapshot_key = ?`,
		r.key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return []byte(payload), nil
}

func (r *SQLSnapshotRepository) Save(ctx context.Context, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspace_snapshots (snapshot_key, payload, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(snapshot_key) DO UPDATE SET
            payload = excluded.payload,
            updated_at = excluded.updated_at`,
		r.key,
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *SQLSnapshotRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM workspace_snapshots WHERE snapshot_key = ?`, r.key); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (r *SQLSnapshotRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}
