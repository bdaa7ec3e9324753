package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
	"github.com/johnquangdev/script-workspace/internal/domain/repositories"
	"github.com/johnquangdev/script-workspace/internal/infrastructure/database"
)

// GormSnapshotRepository stores the snapshot as a JSONB row in PostgreSQL
type GormSnapshotRepository struct {
	db  *gorm.DB
	key string
}

// NewGormSnapshotRepository creates a new GORM snapshot repository
func NewGormSnapshotRepository(db *gorm.DB, key string) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db, key: key}
}

func (r *GormSnapshotRepository) Load(ctx context.Context) ([]byte, error) {
	var record entities.SnapshotRecord
	if err := r.db.WithContext(ctx).Where("snapshot_key = ?", r.key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrSnapshotNotFound
		}
		return nil, err
	}
	return []byte(record.Payload), nil
}

// Save upserts the row for the configured key.
func (r *GormSnapshotRepository) Save(ctx context.Context, payload []byte) error {
	record := entities.SnapshotRecord{
		Key:       r.key,
		Payload:   datatypes.JSON(payload),
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "snapshot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&record).Error
}

func (r *GormSnapshotRepository) Delete(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("snapshot_key = ?", r.key).
		Delete(&entities.SnapshotRecord{}).Error
}

func (r *GormSnapshotRepository) Close() error {
	return database.CloseDB(r.db)
}
