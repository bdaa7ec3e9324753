package entities

import (
	"time"

	"gorm.io/datatypes"
)

// SnapshotRecord is the database row holding a stored snapshot payload.
type SnapshotRecord struct {
	Key       string         `gorm:"column:snapshot_key;primaryKey" json:"key"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb;not null" json:"payload"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SnapshotRecord) TableName() string {
	return "workspace_snapshots"
}
