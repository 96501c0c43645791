package models

import (
	"time"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CableFile is one stored attachment of a cable. Modified is set when a
// revision is uploaded and cleared once the owner views it.
type CableFile struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	CableID     uuid.UUID      `gorm:"column:cable_id;type:uuid;not null"`
	Kind        enums.FileKind `gorm:"column:kind;not null"`
	FileName    string         `gorm:"column:file_name;not null"`
	ContentType string         `gorm:"column:content_type;not null"`
	SizeBytes   int64          `gorm:"column:size_bytes;not null"`
	ObjectKey   string         `gorm:"column:object_key;not null"`
	Modified    bool           `gorm:"column:modified;not null;default:false"`
	ViewedAt    *time.Time     `gorm:"column:viewed_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (f *CableFile) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}
