package models

import (
	"time"

	"github.com/cableflow/cableflow-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project groups cables under shared engineering requirements.
type Project struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	Name        string                  `gorm:"column:name;not null"`
	Description string                  `gorm:"column:description;not null;default:''"`
	Attributes  types.ProjectAttributes `gorm:"column:attributes;type:jsonb;not null"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
