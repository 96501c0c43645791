package models

import (
	"time"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Cable is a custom cable assembly and the state of its quote.
type Cable struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID              uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	ProjectID           *uuid.UUID          `gorm:"column:project_id;type:uuid"`
	Code                string              `gorm:"column:code;not null;uniqueIndex"`
	Name                string              `gorm:"column:name;not null"`
	Description         string              `gorm:"column:description;not null;default:''"`
	Status              enums.CableStatus   `gorm:"column:status;not null"`
	RequestedQuantities pq.Int64Array       `gorm:"column:requested_quantities;type:bigint[]"`
	DeliveryDate        *time.Time          `gorm:"column:delivery_date"`
	Notes               string              `gorm:"column:notes;not null;default:''"`
	QuoteNotes          string              `gorm:"column:quote_notes;not null;default:''"`
	QuoteTiers          []pricing.QuoteTier `gorm:"column:quote_tiers;type:jsonb;serializer:json"`
	QuoteExpiration     *time.Time          `gorm:"column:quote_expiration"`
	QuotedAt            *time.Time          `gorm:"column:quoted_at"`
	Files               []CableFile         `gorm:"foreignKey:CableID"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cable) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Quantities converts the stored array into ints.
func (c *Cable) Quantities() []int {
	out := make([]int, 0, len(c.RequestedQuantities))
	for _, q := range c.RequestedQuantities {
		out = append(out, int(q))
	}
	return out
}

// File returns the attachment of the given kind, if any.
func (c *Cable) File(kind enums.FileKind) *CableFile {
	for i := range c.Files {
		if c.Files[i].Kind == kind {
			return &c.Files[i]
		}
	}
	return nil
}
