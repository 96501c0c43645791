package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is a priced cable line awaiting checkout. Prices are captured when
// the line is added and never recomputed.
type CartItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	CableID          uuid.UUID       `gorm:"column:cable_id;type:uuid;not null"`
	CableCode        string          `gorm:"column:cable_code;not null"`
	CableName        string          `gorm:"column:cable_name;not null"`
	CableDescription string          `gorm:"column:cable_description;not null;default:''"`
	Quantity         int             `gorm:"column:quantity;not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null"`
	LeadTime         string          `gorm:"column:lead_time;not null;default:''"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
