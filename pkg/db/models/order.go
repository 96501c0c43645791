package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the immutable record produced by checkout.
type Order struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	ExtendedID        string          `gorm:"column:extended_id;not null;uniqueIndex"`
	TotalPrice        decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null"`
	LeadTime          string          `gorm:"column:lead_time;not null;default:''"`
	CheckoutSessionID *string         `gorm:"column:checkout_session_id"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem snapshots a cart line into an order.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	CableID   uuid.UUID       `gorm:"column:cable_id;type:uuid;not null"`
	CableCode string          `gorm:"column:cable_code;not null"`
	CableName string          `gorm:"column:cable_name;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (o *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
