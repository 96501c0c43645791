package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
)

// ItemDTO is one line of an order.
type ItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	CableID   uuid.UUID       `json:"cable_id"`
	CableCode string          `json:"cable_code"`
	CableName string          `json:"cable_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Price     decimal.Decimal `json:"price"`
}

// OrderDTO is the read model served by /api/orders.
type OrderDTO struct {
	ID         uuid.UUID       `json:"id"`
	ExtendedID string          `json:"extended_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	LeadTime   string          `json:"lead_time"`
	Items      []ItemDTO       `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
}

// FromModel maps a stored order to its DTO.
func FromModel(o *models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemDTO{
			ID:        it.ID,
			CableID:   it.CableID,
			CableCode: it.CableCode,
			CableName: it.CableName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Price:     it.Price,
		})
	}
	return OrderDTO{
		ID:         o.ID,
		ExtendedID: o.ExtendedID,
		TotalPrice: o.TotalPrice,
		LeadTime:   o.LeadTime,
		Items:      items,
		CreatedAt:  o.CreatedAt,
	}
}
