package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
)

// AddInput is the body of POST /api/cart. Price is the extended price the
// customer saw.
type AddInput struct {
	CableID  uuid.UUID       `json:"cable_id" validate:"required"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	Price    decimal.Decimal `json:"price"`
}

// LineDTO is a persisted cart line.
type LineDTO struct {
	ID               uuid.UUID       `json:"id"`
	CableID          uuid.UUID       `json:"cable_id"`
	CableCode        string          `json:"cable_code"`
	CableName        string          `json:"cable_name"`
	CableDescription string          `json:"cable_description"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Price            decimal.Decimal `json:"price"`
	LeadTime         string          `json:"lead_time,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// View is the cart as the storefront renders it.
type View struct {
	Items    []LineDTO       `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// LineFromModel maps a stored line to its DTO.
func LineFromModel(item models.CartItem) LineDTO {
	return LineDTO{
		ID:               item.ID,
		CableID:          item.CableID,
		CableCode:        item.CableCode,
		CableName:        item.CableName,
		CableDescription: item.CableDescription,
		Quantity:         item.Quantity,
		UnitPrice:        item.UnitPrice,
		Price:            item.Price,
		LeadTime:         item.LeadTime,
		CreatedAt:        item.CreatedAt,
	}
}

func viewFromModels(items []models.CartItem) *View {
	lines := make([]LineDTO, 0, len(items))
	prices := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		lines = append(lines, LineFromModel(item))
		prices = append(prices, item.Price)
	}
	return &View{
		Items:    lines,
		Subtotal: pricing.Subtotal(prices...),
		Count:    len(lines),
	}
}
