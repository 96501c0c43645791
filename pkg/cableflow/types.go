package cableflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/lifecycle"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

// PageOptions selects a page of a cursor-paginated list.
type PageOptions struct {
	Limit  int
	Cursor string
}

// FileInfo describes one of a cable's attachments.
type FileInfo struct {
	Kind        enums.FileKind `json:"kind"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Modified    bool           `json:"modified"`
	ViewedAt    *time.Time     `json:"viewed_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Cable is the client's projection of a cable. List responses leave the
// detail-only fields empty.
type Cable struct {
	ID                  uuid.UUID           `json:"id"`
	Code                string              `json:"code"`
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	Status              enums.CableStatus   `json:"status"`
	ProjectID           *uuid.UUID          `json:"project_id,omitempty"`
	QuoteExpiration     *time.Time          `json:"quote_expiration,omitempty"`
	Expired             bool                `json:"expired"`
	HasRevisions        bool                `json:"has_revisions"`
	RequestedQuantities []int               `json:"requested_quantities,omitempty"`
	DeliveryDate        *time.Time          `json:"delivery_date,omitempty"`
	Notes               string              `json:"notes,omitempty"`
	QuoteNotes          string              `json:"quote_notes,omitempty"`
	QuoteTiers          []pricing.QuoteTier `json:"quote_tiers,omitempty"`
	QuotedAt            *time.Time          `json:"quoted_at,omitempty"`
	PricingEnabled      bool                `json:"pricing_enabled"`
	Files               []FileInfo          `json:"files,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// Quote returns the part of the cable the lifecycle gates read.
func (c Cable) Quote() lifecycle.Quote {
	return lifecycle.Quote{Status: c.Status, Expiration: c.QuoteExpiration, Tiers: c.QuoteTiers}
}

// CableFilters narrow ListCables.
type CableFilters struct {
	PageOptions
	Status enums.CableStatus
	Query  string
}

// CableMetadata is the JSON part of a quote request.
type CableMetadata struct {
	CableName        string     `json:"cable_name"`
	CableDescription string     `json:"cable_description,omitempty"`
	Quantities       []int      `json:"quantities"`
	DeliveryDate     string     `json:"delivery_date,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	ProjectID        *uuid.UUID `json:"project_id,omitempty"`
}

// FileUpload is one file part of a quote request.
type FileUpload struct {
	Kind     enums.FileKind
	FileName string
	Body     []byte
}

// CreateCableInput is a complete quote request. A drawing is required by the API.
type CreateCableInput struct {
	Metadata CableMetadata
	Files    []FileUpload
}

// FilePayload is a downloaded attachment; Data is base64.
type FilePayload struct {
	Kind        enums.FileKind `json:"kind"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Data        string         `json:"data"`
}

// CartLine is a persisted, price-locked cart line.
type CartLine struct {
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

// CartView is GET /api/cart.
type CartView struct {
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Count    int             `json:"count"`
}

// AddCartItemInput is the body of POST /api/cart.
type AddCartItemInput struct {
	CableID  uuid.UUID       `json:"cable_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	CableID   uuid.UUID       `json:"cable_id"`
	CableCode string          `json:"cable_code"`
	CableName string          `json:"cable_name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Price     decimal.Decimal `json:"price"`
}

// Order is a read-only order.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	ExtendedID string          `json:"extended_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	LeadTime   string          `json:"lead_time"`
	Items      []OrderItem     `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CheckoutResult carries the created order and the hosted payment page.
type CheckoutResult struct {
	Order       Order  `json:"order"`
	CheckoutURL string `json:"checkout_url"`
}

// Project groups cables.
type Project struct {
	ID          uuid.UUID               `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Attributes  types.ProjectAttributes `json:"attributes"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// ProjectInput is the create/update body.
type ProjectInput struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Attributes  types.ProjectAttributes `json:"attributes"`
}

// User is a team member.
type User struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ProfileInput is the body of PUT /api/users/me.
type ProfileInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
