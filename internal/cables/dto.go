package cables

import (
	"time"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/lifecycle"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
)

// FileInfo describes an attachment without its bytes.
type FileInfo struct {
	Kind        enums.FileKind `json:"kind"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Modified    bool           `json:"modified"`
	ViewedAt    *time.Time     `json:"viewed_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CableSummary is one row of the cables overview.
type CableSummary struct {
	ID              uuid.UUID         `json:"id"`
	Code            string            `json:"code"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Status          enums.CableStatus `json:"status"`
	ProjectID       *uuid.UUID        `json:"project_id,omitempty"`
	QuoteExpiration *time.Time        `json:"quote_expiration,omitempty"`
	Expired         bool              `json:"expired"`
	HasRevisions    bool              `json:"has_revisions"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CableDetail carries the quote table and attachments.
type CableDetail struct {
	CableSummary
	RequestedQuantities []int               `json:"requested_quantities"`
	DeliveryDate        *time.Time          `json:"delivery_date,omitempty"`
	Notes               string              `json:"notes"`
	QuoteNotes          string              `json:"quote_notes"`
	QuoteTiers          []pricing.QuoteTier `json:"quote_tiers"`
	QuotedAt            *time.Time          `json:"quoted_at,omitempty"`
	PricingEnabled      bool                `json:"pricing_enabled"`
	Files               []FileInfo          `json:"files"`
}

// CreateInput is the metadata part of a quote request.
type CreateInput struct {
	CableName        string     `json:"cable_name" validate:"required,max=200"`
	CableDescription string     `json:"cable_description" validate:"max=4000"`
	Quantities       Quantities `json:"quantities" validate:"required,min=1,dive,gt=0"`
	DeliveryDate     string     `json:"delivery_date,omitempty"`
	Notes            string     `json:"notes" validate:"max=4000"`
	ProjectID        *uuid.UUID `json:"project_id,omitempty"`
}

// QuoteInput is what the quoting team publishes.
type QuoteInput struct {
	Tiers       []pricing.QuoteTier `json:"tiers" validate:"required,min=1"`
	Expiration  *time.Time          `json:"quote_expiration,omitempty"`
	Notes       string              `json:"notes" validate:"max=4000"`
	NeedsReview bool                `json:"needs_review"`
}

// StatusInput requests a manual lifecycle transition.
type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ListFilters narrow the overview.
type ListFilters struct {
	Status *enums.CableStatus
	Query  string
}

// Viewer is the caller a read or delete is performed for. Admins see every cable.
type Viewer struct {
	UserID uuid.UUID
	Admin  bool
}

func quoteOf(c *models.Cable) lifecycle.Quote {
	return lifecycle.Quote{
		Status:     c.Status,
		Expiration: c.QuoteExpiration,
		Tiers:      c.QuoteTiers,
	}
}

func summaryFromModel(c *models.Cable, now time.Time) CableSummary {
	revised := false
	for _, f := range c.Files {
		if f.Modified {
			revised = true
			break
		}
	}
	return CableSummary{
		ID:              c.ID,
		Code:            c.Code,
		Name:            c.Name,
		Description:     c.Description,
		Status:          c.Status,
		ProjectID:       c.ProjectID,
		QuoteExpiration: c.QuoteExpiration,
		Expired:         lifecycle.IsExpired(quoteOf(c), now),
		HasRevisions:    revised,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func detailFromModel(c *models.Cable, now time.Time) *CableDetail {
	tiers := c.QuoteTiers
	if tiers == nil {
		tiers = []pricing.QuoteTier{}
	}
	files := make([]FileInfo, 0, len(c.Files))
	for _, kind := range enums.FileKinds() {
		f := c.File(kind)
		if f == nil {
			continue
		}
		files = append(files, FileInfo{
			Kind:        f.Kind,
			FileName:    f.FileName,
			ContentType: f.ContentType,
			SizeBytes:   f.SizeBytes,
			Modified:    f.Modified,
			ViewedAt:    f.ViewedAt,
			UpdatedAt:   f.UpdatedAt,
		})
	}
	return &CableDetail{
		CableSummary:        summaryFromModel(c, now),
		RequestedQuantities: c.Quantities(),
		DeliveryDate:        c.DeliveryDate,
		Notes:               c.Notes,
		QuoteNotes:          c.QuoteNotes,
		QuoteTiers:          tiers,
		QuotedAt:            c.QuotedAt,
		PricingEnabled:      lifecycle.PricingEnabled(quoteOf(c), now),
		Files:               files,
	}
}
