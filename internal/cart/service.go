package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/lifecycle"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
)

// Service exposes the user's cart.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) (*View, error)
	Add(ctx context.Context, userID uuid.UUID, input AddInput) (*LineDTO, error)
	Remove(ctx context.Context, userID, lineID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo   CartRepository
	cables cableLoader
	now    func() time.Time
}

// NewService builds a cart service. now may be nil.
func NewService(repo CartRepository, cables cableLoader, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if cables == nil {
		return nil, fmt.Errorf("cable loader required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, cables: cables, now: now}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (*View, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	return viewFromModels(items), nil
}

// Add prices the quantity against the cable's live quote and persists the
// line with that price locked in.
func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddInput) (*LineDTO, error) {
	if input.CableID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cable_id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	cable, err := s.cables.FindByID(ctx, input.CableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cable not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cable")
	}
	if cable.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cable not found")
	}

	quote := lifecycle.Quote{Status: cable.Status, Expiration: cable.QuoteExpiration, Tiers: cable.QuoteTiers}
	now := s.now()
	if !lifecycle.PricingEnabled(quote, now) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cable has no active quote").
			WithDetails(map[string]any{"status": cable.Status, "expired": lifecycle.IsExpired(quote, now)})
	}
	price, err := lifecycle.Resolve(quote, lifecycle.Selection{CustomQuantity: input.Quantity}, now)
	if err != nil {
		if errors.Is(err, pricing.ErrNotQuotable) {
			return nil, pkgerrors.New(pkgerrors.CodeNotQuotable, fmt.Sprintf("quantity %d is below the smallest quoted tier", input.Quantity))
		}
		return nil, err
	}
	// Locked prices are kept at the column scale.
	extended := price.ExtendedPrice.Round(2)
	if !extended.Equal(input.Price.Round(2)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price mismatch").
			WithDetails(map[string]any{"expected": extended.StringFixed(2), "received": input.Price.StringFixed(2)})
	}

	item := &models.CartItem{
		UserID:           userID,
		CableID:          cable.ID,
		CableCode:        cable.Code,
		CableName:        cable.Name,
		CableDescription: cable.Description,
		Quantity:         input.Quantity,
		UnitPrice:        price.UnitPrice.Round(4),
		Price:            extended,
		LeadTime:         price.Tier.LeadTime,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
	}
	line := LineFromModel(*item)
	return &line, nil
}

func (s *service) Remove(ctx context.Context, userID, lineID uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, userID, lineID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.Count(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cart items")
	}
	return count, nil
}
