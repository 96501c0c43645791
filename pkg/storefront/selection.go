package storefront

import (
	"context"
	"time"

	"github.com/cableflow/cableflow-backend/pkg/cableflow"
	"github.com/cableflow/cableflow-backend/pkg/lifecycle"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
)

// QuoteSelection tracks what the customer picked in a cable's quote table:
// one tier column or a custom quantity, never both.
type QuoteSelection struct {
	cable  cableflow.Cable
	tier   *int
	custom int
}

// NewQuoteSelection starts with nothing picked.
func NewQuoteSelection(cable cableflow.Cable) *QuoteSelection {
	return &QuoteSelection{cable: cable}
}

// SelectTier picks tier i. Picking the selected tier again clears it.
func (q *QuoteSelection) SelectTier(i int) {
	if q.tier != nil && *q.tier == i {
		q.tier = nil
		return
	}
	q.tier = &i
	q.custom = 0
}

// SelectCustomQuantity prices an arbitrary quantity; q <= 0 clears it.
func (q *QuoteSelection) SelectCustomQuantity(quantity int) {
	q.tier = nil
	if quantity < 0 {
		quantity = 0
	}
	q.custom = quantity
}

// Selection returns the current pick.
func (q *QuoteSelection) Selection() lifecycle.Selection {
	sel := lifecycle.Selection{CustomQuantity: q.custom}
	if q.tier != nil {
		i := *q.tier
		sel.Tier = &i
	}
	return sel
}

// Price resolves the pick against the cable's quote.
func (q *QuoteSelection) Price(now time.Time) (pricing.Price, error) {
	return lifecycle.Resolve(q.cable.Quote(), q.Selection(), now)
}

// CanAddToCart reports whether the pick prices against a live quote.
func (q *QuoteSelection) CanAddToCart(now time.Time) bool {
	return lifecycle.CanAddToCart(q.cable.Quote(), q.Selection(), now)
}

// AddToCart prices the pick and adds it to cart.
func (q *QuoteSelection) AddToCart(ctx context.Context, cart *Cart, now time.Time) (*cableflow.CartLine, error) {
	price, err := q.Price(now)
	if err != nil {
		return nil, err
	}
	return cart.AddLine(ctx, q.cable.ID, price.Quantity, price.ExtendedPrice)
}
