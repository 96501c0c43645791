// Package lifecycle gates what may happen to a cable quote in each status.
//
// The backend drives every transition; clients only read the status and use
// PricingEnabled / CanAddToCart to decide which actions to offer.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
)

var transitions = map[enums.CableStatus][]enums.CableStatus{
	enums.CableStatusStarted:        {enums.CableStatusQuoteRequested},
	enums.CableStatusQuoteRequested: {enums.CableStatusQuoteReady, enums.CableStatusNeedsReview},
	enums.CableStatusNeedsReview:    {enums.CableStatusQuoteReady, enums.CableStatusQuoteRequested},
	enums.CableStatusQuoteReady:     {enums.CableStatusQuoteExpired, enums.CableStatusNeedsReview},
	enums.CableStatusQuoteExpired:   {enums.CableStatusQuoteRequested},
}

// Quote is the slice of a cable the gates look at.
type Quote struct {
	Status     enums.CableStatus
	Expiration *time.Time
	Tiers      []pricing.QuoteTier
}

// Selection is what the customer picked in the quote table: a tier column or
// a custom quantity. A nil Tier and zero CustomQuantity means nothing.
type Selection struct {
	Tier           *int
	CustomQuantity int
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to enums.CableStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next lists the statuses reachable from the given one.
func Next(from enums.CableStatus) []enums.CableStatus {
	out := make([]enums.CableStatus, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// Transition validates the edge and returns a state conflict when it is not allowed.
func Transition(from, to enums.CableStatus) error {
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown cable status %q", to))
	}
	if !CanTransition(from, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move cable from %s to %s", from, to)).
			WithDetails(map[string]any{"from": from, "to": to, "allowed": Next(from)})
	}
	return nil
}

// IsExpired is true for expired quotes and for ready quotes past their
// expiration the cron job has not swept yet.
func IsExpired(q Quote, now time.Time) bool {
	if q.Status == enums.CableStatusQuoteExpired {
		return true
	}
	return q.Status == enums.CableStatusQuoteReady && q.Expiration != nil && !now.Before(*q.Expiration)
}

// PricingEnabled reports whether the quote table may be used to price.
func PricingEnabled(q Quote, now time.Time) bool {
	return q.Status == enums.CableStatusQuoteReady && !IsExpired(q, now) && len(q.Tiers) > 0
}

// Resolve prices the selection against the quote.
func Resolve(q Quote, sel Selection, now time.Time) (pricing.Price, error) {
	if !PricingEnabled(q, now) {
		return pricing.Price{}, pricing.ErrNotQuotable
	}
	if sel.Tier != nil {
		i := *sel.Tier
		if i < 0 || i >= len(q.Tiers) {
			return pricing.Price{}, pricing.ErrNotQuotable
		}
		return pricing.Resolve(q.Tiers[i].Quantity, q.Tiers)
	}
	return pricing.Resolve(sel.CustomQuantity, q.Tiers)
}

// CanAddToCart requires pricing to be enabled and the selection to price.
func CanAddToCart(q Quote, sel Selection, now time.Time) bool {
	_, err := Resolve(q, sel, now)
	return err == nil
}
