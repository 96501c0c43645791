// Package pricing maps a requested quantity onto a stepped quote tier table.
//
// Pricing is a floor function over tier breakpoints: a quantity is priced at the
// unit price of the last tier whose quantity is at or below it, and quantities
// beyond the top tier keep the top tier's unit price.
package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrNotQuotable is returned when no tier covers the requested quantity.
var ErrNotQuotable = errors.New("pricing: quantity not quotable")

// QuoteTier is one (quantity, price) breakpoint of a cable quote.
type QuoteTier struct {
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	PartsPrice    decimal.Decimal `json:"parts_price"`
	LaborPrice    decimal.Decimal `json:"labor_price"`
	ExtendedPrice decimal.Decimal `json:"extended_price"`
	LeadTime      string          `json:"lead_time"`
}

// Price is the result of resolving a quantity against a tier table.
type Price struct {
	Tier          QuoteTier       `json:"tier"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ExtendedPrice decimal.Decimal `json:"extended_price"`
	// ExactTier is set when the quantity sits exactly on a breakpoint.
	ExactTier bool `json:"exact_tier"`
}

// Resolve prices requestedQuantity using tiers. The slice is not modified.
func Resolve(requestedQuantity int, tiers []QuoteTier) (Price, error) {
	if requestedQuantity < 1 || len(tiers) == 0 {
		return Price{}, ErrNotQuotable
	}

	sorted := sortedCopy(tiers)
	if requestedQuantity < sorted[0].Quantity {
		return Price{}, ErrNotQuotable
	}

	applicable := sorted[0]
	for _, tier := range sorted {
		if tier.Quantity > requestedQuantity {
			break
		}
		applicable = tier
	}

	price := Price{
		Tier:      applicable,
		Quantity:  requestedQuantity,
		UnitPrice: applicable.UnitPrice,
	}
	if applicable.Quantity == requestedQuantity {
		// Backend-quoted figure is used verbatim on a breakpoint.
		price.ExactTier = true
		price.ExtendedPrice = applicable.ExtendedPrice
		return price, nil
	}
	price.ExtendedPrice = applicable.UnitPrice.Mul(decimal.NewFromInt(int64(requestedQuantity)))
	return price, nil
}

// ValidateTiers checks that quantities are positive and strictly increasing
// and that no price is negative.
func ValidateTiers(tiers []QuoteTier) error {
	if len(tiers) == 0 {
		return errors.New("at least one tier is required")
	}
	prev := 0
	for i, tier := range tiers {
		if tier.Quantity < 1 {
			return fmt.Errorf("tier %d: quantity must be positive", i)
		}
		if tier.Quantity <= prev {
			return fmt.Errorf("tier %d: quantities must be strictly increasing", i)
		}
		prev = tier.Quantity
		for name, value := range map[string]decimal.Decimal{
			"unit_price":     tier.UnitPrice,
			"parts_price":    tier.PartsPrice,
			"labor_price":    tier.LaborPrice,
			"extended_price": tier.ExtendedPrice,
		} {
			if value.IsNegative() {
				return fmt.Errorf("tier %d: %s must not be negative", i, name)
			}
		}
	}
	return nil
}

// Subtotal sums line prices.
func Subtotal(prices ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p)
	}
	return total
}

func sortedCopy(tiers []QuoteTier) []QuoteTier {
	out := make([]QuoteTier, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Quantity < out[j].Quantity
	})
	return out
}
