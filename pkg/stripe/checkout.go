package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
)

// CheckoutLine is one priced cart line handed to the payment session.
type CheckoutLine struct {
	Name        string
	Description string
	Quantity    int
	Price       decimal.Decimal
}

// CheckoutRequest describes the hosted payment page for an order.
type CheckoutRequest struct {
	OrderID    string
	OrderCode  string
	CustomerID string
	Email      string
	Lines      []CheckoutLine
}

// CheckoutSession is the subset of the Stripe session the API returns.
type CheckoutSession struct {
	ID  string
	URL string
}

var errNoLines = errors.New("checkout requires at least one line")

// CreateCheckoutSession opens a payment-mode session. Each line is sent with
// quantity 1 and its locked extended price so Stripe charges the exact cart
// total.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params, err := c.checkoutParams(req)
	if err != nil {
		return nil, err
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (c *Client) checkoutParams(req CheckoutRequest) (*stripe.CheckoutSessionParams, error) {
	if len(req.Lines) == 0 {
		return nil, errNoLines
	}
	currency := strings.ToLower(strings.TrimSpace(c.cfg.Currency))
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(c.cfg.SuccessURL),
		CancelURL:         stripe.String(c.cfg.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.AddMetadata("order_id", req.OrderID)
	params.AddMetadata("order_code", req.OrderCode)
	params.AddMetadata("customer_id", req.CustomerID)

	for _, line := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
		}
		desc := fmt.Sprintf("Quantity %d", line.Quantity)
		if d := strings.TrimSpace(line.Description); d != "" {
			desc = fmt.Sprintf("%s (quantity %d)", d, line.Quantity)
		}
		product.Description = stripe.String(desc)

		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(ToMinorUnits(line.Price)),
				ProductData: product,
			},
			Quantity: stripe.Int64(1),
		})
	}
	return params, nil
}

// ToMinorUnits converts a decimal amount to cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
