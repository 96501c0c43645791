// Package storefront holds the session-scoped state a storefront keeps for a
// signed-in customer: the cart and the quote selection of the cable being viewed.
package storefront

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cableflow/cableflow-backend/pkg/cableflow"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
)

// ErrNotFound is returned when removing a line the cart does not hold.
var ErrNotFound = errors.New("storefront: cart line not found")

// Gateway is the part of the API client the storefront state uses.
type Gateway interface {
	Me(ctx context.Context, token string) (*cableflow.User, error)
	ListCartItems(ctx context.Context, token string) (*cableflow.CartView, error)
	AddCartItem(ctx context.Context, token string, input cableflow.AddCartItemInput) (*cableflow.CartLine, error)
	DeleteCartItem(ctx context.Context, token string, id uuid.UUID) error
}

// CartOption configures a Cart.
type CartOption func(*Cart)

// WithRecount registers the badge callback, invoked with the line count after
// every change.
func WithRecount(fn func(count int)) CartOption {
	return func(c *Cart) {
		c.recount = fn
	}
}

// Cart mirrors the server cart. Mutations go to the server first and are
// applied locally only once it confirms; a failed call leaves the lines as
// they were.
type Cart struct {
	gateway Gateway
	token   string
	recount func(count int)

	mu    sync.Mutex
	lines []cableflow.CartLine
}

// NewCart builds an empty cart bound to a token.
func NewCart(gateway Gateway, token string, opts ...CartOption) *Cart {
	c := &Cart{gateway: gateway, token: token}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Refresh replaces the local lines with the server's list.
func (c *Cart) Refresh(ctx context.Context) error {
	view, err := c.gateway.ListCartItems(ctx, c.token)
	if err != nil {
		return err
	}
	lines := make([]cableflow.CartLine, len(view.Items))
	copy(lines, view.Items)

	c.mu.Lock()
	c.lines = lines
	count := len(c.lines)
	c.mu.Unlock()
	c.notify(count)
	return nil
}

// AddLine persists a priced line and prepends the server's copy.
func (c *Cart) AddLine(ctx context.Context, cableID uuid.UUID, quantity int, price decimal.Decimal) (*cableflow.CartLine, error) {
	line, err := c.gateway.AddCartItem(ctx, c.token, cableflow.AddCartItemInput{
		CableID:  cableID,
		Quantity: quantity,
		Price:    price,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lines = append([]cableflow.CartLine{*line}, c.lines...)
	count := len(c.lines)
	c.mu.Unlock()
	c.notify(count)
	return line, nil
}

// RemoveLine deletes a line. Unknown ids fail with ErrNotFound without a
// server call.
func (c *Cart) RemoveLine(ctx context.Context, lineID uuid.UUID) error {
	c.mu.Lock()
	present := c.indexOf(lineID) >= 0
	c.mu.Unlock()
	if !present {
		return ErrNotFound
	}

	if err := c.gateway.DeleteCartItem(ctx, c.token, lineID); err != nil {
		return err
	}

	c.mu.Lock()
	if i := c.indexOf(lineID); i >= 0 {
		c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
	}
	count := len(c.lines)
	c.mu.Unlock()
	c.notify(count)
	return nil
}

// Subtotal sums the current line prices.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	prices := make([]decimal.Decimal, 0, len(c.lines))
	for _, line := range c.lines {
		prices = append(prices, line.Price)
	}
	return pricing.Subtotal(prices...)
}

// Lines returns a copy of the lines, most recent first.
func (c *Cart) Lines() []cableflow.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]cableflow.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Count returns the number of lines in the cart.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Clear drops local state only. Used on logout.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
	c.notify(0)
}

func (c *Cart) indexOf(id uuid.UUID) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) notify(count int) {
	if c.recount != nil {
		c.recount(count)
	}
}
