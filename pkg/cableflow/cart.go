package cableflow

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

func (c *Client) ListCartItems(ctx context.Context, token string) (*CartView, error) {
	var view CartView
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/cart", token: token}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// AddCartItem persists a line. The server re-prices the quantity and rejects
// a price that does not match its quote.
func (c *Client) AddCartItem(ctx context.Context, token string, input AddCartItemInput) (*CartLine, error) {
	req, err := jsonRequest(http.MethodPost, "/api/cart", token, input)
	if err != nil {
		return nil, &NetworkFailure{Method: http.MethodPost, Path: "/api/cart", Message: "encode cart item", Err: err}
	}
	var line CartLine
	if err := c.do(ctx, req, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

func (c *Client) DeleteCartItem(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/cart/" + id.String(), token: token}, nil)
}

// CartCount returns the badge count.
func (c *Client) CartCount(ctx context.Context, token string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/cart/count", token: token}, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Checkout turns the cart into an order and returns the payment page URL.
func (c *Client) Checkout(ctx context.Context, token string) (*CheckoutResult, error) {
	var result CheckoutResult
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/checkout", token: token}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
