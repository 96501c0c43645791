package cableflow

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/types"
)

func (c *Client) ListOrders(ctx context.Context, token string, opts PageOptions) (*types.Page[Order], error) {
	var page types.Page[Order]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/orders", query: pageQuery(opts), token: token}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetOrder(ctx context.Context, token string, id uuid.UUID) (*Order, error) {
	var order Order
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/orders/" + id.String(), token: token}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
