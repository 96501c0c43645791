package cableflow

import (
	"context"
	"net/http"

	"github.com/cableflow/cableflow-backend/pkg/types"
)

// Me returns the caller's profile, creating it on first access.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/users/me", token: token}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateMe(ctx context.Context, token string, input ProfileInput) (*User, error) {
	req, err := jsonRequest(http.MethodPut, "/api/users/me", token, input)
	if err != nil {
		return nil, &NetworkFailure{Method: http.MethodPut, Path: "/api/users/me", Message: "encode profile", Err: err}
	}
	var user User
	if err := c.do(ctx, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers lists team members. Admin only.
func (c *Client) ListUsers(ctx context.Context, token string, opts PageOptions) (*types.Page[User], error) {
	var page types.Page[User]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/users", query: pageQuery(opts), token: token}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Logout revokes the token server-side.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/api/users/logout", token: token}, nil)
}
