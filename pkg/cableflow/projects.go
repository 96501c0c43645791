package cableflow

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/types"
)

func (c *Client) ListProjects(ctx context.Context, token string, opts PageOptions) (*types.Page[Project], error) {
	var page types.Page[Project]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/projects", query: pageQuery(opts), token: token}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateProject(ctx context.Context, token string, input ProjectInput) (*Project, error) {
	return c.writeProject(ctx, http.MethodPost, "/api/projects", token, input)
}

func (c *Client) UpdateProject(ctx context.Context, token string, id uuid.UUID, input ProjectInput) (*Project, error) {
	return c.writeProject(ctx, http.MethodPut, "/api/projects/"+id.String(), token, input)
}

func (c *Client) DeleteProject(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/projects/" + id.String(), token: token}, nil)
}

func (c *Client) writeProject(ctx context.Context, method, path, token string, input ProjectInput) (*Project, error) {
	req, err := jsonRequest(method, path, token, input)
	if err != nil {
		return nil, &NetworkFailure{Method: method, Path: path, Message: "encode project", Err: err}
	}
	var project Project
	if err := c.do(ctx, req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
