package cableflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

// ListCables returns the caller's cable overviews.
func (c *Client) ListCables(ctx context.Context, token string, filters CableFilters) (*types.Page[Cable], error) {
	q := pageQuery(filters.PageOptions)
	if filters.Status != "" {
		q.Set("status", string(filters.Status))
	}
	if filters.Query != "" {
		q.Set("q", filters.Query)
	}
	var page types.Page[Cable]
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/cables", query: q, token: token}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetCable(ctx context.Context, token string, id uuid.UUID) (*Cable, error) {
	var cable Cable
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/cables/" + id.String(), token: token}, &cable); err != nil {
		return nil, err
	}
	return &cable, nil
}

// CreateCable submits a quote request as one multipart call: a "metadata"
// JSON part plus one part per file, named by its kind.
func (c *Client) CreateCable(ctx context.Context, token string, input CreateCableInput) (*Cable, error) {
	body, contentType, err := encodeQuoteRequest(input)
	if err != nil {
		return nil, &NetworkFailure{Method: http.MethodPost, Path: "/api/cables", Message: "encode quote request", Err: err}
	}
	var cable Cable
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/cables",
		token:       token,
		body:        body,
		contentType: contentType,
	}, &cable)
	if err != nil {
		return nil, err
	}
	return &cable, nil
}

func (c *Client) DeleteCable(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/api/cables/" + id.String(), token: token}, nil)
}

// RequoteCable asks for a fresh quote on an expired cable.
func (c *Client) RequoteCable(ctx context.Context, token string, id uuid.UUID) (*Cable, error) {
	var cable Cable
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/cables/" + id.String() + "/requote", token: token}, &cable); err != nil {
		return nil, err
	}
	return &cable, nil
}

// GetCableFile downloads an attachment for preview.
func (c *Client) GetCableFile(ctx context.Context, token string, id uuid.UUID, kind enums.FileKind) (*FilePayload, error) {
	var payload FilePayload
	p := fmt.Sprintf("/api/cables/%s/files/%s", id, kind)
	if err := c.do(ctx, request{method: http.MethodGet, path: p, token: token}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func encodeQuoteRequest(input CreateCableInput) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="metadata"`)
	header.Set("Content-Type", "application/json")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(part).Encode(input.Metadata); err != nil {
		return nil, "", err
	}

	for _, f := range input.Files {
		if !f.Kind.IsValid() {
			return nil, "", fmt.Errorf("unknown file kind %q", f.Kind)
		}
		fw, err := w.CreateFormFile(string(f.Kind), path.Base(f.FileName))
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write(f.Body); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
