// Package cableflow is a typed client for the CableFlow REST API.
//
// Every call takes the caller's bearer token. Failures of any kind come back as
// *NetworkFailure and nothing is retried.
package cableflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultUserAgent       = "cableflow-go"
	errorBodyLimit   int64 = 64 << 10
)

var errBaseURLRequired = errors.New("cableflow base url is required")

// Client calls the backend API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout. A client passed to WithHTTPClient
// is copied, never modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			cp := *c.httpClient
			cp.Timeout = timeout
			c.httpClient = &cp
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(ua); trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// New builds a client for the API rooted at baseURL, e.g. https://api.cableflow.com.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    trimmed,
		userAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path, token string, payload any) (request, error) {
	req := request{method: method, path: path, token: token}
	if payload == nil {
		return req, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return request{}, fmt.Errorf("marshal %s %s: %w", method, path, err)
	}
	req.body = bytes.NewReader(raw)
	req.contentType = "application/json"
	return req, nil
}

// do executes the request and decodes the data envelope into out, which may be nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	endpoint := c.baseURL + "/" + strings.TrimLeft(r.path, "/")
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, r.method, endpoint, r.body)
	if err != nil {
		return &NetworkFailure{Method: r.method, Path: r.path, Message: "build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &NetworkFailure{Method: r.method, Path: r.path, Message: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFromResponse(r, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &NetworkFailure{Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &NetworkFailure{Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Message: "decode response data", Err: err}
	}
	return nil
}

func failureFromResponse(r request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	failure := &NetworkFailure{Method: r.method, Path: r.path, StatusCode: resp.StatusCode}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details any    `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		failure.Code = envelope.Error.Code
		failure.Message = envelope.Error.Message
		failure.Details = envelope.Error.Details
		return failure
	}
	failure.Message = strings.TrimSpace(string(raw))
	if failure.Message == "" {
		failure.Message = http.StatusText(resp.StatusCode)
	}
	return failure
}

func pageQuery(opts PageOptions) url.Values {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprint(opts.Limit))
	}
	if opts.Cursor != "" {
		q.Set("cursor", opts.Cursor)
	}
	return q
}
