// Package client talks to the userdesk HTTP API and keeps list query state
// for interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"userdesk/pkg/domain"
)

// TotalCountHeader carries the filtered total on list responses.
const TotalCountHeader = "X-Total-Count"

const usersPath = "/api/users"

// Violation is one field error returned with a 400 reply.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx reply.
type APIError struct {
	Status  int
	Message string
	Details []Violation
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("userdesk: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("userdesk: %d %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 reply.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Params are the list query parameters. Zero values are omitted.
type Params struct {
	Page     int
	Limit    int
	Sort     string
	Order    string
	Q        string
	Role     string
	IsActive string
}

// Values encodes p. Order is only sent together with Sort.
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("_page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("_limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		v.Set("_sort", p.Sort)
		if p.Order != "" {
			v.Set("_order", p.Order)
		}
	}
	if p.Q != "" {
		v.Set("q", p.Q)
	}
	if p.Role != "" {
		v.Set("role", p.Role)
	}
	if p.IsActive != "" {
		v.Set("isActive", p.IsActive)
	}
	return v
}

// ListResult is one page plus the filtered total.
type ListResult struct {
	Users []domain.User
	Total int
}

// Client is safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 15s-timeout client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New returns a client for the API rooted at baseURL, e.g. http://localhost:4000.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches one page. The total is read from the X-Total-Count header
// only; a missing or malformed header is an error.
func (c *Client) List(ctx context.Context, p Params) (ListResult, error) {
	var users []domain.User
	resp, err := c.do(ctx, http.MethodGet, usersPath, p.Values(), nil, &users)
	if err != nil {
		return ListResult{}, err
	}
	raw := resp.Header.Get(TotalCountHeader)
	if raw == "" {
		return ListResult{}, fmt.Errorf("list users: missing %s header", TotalCountHeader)
	}
	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		return ListResult{}, fmt.Errorf("list users: invalid %s header %q", TotalCountHeader, raw)
	}
	if users == nil {
		users = []domain.User{}
	}
	return ListResult{Users: users, Total: total}, nil
}

func (c *Client) Get(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	_, err := c.do(ctx, http.MethodGet, userPath(id), nil, nil, &u)
	return u, err
}

// Create posts a full creation payload.
func (c *Client) Create(ctx context.Context, payload map[string]any) (domain.User, error) {
	var u domain.User
	_, err := c.do(ctx, http.MethodPost, usersPath, nil, payload, &u)
	return u, err
}

// Update sends a partial payload; nested objects are merged server side.
func (c *Client) Update(ctx context.Context, id string, patch map[string]any) (domain.User, error) {
	var u domain.User
	_, err := c.do(ctx, http.MethodPatch, userPath(id), nil, patch, &u)
	return u, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, userPath(id), nil, nil, nil)
	return err
}

func userPath(id string) string {
	return usersPath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*http.Response, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string      `json:"message"`
			Details []Violation `json:"details"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.Details = payload.Details
		}
		return nil, apiErr
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}
