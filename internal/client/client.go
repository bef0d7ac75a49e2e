// Package client talks to the dashboard backend over HTTP.
//
// The client does not own the admin session: it is handed a *session.Session
// and attaches its token to every request. Login and Logout only perform the
// requests; moving the session between capabilities is left to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dastanaron/bookmarks/internal/models"
	"github.com/dastanaron/bookmarks/internal/session"
)

// Client provides typed access to the dashboard REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Session
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for baseURL (scheme and host, no trailing slash).
// A nil session is replaced by a fresh anonymous one.
func NewClient(baseURL string, sess *session.Session, opts ...Option) *Client {
	if sess == nil {
		sess = session.New("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: sess,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session whose token the client sends
func (c *Client) Session() *session.Session {
	return c.session
}

// doRequest performs an HTTP request with JSON and auth headers
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// decodeResponse turns error statuses into *APIError and decodes the body into target
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return newAPIError(resp.StatusCode, body)
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body, target any) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return decodeResponse(resp, target)
}

// Health checks that the backend is reachable
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, nil)
}

// FetchDataset reads the full projection when full is set, the public one otherwise.
// A full read without a valid session fails with an error matching session.ErrUnauthorized.
func (c *Client) FetchDataset(ctx context.Context, full bool) (models.Dataset, error) {
	path := "/bookmarks"
	if full {
		path += "?" + url.Values{"visibility": {"all"}}.Encode()
	}

	var ds models.Dataset
	if err := c.call(ctx, http.MethodGet, path, nil, &ds); err != nil {
		return models.Dataset{}, err
	}
	return ds, nil
}

// SaveOrder sends the new bookmark order. The response body is ignored.
func (c *Client) SaveOrder(ctx context.Context, payload models.SortPayload) error {
	return c.call(ctx, http.MethodPost, "/sort", payload, nil)
}

// CreateCategory creates a category
func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	var result models.Category
	if err := c.call(ctx, http.MethodPost, "/categories", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateCategory renames a category or changes its visibility
func (c *Client) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	var result models.Category
	if err := c.call(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteCategory deletes a category and its bookmarks
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil)
}

// CreateBookmark creates a bookmark at the end of its category
func (c *Client) CreateBookmark(ctx context.Context, in models.BookmarkInput) (*models.Bookmark, error) {
	var result models.Bookmark
	if err := c.call(ctx, http.MethodPost, "/bookmarks", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateBookmark updates a bookmark
func (c *Client) UpdateBookmark(ctx context.Context, id string, in models.BookmarkInput) (*models.Bookmark, error) {
	var result models.Bookmark
	if err := c.call(ctx, http.MethodPut, "/bookmarks/"+url.PathEscape(id), in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteBookmark deletes a bookmark
func (c *Client) DeleteBookmark(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/bookmarks/"+url.PathEscape(id), nil, nil)
}
