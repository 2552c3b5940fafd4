// Package backend talks to the REST service that owns every business entity.
package backend

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

	"orderdesk/internal/domain"
	"orderdesk/internal/logx"
)

type Resource string

const (
	Agents     Resource = "agents"
	Orders     Resource = "orders"
	Products   Resource = "products"
	Overrides  Resource = "product-overrides"
	Brands     Resource = "brands"
	Categories Resource = "categories"
	Customers  Resource = "customers"
)

const (
	// AllPageSize is the page size used when walking a whole collection.
	AllPageSize = 200
	maxPages    = 1000
	maxErrBody  = 64 << 10
)

// TokenSource supplies the bearer token of the current session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token, used by command line tools.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrUnauthorized
	}
	return string(s), nil
}

// Mutation tells the caller which collection a write invalidated.
type Mutation struct {
	Resource Resource
	Refetch  bool
}

type ListParams struct {
	Page          int
	Size          int
	SortBy        string
	SortDirection string
	Filters       map[string]string
}

// Page is one page of a collection as served by the backend.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}, nil
}

// WithTokens returns a client sharing the connection pool but reading
// tokens from ts.
func (c *Client) WithTokens(ts TokenSource) *Client {
	clone := *c
	clone.tokens = ts
	return &clone
}

// List fetches one page of resource.
func List[T any](ctx context.Context, c *Client, res Resource, p ListParams) (Page[T], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortDirection != "" {
		q.Set("sortDirection", p.SortDirection)
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/"+string(res), q, nil, &raw); err != nil {
		return Page[T]{}, err
	}
	return decodePage[T](raw)
}

// decodePage also accepts a bare JSON array for unpaged endpoints.
func decodePage[T any](raw json.RawMessage) (Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Page[T]{Content: []T{}}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decode list: %w", err)
		}
		total := 0
		if len(items) > 0 {
			total = 1
		}
		return Page[T]{Content: items, TotalPages: total, TotalElements: len(items)}, nil
	}
	var page Page[T]
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return Page[T]{}, fmt.Errorf("decode page: %w", err)
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return page, nil
}

// ListAll walks every page of resource.
func ListAll[T any](ctx context.Context, c *Client, res Resource, filters map[string]string) ([]T, error) {
	out := []T{}
	for page := 0; page < maxPages; page++ {
		p, err := List[T](ctx, c, res, ListParams{Page: page, Size: AllPageSize, Filters: filters})
		if err != nil {
			return nil, err
		}
		out = append(out, p.Content...)
		if len(p.Content) == 0 || page+1 >= p.TotalPages {
			return out, nil
		}
	}
	return nil, fmt.Errorf("list %s: more than %d pages", res, maxPages)
}

func Create[T any](ctx context.Context, c *Client, res Resource, body any) (T, Mutation, error) {
	var out T
	if err := c.do(ctx, http.MethodPost, "/"+string(res), nil, body, &out); err != nil {
		return out, Mutation{}, err
	}
	return out, Mutation{Resource: res, Refetch: true}, nil
}

func Update[T any](ctx context.Context, c *Client, res Resource, id domain.ID, body any) (T, Mutation, error) {
	var out T
	if id.IsZero() {
		return out, Mutation{}, fmt.Errorf("update %s: %w: empty id", res, domain.ErrValidation)
	}
	if err := c.do(ctx, http.MethodPut, itemPath(res, id), nil, body, &out); err != nil {
		return out, Mutation{}, err
	}
	return out, Mutation{Resource: res, Refetch: true}, nil
}

func Delete(ctx context.Context, c *Client, res Resource, id domain.ID) (Mutation, error) {
	if id.IsZero() {
		return Mutation{}, fmt.Errorf("delete %s: %w: empty id", res, domain.ErrValidation)
	}
	if err := c.do(ctx, http.MethodDelete, itemPath(res, id), nil, nil, nil); err != nil {
		return Mutation{}, err
	}
	return Mutation{Resource: res, Refetch: true}, nil
}

func itemPath(res Resource, id domain.ID) string {
	return "/" + string(res) + "/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.tokens == nil {
		return ErrUnauthorized
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("auth token: %w", err)
	}
	if token == "" {
		return ErrUnauthorized
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logx.Error().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logx.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Method: method, Path: path}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
