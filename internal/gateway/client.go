// Package gateway is the generic CRUD client for the scheduling backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adamanr/shift_console/internal/apperr"
)

type Resource string

const (
	Users          Resource = "users"
	Departments    Resource = "departments"
	SubDepartments Resource = "subdepartments"
	Positions      Resource = "positions"
	Levels         Resource = "levels"
	Locations      Resource = "locations"
	Shifts         Resource = "shifts"
	Schedules      Resource = "schedules"
	SwapRequests   Resource = "swapRequests"
)

// Response is the backend envelope. Data holds a list for List calls and a
// single record otherwise.
type Response[T any] struct {
	Message       string `json:"message,omitempty"`
	Data          T      `json:"data"`
	Total         int    `json:"total,omitempty"`
	TotalFiltered int    `json:"totalFiltered,omitempty"`
	Page          int    `json:"page,omitempty"`
	Limit         int    `json:"limit,omitempty"`

	// Cookies set by the backend on this response.
	Cookies []*http.Cookie `json:"-"`
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
	metrics *Metrics
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *Metrics) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}

	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: metrics,
	}, nil
}

type cookiesKey struct{}

// WithCookies attaches the backend session cookies sent with every request
// made under ctx.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookiesKey{}, cookies)
}

func CookiesFrom(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(cookiesKey{}).([]*http.Cookie)
	return cookies
}

func (c *Client) endpoint(path string, query Query) (string, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")

	values, err := query.Encode()
	if err != nil {
		return "", err
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// Call sends one request and decodes the envelope into Response[T].
func Call[T any](ctx context.Context, c *Client, method, path string, query Query, body any) (*Response[T], error) {
	target, err := c.endpoint(path, query)
	if err != nil {
		return nil, &apperr.APIError{Kind: apperr.KindValidation, Message: err.Error()}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range CookiesFrom(ctx) {
		req.AddCookie(cookie)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(path, method, 0, time.Since(start))
		c.logger.Error("Backend request failed", slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return nil, apperr.Network(err)
	}
	defer resp.Body.Close()
	c.metrics.observe(path, method, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Network(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apperr.FromBody(resp.StatusCode, raw)
		c.logger.Warn("Backend rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message))
		return nil, apiErr
	}

	out := &Response[T]{Cookies: resp.Cookies()}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return out, nil
}

func List[T any](ctx context.Context, c *Client, res Resource, query Query) (*Response[[]T], error) {
	return Call[[]T](ctx, c, http.MethodGet, string(res), query, nil)
}

func Get[T any](ctx context.Context, c *Client, res Resource, id string) (T, error) {
	var zero T
	resp, err := Call[T](ctx, c, http.MethodGet, itemPath(res, id), nil, nil)
	if err != nil {
		return zero, err
	}
	return resp.Data, nil
}

func Create[T any](ctx context.Context, c *Client, res Resource, body any) (*Response[T], error) {
	return Call[T](ctx, c, http.MethodPost, string(res), nil, body)
}

// Update sends a partial update; the backend only touches the fields present.
func Update[T any](ctx context.Context, c *Client, res Resource, id string, body any) (*Response[T], error) {
	return Call[T](ctx, c, http.MethodPatch, itemPath(res, id), nil, body)
}

func Delete(ctx context.Context, c *Client, res Resource, id string) (*Response[json.RawMessage], error) {
	return Call[json.RawMessage](ctx, c, http.MethodDelete, itemPath(res, id), nil, nil)
}

func itemPath(res Resource, id string) string {
	return string(res) + "/" + url.PathEscape(id)
}
