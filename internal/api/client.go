package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// DefaultTimeout bounds every client request.
const DefaultTimeout = 3 * time.Second

// Client talks to a running toastd over its HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for addr, which is either host:port or a full
// http(s) URL.
func NewClient(addr string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// List returns the live entries matching opts.
func (c *Client) List(ctx context.Context, opts ListOptions) ([]model.Entry, error) {
	q := url.Values{}
	setParam(q, "phase", opts.Phase)
	setParam(q, "color", opts.Color)
	setParam(q, "q", opts.Search)
	setParam(q, "filter", opts.Filter)
	setParam(q, "sort", opts.Sort)
	setParam(q, "order", opts.Order)
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/notifications"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var entries []model.Entry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Show creates a notification and returns its id.
func (c *Client) Show(ctx context.Context, req ShowRequest) (string, error) {
	var resp ShowResponse
	if err := c.do(ctx, http.MethodPost, "/notifications", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Fail shows the standard failure notification for reason.
func (c *Client) Fail(ctx context.Context, reason string) (string, error) {
	var resp ShowResponse
	if err := c.do(ctx, http.MethodPost, "/notifications/failure", FailureRequest{Reason: reason}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Clear removes the notification with the given id or unique id prefix.
func (c *Client) Clear(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil)
}

// ClearAll removes every live notification and returns how many there were.
func (c *Client) ClearAll(ctx context.Context) (int, error) {
	var resp ClearAllResponse
	if err := c.do(ctx, http.MethodDelete, "/notifications", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Cleared, nil
}

// InvokeAction runs the action of a notification and dismisses it.
func (c *Client) InvokeAction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/notifications/"+url.PathEscape(id)+"/action", nil, nil)
}

// Status returns the daemon status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, "/status", nil, &st)
	return st, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{Code: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			se.Message = er.Error
		} else {
			se.Message = strings.TrimSpace(string(data))
		}
		return se
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func setParam(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
