// Package registry is the HTTP client for the form registry: health, list,
// get, create, update and delete of stored YAML forms keyed by name.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidName reports whether name is an acceptable registry key.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Form is a stored form record. Timestamps are passed through as sent.
type Form struct {
	ID          string `json:"_id,omitempty"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	YAMLContent string `json:"yamlContent"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// FormInput is the create/update body.
type FormInput struct {
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	YAMLContent string `json:"yamlContent,omitempty"`
}

// Health mirrors GET /api/health.
type Health struct {
	Status    string `json:"status"`
	MongoDB   string `json:"mongodb"`
	Store     string `json:"store,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Healthy reports whether the registry considers itself healthy.
func (h Health) Healthy() bool {
	return h.Status == "healthy"
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client talks to the registry endpoints under <base>/api.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New constructs a client for the backend at baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    http.DefaultClient,
		timeout: 15 * time.Second,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Health reports backend and store status. An unhealthy backend answers 500
// with a body; that body is still decoded and returned alongside the error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, "health", http.MethodGet, "/api/health", nil, &out)
	return out, err
}

// List returns every stored form.
func (c *Client) List(ctx context.Context) ([]Form, error) {
	var out []Form
	if err := c.do(ctx, "list", http.MethodGet, "/api/forms", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one form by name.
func (c *Client) Get(ctx context.Context, name string) (*Form, error) {
	var out Form
	if err := c.do(ctx, "get", http.MethodGet, formPath(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchYAML returns the stored YAML text for name.
func (c *Client) FetchYAML(ctx context.Context, name string) (string, error) {
	form, err := c.Get(ctx, name)
	if err != nil {
		return "", err
	}
	return form.YAMLContent, nil
}

// Create stores a new form. The name is validated locally first.
func (c *Client) Create(ctx context.Context, input FormInput) (*Form, error) {
	if !ValidName(input.Name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, input.Name)
	}
	var out Form
	if err := c.do(ctx, "create", http.MethodPost, "/api/forms", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the YAML and title of an existing form.
func (c *Client) Update(ctx context.Context, name string, input FormInput) (*Form, error) {
	var out Form
	if err := c.do(ctx, "update", http.MethodPut, formPath(name), input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a form.
func (c *Client) Delete(ctx context.Context, name string) error {
	return c.do(ctx, "delete", http.MethodDelete, formPath(name), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("registry: %s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("registry: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out != nil {
			_ = json.Unmarshal(raw, out)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("registry: %s: decode response: %w", op, err)
	}
	return nil
}

func formPath(name string) string {
	return "/api/forms/" + url.PathEscape(name)
}

func errorMessage(raw []byte, status string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return status
}
