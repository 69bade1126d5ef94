// Package dispatch sends assembled payloads to the dispatch endpoint of the
// form backend (POST /api/github/dispatch). The client enforces the local
// guards: a configured repository, a token, no unsupported fields and at most
// one dispatch in flight.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/payload"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

const (
	// Path is the dispatch endpoint relative to the backend base URL.
	Path = "/api/github/dispatch"

	maxResponseBytes = 1 << 20
)

// Result is the backend's success response plus the payload that was sent.
type Result struct {
	Message    string                  `json:"message"`
	EventType  string                  `json:"event_type"`
	Repository string                  `json:"repository"`
	Timestamp  string                  `json:"timestamp"`
	Payload    payload.DispatchPayload `json:"-"`
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

// WithAssembler overrides the payload assembler (for a fixed clock).
func WithAssembler(assembler *payload.Assembler) Option {
	return func(c *Client) {
		if assembler != nil {
			c.assembler = assembler
		}
	}
}

// WithTimeout bounds each dispatch request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client posts dispatch requests. It never stores the token.
type Client struct {
	baseURL   string
	http      *http.Client
	assembler *payload.Assembler
	timeout   time.Duration
	inFlight  atomic.Bool
}

// New constructs a client for the backend at baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:      http.DefaultClient,
		assembler: payload.NewAssembler(nil),
		timeout:   30 * time.Second,
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Dispatch checks the local guards, assembles the payload and sends it.
func (c *Client) Dispatch(ctx context.Context, form *schema.FormSchema, values *model.FormValues, token string) (*Result, error) {
	if err := CheckDispatchable(form); err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	return c.Send(ctx, c.assembler.Assemble(form, values), form.GitHub.Repository, token)
}

// CheckDispatchable reports the schema-level reasons a form cannot be sent.
func CheckDispatchable(form *schema.FormSchema) error {
	if form == nil {
		return ErrNoSchema
	}
	if strings.TrimSpace(form.GitHub.Repository) == "" {
		return ErrMissingRepository
	}
	if unsupported := form.UnsupportedFields(); len(unsupported) > 0 {
		names := make([]string, 0, len(unsupported))
		for _, field := range unsupported {
			names = append(names, field.Name)
		}
		return fmt.Errorf("%w: %s", ErrUnsupportedFields, strings.Join(names, ", "))
	}
	return nil
}

// Send posts an already assembled payload. Only one Send runs at a time per
// client; concurrent callers get ErrDispatchInFlight. Nothing is retried.
func (c *Client) Send(ctx context.Context, p payload.DispatchPayload, repository, token string) (*Result, error) {
	if strings.TrimSpace(repository) == "" {
		return nil, ErrMissingRepository
	}
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrDispatchInFlight
	}
	defer c.inFlight.Store(false)

	body, err := json.Marshal(request{
		DispatchPayload:  p,
		GitHubToken:      token,
		GitHubRepository: repository,
	})
	if err != nil {
		return nil, fmt.Errorf("dispatch: encode request: %w", err)
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("dispatch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: json.RawMessage(raw)}
	}

	result := &Result{Payload: p}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return nil, fmt.Errorf("dispatch: decode response: %w", err)
		}
	}
	return result, nil
}

// InFlight reports whether a dispatch is outstanding.
func (c *Client) InFlight() bool {
	return c.inFlight.Load()
}

type request struct {
	payload.DispatchPayload
	GitHubToken      string `json:"github_token"`
	GitHubRepository string `json:"github_repository"`
}
