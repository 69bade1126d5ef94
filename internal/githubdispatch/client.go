package githubdispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// UserAgent is sent with every GitHub request.
const UserAgent = "Form-Builder/1.0"

// DispatchBody is the repository_dispatch request body.
type DispatchBody struct {
	EventType     string          `json:"event_type"`
	ClientPayload json.RawMessage `json:"client_payload,omitempty"`
}

// RepositoryDispatcher sends one repository_dispatch event. The response is
// non-nil whenever GitHub answered, even with an error status.
type RepositoryDispatcher interface {
	Dispatch(ctx context.Context, token, owner, repo string, body DispatchBody) (*github.Response, error)
}

// Client implements RepositoryDispatcher with go-github.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

var _ RepositoryDispatcher = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a GitHub Enterprise or test server. The
// URL must end with a slash.
func WithBaseURL(raw string) ClientOption {
	return func(c *Client) {
		if raw == "" {
			return
		}
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		if parsed, err := url.Parse(raw); err == nil {
			c.baseURL = parsed
		}
	}
}

// WithHTTPClient sets the transport underneath the per-request token.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// NewClient builds a client for api.github.com unless overridden.
func NewClient(options ...ClientOption) *Client {
	c := &Client{http: http.DefaultClient}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Dispatch POSTs repos/{owner}/{repo}/dispatches authenticated with token.
func (c *Client) Dispatch(ctx context.Context, token, owner, repo string, body DispatchBody) (*github.Response, error) {
	gh := c.github(ctx, token)

	path := fmt.Sprintf("repos/%s/%s/dispatches", url.PathEscape(owner), url.PathEscape(repo))
	req, err := gh.NewRequest(http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("githubdispatch: build request: %w", err)
	}
	return gh.Do(ctx, req, nil)
}

func (c *Client) github(ctx context.Context, token string) *github.Client {
	httpClient := c.http
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.http), ts)
	}

	gh := github.NewClient(httpClient)
	gh.UserAgent = UserAgent
	if c.baseURL != nil {
		gh.BaseURL = c.baseURL
	}
	return gh
}
