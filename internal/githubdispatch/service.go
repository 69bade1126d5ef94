// Package githubdispatch forwards repository_dispatch events to GitHub and
// maps GitHub's answer onto the registry's dispatch response contract.
package githubdispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/github"
)

// Request is a validated inbound dispatch.
type Request struct {
	EventType     string
	ClientPayload json.RawMessage
	Token         string
	Repository    string
}

// Success is the 200 body.
type Success struct {
	Message    string `json:"message"`
	EventType  string `json:"event_type"`
	Repository string `json:"repository"`
	Timestamp  string `json:"timestamp"`
}

// Failure is every non-200 body.
type Failure struct {
	Error               string   `json:"error"`
	Details             string   `json:"details,omitempty"`
	RequiredPermissions []string `json:"required_permissions,omitempty"`
	Repository          string   `json:"repository,omitempty"`
	EventType           string   `json:"event_type,omitempty"`
	StatusCode          int      `json:"status_code,omitempty"`
}

// Outcome pairs the HTTP status to answer with and its JSON body.
type Outcome struct {
	Status int
	Body   any
}

// ErrInvalidRepository rejects repositories without an owner/repo slash.
var ErrInvalidRepository = errors.New("githubdispatch: repository must be in owner/repo form")

const invalidRepositoryMessage = "Repository must be in format 'owner/repo'"

// SplitRepository splits "owner/repo". Anything after the first slash is
// the repository name.
func SplitRepository(full string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(full, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", ErrInvalidRepository
	}
	return owner, repo, nil
}

// Service maps dispatch attempts to Outcomes.
type Service struct {
	dispatcher RepositoryDispatcher
	now        func() time.Time
}

// NewService wraps dispatcher. A nil now uses time.Now.
func NewService(dispatcher RepositoryDispatcher, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{dispatcher: dispatcher, now: now}
}

// Dispatch sends req and always returns an Outcome; the error is non-nil only
// for failures worth logging (network errors, unexpected statuses).
func (s *Service) Dispatch(ctx context.Context, req Request) (Outcome, error) {
	owner, repo, err := SplitRepository(req.Repository)
	if err != nil {
		return Outcome{Status: http.StatusBadRequest, Body: Failure{Error: invalidRepositoryMessage}}, nil
	}

	resp, err := s.dispatcher.Dispatch(ctx, req.Token, owner, repo, DispatchBody{
		EventType:     req.EventType,
		ClientPayload: req.ClientPayload,
	})

	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	if status == 0 {
		if err == nil {
			err = errors.New("no response from GitHub")
		}
		return Outcome{
			Status: http.StatusInternalServerError,
			Body:   Failure{Error: "Network error: " + err.Error()},
		}, fmt.Errorf("githubdispatch: %w", err)
	}

	switch status {
	case http.StatusNoContent:
		return Outcome{Status: http.StatusOK, Body: Success{
			Message:    "Workflow dispatched successfully",
			EventType:  req.EventType,
			Repository: req.Repository,
			Timestamp:  s.now().UTC().Format("2006-01-02T15:04:05.000000"),
		}}, nil
	case http.StatusUnauthorized:
		return Outcome{Status: status, Body: Failure{
			Error:               "Authentication failed",
			Details:             "Invalid GitHub token or insufficient permissions",
			RequiredPermissions: []string{"repo", "workflow"},
		}}, nil
	case http.StatusNotFound:
		return Outcome{Status: status, Body: Failure{
			Error:      "Repository not found",
			Details:    fmt.Sprintf("Repository '%s' not found or token lacks access", req.Repository),
			Repository: req.Repository,
		}}, nil
	case http.StatusUnprocessableEntity:
		return Outcome{Status: status, Body: Failure{
			Error:     "Invalid event type",
			Details:   "The event_type might not match any repository_dispatch triggers in your workflows",
			EventType: req.EventType,
		}}, nil
	}

	return Outcome{Status: status, Body: Failure{
		Error:      "GitHub API error",
		Details:    details(err, status),
		StatusCode: status,
	}}, fmt.Errorf("githubdispatch: unexpected status %d", status)
}

func details(err error, status int) string {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Message != "" {
		return errResp.Message
	}
	if err != nil {
		return err.Error()
	}
	return http.StatusText(status)
}
