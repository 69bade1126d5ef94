package githubdispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 5, 4, 10, 30, 0, 123456000, time.UTC)
}

func githubResponse(status int) *github.Response {
	return &github.Response{Response: &http.Response{StatusCode: status}}
}

func testRequest() Request {
	return Request{
		EventType:     "server_deployment_request",
		ClientPayload: json.RawMessage(`{"form_data":{"serverName":"web-01"}}`),
		Token:         "ghp_test",
		Repository:    "acme/infra",
	}
}

func TestService_Dispatch_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		resp       *github.Response
		err        error
		wantStatus int
		wantBody   any
		wantErr    bool
	}{
		{
			name:       "accepted",
			resp:       githubResponse(http.StatusNoContent),
			wantStatus: http.StatusOK,
			wantBody: Success{
				Message:    "Workflow dispatched successfully",
				EventType:  "server_deployment_request",
				Repository: "acme/infra",
				Timestamp:  "2026-05-04T10:30:00.123456",
			},
		},
		{
			name:       "bad token",
			resp:       githubResponse(http.StatusUnauthorized),
			err:        errors.New("401 Bad credentials"),
			wantStatus: http.StatusUnauthorized,
			wantBody: Failure{
				Error:               "Authentication failed",
				Details:             "Invalid GitHub token or insufficient permissions",
				RequiredPermissions: []string{"repo", "workflow"},
			},
		},
		{
			name:       "missing repository",
			resp:       githubResponse(http.StatusNotFound),
			wantStatus: http.StatusNotFound,
			wantBody: Failure{
				Error:      "Repository not found",
				Details:    "Repository 'acme/infra' not found or token lacks access",
				Repository: "acme/infra",
			},
		},
		{
			name:       "unknown event type",
			resp:       githubResponse(http.StatusUnprocessableEntity),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: Failure{
				Error:     "Invalid event type",
				Details:   "The event_type might not match any repository_dispatch triggers in your workflows",
				EventType: "server_deployment_request",
			},
		},
		{
			name:       "other status",
			resp:       githubResponse(http.StatusForbidden),
			err:        &github.ErrorResponse{Message: "rate limited"},
			wantStatus: http.StatusForbidden,
			wantBody:   Failure{Error: "GitHub API error", Details: "rate limited", StatusCode: http.StatusForbidden},
			wantErr:    true,
		},
		{
			name:       "network failure",
			err:        errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   Failure{Error: "Network error: dial tcp: connection refused"},
			wantErr:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dispatcher := &MockRepositoryDispatcher{}
			dispatcher.On("Dispatch", mock.Anything, "ghp_test", "acme", "infra", mock.MatchedBy(func(body DispatchBody) bool {
				return body.EventType == "server_deployment_request" && len(body.ClientPayload) > 0
			})).Return(tc.resp, tc.err).Once()

			svc := NewService(dispatcher, fixedNow)
			outcome, err := svc.Dispatch(context.Background(), testRequest())

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.wantStatus, outcome.Status)
			if diff := cmp.Diff(tc.wantBody, outcome.Body); diff != "" {
				t.Fatalf("body mismatch (-want +got):\n%s", diff)
			}
			dispatcher.AssertExpectations(t)
		})
	}
}

func TestService_Dispatch_InvalidRepository(t *testing.T) {
	dispatcher := &MockRepositoryDispatcher{}
	svc := NewService(dispatcher, fixedNow)

	req := testRequest()
	req.Repository = "no-slash"
	outcome, err := svc.Dispatch(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, outcome.Status)
	assert.Equal(t, Failure{Error: "Repository must be in format 'owner/repo'"}, outcome.Body)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClient_Dispatch_SendsRepositoryDispatch(t *testing.T) {
	var (
		gotPath   string
		gotAuth   string
		gotAgent  string
		gotAccept string
		gotBody   map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	resp, err := client.Dispatch(context.Background(), "ghp_test", "acme", "infra", DispatchBody{
		EventType:     "deploy",
		ClientPayload: json.RawMessage(`{"a":1}`),
	})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "/repos/acme/infra/dispatches", gotPath)
	assert.Equal(t, "Bearer ghp_test", gotAuth)
	assert.Equal(t, UserAgent, gotAgent)
	assert.Equal(t, "application/vnd.github.v3+json", gotAccept)
	want := map[string]any{"event_type": "deploy", "client_payload": map[string]any{"a": float64(1)}}
	if diff := cmp.Diff(want, gotBody); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Dispatch_ErrorStatusKeepsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Invalid request"}`))
	}))
	defer server.Close()

	svc := NewService(NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client())), fixedNow)
	outcome, err := svc.Dispatch(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, outcome.Status)
}
