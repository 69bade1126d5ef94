package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/payload"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 123_000_000, time.UTC)

func testForm() *schema.FormSchema {
	return &schema.FormSchema{
		Title:  "Deploy",
		GitHub: schema.GitHub{Repository: "acme/infra", Workflow: "deploy-app.yml"},
		Fields: []schema.FieldDef{{Name: "host", Label: "Host", Kind: schema.KindText}},
	}
}

func testValues() *model.FormValues {
	values := model.NewFormValues()
	values.Set("host", model.Single("web-01"))
	return values
}

func TestDispatch_SendsFlattenedPayload(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != Path {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &received); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"message":"Workflow dispatched successfully","event_type":"deploy_app_automation","repository":"acme/infra","timestamp":"2024-03-05T14:07:09"}`)
	}))
	defer server.Close()

	client := New(server.URL, WithAssembler(payload.NewAssembler(payload.FixedClock(fixedNow))))
	result, err := client.Dispatch(context.Background(), testForm(), testValues(), "ghp_secret")
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if result.Message != "Workflow dispatched successfully" || result.Repository != "acme/infra" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Payload.EventType != "deploy_app_automation" {
		t.Fatalf("expected derived event type, got %q", result.Payload.EventType)
	}

	want := map[string]any{
		"event_type":        "deploy_app_automation",
		"github_token":      "ghp_secret",
		"github_repository": "acme/infra",
		"client_payload": map[string]any{
			"automation_type":   "deploy-app",
			"timestamp":         "2024-03-05T14:07:09.123Z",
			"request_id":        "req_1709647629123",
			"workflow":          "deploy-app.yml",
			"target_repository": "acme/infra",
			"form_data":         map[string]any{"host": "web-01"},
			"form_config":       map[string]any{"title": "Deploy", "description": ""},
		},
	}
	if diff := cmp.Diff(want, received); diff != "" {
		t.Fatalf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch_RefusesWithoutNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()
	client := New(server.URL)

	noRepo := testForm()
	noRepo.GitHub.Repository = ""
	unsupported := testForm()
	unsupported.Fields = append(unsupported.Fields, schema.FieldDef{Name: "c", Kind: schema.KindUnsupported, RawType: "colorpicker"})

	cases := []struct {
		name  string
		form  *schema.FormSchema
		token string
		want  error
	}{
		{name: "no schema", form: nil, token: "t", want: ErrNoSchema},
		{name: "no repository", form: noRepo, token: "t", want: ErrMissingRepository},
		{name: "unsupported field", form: unsupported, token: "t", want: ErrUnsupportedFields},
		{name: "no token", form: testForm(), token: "  ", want: ErrMissingToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Dispatch(context.Background(), tc.form, testValues(), tc.token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if n := calls.Load(); n != 0 {
		t.Fatalf("expected no network calls, got %d", n)
	}
}

func TestDispatch_RemoteErrorKeepsBody(t *testing.T) {
	body := `{"error":"Repository not found","details":"Repository 'acme/infra' not found or token lacks access","repository":"acme/infra"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, body)
	}))
	defer server.Close()

	_, err := New(server.URL).Dispatch(context.Background(), testForm(), testValues(), "t")
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %T %v", err, err)
	}
	if remote.StatusCode != http.StatusNotFound || string(remote.Body) != body {
		t.Fatalf("unexpected remote error %d %s", remote.StatusCode, remote.Body)
	}
	if got := remote.Message(); got != "Repository not found: Repository 'acme/infra' not found or token lacks access" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDispatch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url).Dispatch(context.Background(), testForm(), testValues(), "t")
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected *TransportError, got %T %v", err, err)
	}
}

func TestDispatch_SingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	}))
	defer server.Close()

	client := New(server.URL)
	done := make(chan error, 1)
	go func() {
		_, err := client.Dispatch(context.Background(), testForm(), testValues(), "t")
		done <- err
	}()

	<-started
	if !client.InFlight() {
		t.Fatalf("expected dispatch to be in flight")
	}
	if _, err := client.Dispatch(context.Background(), testForm(), testValues(), "t"); !errors.Is(err, ErrDispatchInFlight) {
		t.Fatalf("expected ErrDispatchInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if client.InFlight() {
		t.Fatalf("expected guard to be released")
	}
}
