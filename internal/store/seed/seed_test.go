package seed

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/internal/store/memory"
	"github.com/goliatone/go-formdispatch/pkg/schema"
	"github.com/goliatone/go-formdispatch/pkg/validation"
)

func TestFormsParseAndLintClean(t *testing.T) {
	forms, err := Forms()
	if err != nil {
		t.Fatalf("forms: %v", err)
	}
	if len(forms) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(forms))
	}
	for _, form := range forms {
		parsed, err := schema.Parse(form.YAMLContent)
		if err != nil {
			t.Fatalf("%s: parse: %v", form.Name, err)
		}
		if parsed.GitHub.Repository == "" || parsed.GitHub.EventType == "" {
			t.Fatalf("%s: missing github block %+v", form.Name, parsed.GitHub)
		}
		if len(parsed.UnsupportedFields()) != 0 {
			t.Fatalf("%s: unexpected unsupported fields", form.Name)
		}
		if result := validation.ValidateText(form.YAMLContent); len(result.Errors()) != 0 {
			t.Fatalf("%s: lint errors %+v", form.Name, result.Errors())
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	s := memory.New(nil)
	ctx := context.Background()

	first, err := Apply(ctx, s)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	wantNames := []string{"maintenance-window", "dynatrace-access", "user-provisioning", "server-deployment"}
	if diff := cmp.Diff(Result{Created: wantNames}, first); diff != "" {
		t.Fatalf("first apply mismatch (-want +got):\n%s", diff)
	}

	second, err := Apply(ctx, s)
	if err != nil {
		t.Fatalf("apply again: %v", err)
	}
	if diff := cmp.Diff(Result{Skipped: wantNames}, second); diff != "" {
		t.Fatalf("second apply mismatch (-want +got):\n%s", diff)
	}

	form, err := s.Get(ctx, "dynatrace-access")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if form.Title != "Dynatrace Access Request" {
		t.Fatalf("title = %q", form.Title)
	}
}
