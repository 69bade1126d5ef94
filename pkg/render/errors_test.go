package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

func TestMapErrorPayload(t *testing.T) {
	form := &schema.FormSchema{Fields: []schema.FieldDef{{Name: "host"}, {Name: "specs"}}}
	got := MapErrorPayload(form, map[string][]string{
		"/client_payload/form_data/host": {"must be a string"},
		"form_data.specs[1]":             {"unknown option"},
		"":                               {"Repository must be in format 'owner/repo'"},
		"/github_token":                  {"missing"},
	})

	want := ErrorMapping{
		Fields: map[string][]string{
			"host":  {"must be a string"},
			"specs": {"unknown option"},
		},
	}
	if diff := cmp.Diff(want.Fields, got.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if len(got.Form) != 2 {
		t.Fatalf("expected two form-level messages, got %v", got.Form)
	}
}

func TestMergeFormErrors(t *testing.T) {
	got := MergeFormErrors([]string{"a", " "}, "b", "a")
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateFallsBack(t *testing.T) {
	opts := RenderOptions{}
	if got := opts.T("form.submit", "Submit"); got != "Submit" {
		t.Fatalf("expected fallback, got %q", got)
	}

	var seen error
	opts.OnMissing = func(_ string, key string, _ []any, err error) string {
		seen = err
		return "[" + key + "]"
	}
	if got := opts.T("form.submit", "Submit"); got != "[form.submit]" {
		t.Fatalf("expected handler output, got %q", got)
	}
	if seen != ErrMissingTranslator {
		t.Fatalf("expected ErrMissingTranslator, got %v", seen)
	}
}
