package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

const valuesYAML = `title: Provision
fields:
  - name: cores
    label: Cores
    type: number
    min: 1
    max: 64
  - name: owner
    label: Owner
    type: email
  - name: env
    label: Environment
    type: dropdown
    options: [staging, production]
  - name: specs
    label: Specs
    type: checkbox
    options: [small, large]
  - name: notes
    label: Notes
    type: textarea
`

func parseValuesForm(t *testing.T) *schema.FormSchema {
	t.Helper()
	form, err := schema.Parse(valuesYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return form
}

func TestValueErrors_Valid(t *testing.T) {
	form := parseValuesForm(t)
	values := model.NewFormValues()
	values.Set("cores", model.Single("8"))
	values.Set("owner", model.Single("ops@example.com"))
	values.Set("env", model.Single("staging"))
	values.Set("specs", model.Multi("small", "large"))
	values.Set("notes", model.Single(""))

	got, err := ValueErrors(form, values)
	if err != nil {
		t.Fatalf("value errors: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no errors, got %v", got)
	}
}

func TestValueErrors_EmptyValuesAreLeftToRequiredChecks(t *testing.T) {
	form := parseValuesForm(t)
	values := model.NewFormValues()
	values.Set("cores", model.Single(""))
	values.Set("env", model.Single(""))
	values.Set("specs", model.Multi())

	got, err := ValueErrors(form, values)
	if err != nil {
		t.Fatalf("value errors: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no errors, got %v", got)
	}
}

func TestValueErrors_Violations(t *testing.T) {
	form := parseValuesForm(t)
	values := model.NewFormValues()
	values.Set("cores", model.Single("128"))
	values.Set("owner", model.Single("not-an-address"))
	values.Set("env", model.Single("qa"))
	values.Set("specs", model.Multi("small", "huge"))

	got, err := ValueErrors(form, values)
	if err != nil {
		t.Fatalf("value errors: %v", err)
	}
	want := map[string][]string{
		"/form_data/cores":   {"Must be at most 64"},
		"/form_data/owner":   {"Must be an email address"},
		"/form_data/env":     {"Not one of the listed options"},
		"/form_data/specs/1": {"Not one of the listed options"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValueErrors_NumberThatDoesNotParse(t *testing.T) {
	form := parseValuesForm(t)
	values := model.NewFormValues()
	values.Set("cores", model.Single("eight"))

	got, err := ValueErrors(form, values)
	if err != nil {
		t.Fatalf("value errors: %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"/form_data/cores": {"Must be a number"}}, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}
