package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

type stubDriver struct {
	inputs    []string
	textAreas []string
	selects   []int
	multis    [][]int
	infos     []string

	inputCfgs  []InputConfig
	selectCfgs []SelectConfig
	multiCfgs  []SelectConfig
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputCfgs = append(s.inputCfgs, cfg)
	if len(s.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	return val, nil
}

func (s *stubDriver) Password(context.Context, InputConfig) (string, error) {
	return "", errors.New("no password scripted")
}

func (s *stubDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	return false, errors.New("no confirm scripted")
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selectCfgs = append(s.selectCfgs, cfg)
	if len(s.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	val := s.selects[0]
	s.selects = s.selects[1:]
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.multiCfgs = append(s.multiCfgs, cfg)
	if len(s.multis) == 0 {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multis[0]
	s.multis = s.multis[1:]
	return val, nil
}

func (s *stubDriver) TextArea(context.Context, TextAreaConfig) (string, error) {
	if len(s.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infos = append(s.infos, msg)
	return nil
}

func testForm() *schema.FormSchema {
	return &schema.FormSchema{
		Title: "Deploy",
		Fields: []schema.FieldDef{
			{Name: "host", Label: "Host", Kind: schema.KindText, Required: true},
			{Name: "cores", Label: "Cores", Kind: schema.KindNumber, Min: "1", Max: "64", Default: "4"},
			{Name: "env", Label: "Env", Kind: schema.KindDropdown, Options: []schema.Option{{Value: "dev", Label: "Dev"}, {Value: "prod", Label: "Prod"}}},
			{Name: "sys", Label: "Sys", Kind: schema.KindCheckbox, Options: []schema.Option{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}, {Value: "c", Label: "C"}}},
			{Name: "colour", Label: "Colour", Kind: schema.KindUnsupported, RawType: "colorpicker"},
			{Name: "notes", Label: "Notes", Kind: schema.KindTextarea},
		},
	}
}

func TestRender_CollectsInSchemaOrder(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"web-01", "8"},
		selects:   []int{2},
		multis:    [][]int{{2, 0}},
		textAreas: []string{"hello"},
	}

	out, err := New(WithPromptDriver(driver)).Render(context.Background(), testForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := `{"host":"web-01","cores":"8","env":"prod","sys":["a","c"],"notes":"hello"}`
	if string(out) != want {
		t.Fatalf("output mismatch\nwant: %s\n got: %s", want, out)
	}
	if diff := cmp.Diff([]string{"Deploy", "Colour: Unsupported field type (colorpicker)"}, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if driver.inputCfgs[1].Default != "4" {
		t.Fatalf("expected number default 4, got %q", driver.inputCfgs[1].Default)
	}
	if got := driver.selectCfgs[0].Options[0]; got != render.SelectPlaceholder {
		t.Fatalf("expected sentinel first, got %q", got)
	}
}

func TestRender_PrefillBecomesDefaults(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"web-01", "4"},
		selects:   []int{0},
		multis:    [][]int{{1}},
		textAreas: []string{""},
	}
	opts := render.RenderOptions{Values: map[string][]string{"sys": {"b", "c"}, "env": {"dev"}}}

	out, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded)).Render(context.Background(), testForm(), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]int{1, 2}, driver.multiCfgs[0].Defaults); diff != "" {
		t.Fatalf("multiselect defaults mismatch (-want +got):\n%s", diff)
	}
	if driver.selectCfgs[0].DefaultIndex != 1 {
		t.Fatalf("expected dev preselected, got %d", driver.selectCfgs[0].DefaultIndex)
	}
	want := "cores=4&env=&host=web-01&notes=&sys=b"
	if string(out) != want {
		t.Fatalf("output mismatch\nwant: %s\n got: %s", want, out)
	}
}

func TestInputValidator(t *testing.T) {
	number := render.Describe(schema.FieldDef{Name: "n", Kind: schema.KindNumber, Required: true, Min: "1", Max: "10"})
	validate := inputValidator(number)
	for answer, ok := range map[string]bool{"": false, "abc": false, "0": false, "11": false, "5": true} {
		if err := validate(answer); (err == nil) != ok {
			t.Fatalf("number %q: err=%v, want ok=%v", answer, err, ok)
		}
	}

	email := inputValidator(render.Describe(schema.FieldDef{Name: "e", Kind: schema.KindEmail}))
	if email("") != nil || email("user@example.com") != nil || email("nope") == nil {
		t.Fatalf("unexpected email validation")
	}

	when := inputValidator(render.Describe(schema.FieldDef{Name: "w", Kind: schema.KindDatetime}))
	if when("2024-03-05T14:07") != nil || when("tomorrow") == nil {
		t.Fatalf("unexpected datetime validation")
	}
}

func TestFill_NoSchema(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{})).Fill(context.Background(), nil, render.RenderOptions{}); !errors.Is(err, ErrNoSchema) {
		t.Fatalf("expected ErrNoSchema, got %v", err)
	}
}

func TestSurveyErrorTranslation(t *testing.T) {
	if err := translateSurveyErr(errors.New("boom")); err.Error() != "boom" {
		t.Fatalf("unexpected %v", err)
	}
}
