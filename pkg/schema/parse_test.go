package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const deploymentYAML = `title: "Server Deployment Request"
description: "Deploy new server infrastructure"
github:
  repository: "your-org/infrastructure"
  workflow: "server-deployment.yml"
  event_type: "server_deployment_request"

fields:
  - name: "serverName"
    label: "Server Name"
    type: "text"
    required: true
    placeholder: "e.g., web-server-01"

  - name: "cores"
    label: "Cores"
    type: number
    min: 1
    max: 64
    default: 4

  - name: "specifications"
    label: "Hardware Specifications"
    type: "checkbox"
    options:
      - value: "2cpu-4gb"
        label: "2 CPU, 4GB RAM"
      - value: "4cpu-8gb"
`

func TestParse_Document(t *testing.T) {
	got, err := Parse(deploymentYAML)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := &FormSchema{
		Title:       "Server Deployment Request",
		Description: "Deploy new server infrastructure",
		GitHub: GitHub{
			Repository: "your-org/infrastructure",
			Workflow:   "server-deployment.yml",
			EventType:  "server_deployment_request",
		},
		Fields: []FieldDef{
			{Name: "serverName", Label: "Server Name", Kind: KindText, RawType: "text", Required: true, Placeholder: "e.g., web-server-01"},
			{Name: "cores", Label: "Cores", Kind: KindNumber, RawType: "number", Min: "1", Max: "64", Default: "4"},
			{
				Name: "specifications", Label: "Hardware Specifications", Kind: KindCheckbox, RawType: "checkbox",
				Options: []Option{
					{Value: "2cpu-4gb", Label: "2 CPU, 4GB RAM"},
					{Value: "4cpu-8gb", Label: "4cpu-8gb"},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_BlankInputMeansNoSchema(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\n"} {
		got, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", input, err)
		}
		if got != nil {
			t.Fatalf("Parse(%q) = %+v, want nil", input, got)
		}
	}
}

func TestParse_UnknownTypeIsUnsupported(t *testing.T) {
	got, err := Parse(`title: x
fields:
  - name: colour
    label: Colour
    type: colorpicker
  - name: when
    label: When
    type: datetime-local
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Fields[0].Kind != KindUnsupported || got.Fields[0].RawType != "colorpicker" {
		t.Fatalf("expected unsupported kind preserving raw type, got %+v", got.Fields[0])
	}
	if got.Fields[1].Kind != KindDatetime {
		t.Fatalf("expected datetime-local alias to map to datetime, got %q", got.Fields[1].Kind)
	}
	if n := len(got.UnsupportedFields()); n != 1 {
		t.Fatalf("expected one unsupported field, got %d", n)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		message string
	}{
		{name: "invalid yaml", input: "title: [unterminated", message: ""},
		{name: "top level sequence", input: "- a\n- b\n", message: "top level must be a mapping"},
		{name: "top level scalar", input: "just text", message: "top level must be a mapping"},
		{name: "missing fields", input: "title: x\n", message: "fields must be a sequence"},
		{name: "fields mapping", input: "fields:\n  a: b\n", message: "fields must be a sequence"},
		{name: "field scalar", input: "fields:\n  - text\n", message: "fields[0] must be a mapping"},
		{name: "missing label", input: "fields:\n  - name: a\n    type: text\n", message: `field "a": missing "label"`},
		{name: "missing type", input: "fields:\n  - name: a\n    label: A\n", message: `field "a": missing "type"`},
		{name: "missing name", input: "fields:\n  - label: A\n    type: text\n", message: `fields[0]: missing "name"`},
		{name: "bad required", input: "fields:\n  - name: a\n    label: A\n    type: text\n    required: maybe\n", message: `field "a": required must be a boolean`},
		{name: "option without value", input: "fields:\n  - name: a\n    label: A\n    type: dropdown\n    options:\n      - label: A\n", message: `options[0] missing "value"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if got != nil {
				t.Fatalf("expected nil schema, got %+v", got)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T (%v)", err, err)
			}
			if !strings.Contains(parseErr.Message, tc.message) {
				t.Fatalf("message %q does not contain %q", parseErr.Message, tc.message)
			}
		})
	}
}

func TestParse_ErrorCarriesLine(t *testing.T) {
	_, err := Parse("title: x\nfields:\n  - name: a\n    label: A\n    type: text\n    required: sometimes\n")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Line != 6 {
		t.Fatalf("expected line 6, got %d", parseErr.Line)
	}
	if !strings.HasPrefix(parseErr.Error(), "schema: line 6: ") {
		t.Fatalf("unexpected error text %q", parseErr.Error())
	}
}

func TestDefaultTemplateParses(t *testing.T) {
	title := TitleFromName("server-deployment")
	if title != "Server Deployment" {
		t.Fatalf("TitleFromName = %q", title)
	}

	got, err := Parse(DefaultTemplate(title))
	if err != nil {
		t.Fatalf("parse default template: %v", err)
	}

	wantGitHub := GitHub{
		Repository: "your-org/your-repo",
		Workflow:   "server-deployment-workflow.yml",
		EventType:  "server_deployment_automation",
	}
	if diff := cmp.Diff(wantGitHub, got.GitHub); diff != "" {
		t.Fatalf("github mismatch (-want +got):\n%s", diff)
	}

	var kinds []Kind
	for _, field := range got.Fields {
		kinds = append(kinds, field.Kind)
	}
	wantKinds := []Kind{KindText, KindEmail, KindNumber, KindDatetime, KindDropdown, KindCheckbox, KindTextarea}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSource(t *testing.T) {
	cases := []struct {
		raw      string
		kind     SourceKind
		location string
	}{
		{raw: "registry:server-deployment", kind: SourceKindRegistry, location: "server-deployment"},
		{raw: "https://example.com/form.yaml", kind: SourceKindURL, location: "https://example.com/form.yaml"},
		{raw: "forms/./deploy.yaml", kind: SourceKindFile, location: "forms/deploy.yaml"},
	}
	for _, tc := range cases {
		src, err := ParseSource(tc.raw)
		if err != nil {
			t.Fatalf("ParseSource(%q): %v", tc.raw, err)
		}
		if src.Kind() != tc.kind || src.Location() != tc.location {
			t.Fatalf("ParseSource(%q) = %s %q", tc.raw, src.Kind(), src.Location())
		}
	}

	if _, err := ParseSource("registry:"); err == nil {
		t.Fatalf("expected error for empty registry name")
	}
}
