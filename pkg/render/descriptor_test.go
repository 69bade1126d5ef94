package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

func TestDescribe_Inputs(t *testing.T) {
	cases := []struct {
		field schema.FieldDef
		want  Descriptor
	}{
		{
			field: schema.FieldDef{Name: "x", Label: "X", Kind: schema.KindText, RawType: "text", Required: true, Placeholder: "type", Min: "1"},
			want:  Descriptor{Name: "x", ID: "x", Label: "X", Control: ControlInput, Field: schema.KindText, RawType: "text", InputType: "text", Required: true, Placeholder: "type"},
		},
		{
			field: schema.FieldDef{Name: "n", Label: "N", Kind: schema.KindNumber, RawType: "number", Min: "1", Max: "64", Default: "4"},
			want:  Descriptor{Name: "n", ID: "n", Label: "N", Control: ControlInput, Field: schema.KindNumber, RawType: "number", InputType: "number", Min: "1", Max: "64", Value: "4"},
		},
		{
			field: schema.FieldDef{Name: "when", Label: "When", Kind: schema.KindDatetime, RawType: "datetime-local"},
			want:  Descriptor{Name: "when", ID: "when", Label: "When", Control: ControlInput, Field: schema.KindDatetime, RawType: "datetime-local", InputType: "datetime-local"},
		},
		{
			field: schema.FieldDef{Name: "notes", Label: "Notes", Kind: schema.KindTextarea, RawType: "textarea", Placeholder: "ghost", Default: "prefilled", Note: "**md**"},
			want:  Descriptor{Name: "notes", ID: "notes", Label: "Notes", Control: ControlTextarea, Field: schema.KindTextarea, RawType: "textarea", Placeholder: "ghost", Value: "prefilled", Rows: TextareaRows, Note: "**md**"},
		},
		{
			field: schema.FieldDef{Name: "c", Label: "C", Kind: schema.KindUnsupported, RawType: "colorpicker"},
			want:  Descriptor{Name: "c", ID: "c", Label: "C", Control: ControlUnsupported, Field: schema.KindUnsupported, RawType: "colorpicker"},
		},
	}

	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, Describe(tc.field)); diff != "" {
			t.Fatalf("Describe(%s) mismatch (-want +got):\n%s", tc.field.Name, diff)
		}
	}
}

func TestDescribe_DropdownSentinelAndDefault(t *testing.T) {
	field := schema.FieldDef{Name: "env", Label: "Env", Kind: schema.KindDropdown, Default: "prod", Options: []schema.Option{
		{Value: "dev", Label: "Dev"}, {Value: "prod", Label: "Prod"},
	}}

	got := Describe(field).Choices
	want := []Choice{
		{ID: "env", Label: SelectPlaceholder, Sentinel: true},
		{ID: "env", Value: "dev", Label: "Dev"},
		{ID: "env", Value: "prod", Label: "Prod", Selected: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}

	field.Required = true
	if got := Describe(field).Choices; len(got) != 2 || got[0].Sentinel {
		t.Fatalf("required dropdown must not get a sentinel, got %+v", got)
	}
}

func TestDescribe_CheckboxStartsUnchecked(t *testing.T) {
	field := schema.FieldDef{Name: "sys", Label: "Sys", Kind: schema.KindCheckbox, Default: "a", Options: []schema.Option{
		{Value: "a", Label: "A"}, {Value: "b", Label: "B"},
	}}

	want := []Choice{
		{ID: "sys_a", Value: "a", Label: "A"},
		{ID: "sys_b", Value: "b", Label: "B"},
	}
	if diff := cmp.Diff(want, Describe(field).Choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderOptionsApply(t *testing.T) {
	form := &schema.FormSchema{Fields: []schema.FieldDef{
		{Name: "host", Label: "Host", Kind: schema.KindText, Default: "web"},
		{Name: "env", Label: "Env", Kind: schema.KindDropdown, Default: "dev", Options: []schema.Option{{Value: "dev", Label: "Dev"}, {Value: "prod", Label: "Prod"}}},
		{Name: "sys", Label: "Sys", Kind: schema.KindCheckbox, Options: []schema.Option{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}}},
	}}
	opts := RenderOptions{
		Values: map[string][]string{"host": {"db"}, "env": {"prod"}, "sys": {"b"}},
		Errors: map[string][]string{"host": {" required ", "required"}},
		Translator: TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
			if key == "form.select_placeholder" && locale == "es" {
				return "Selecciona una opción", nil
			}
			return "", nil
		}),
		Locale: "es",
	}

	got := opts.Apply(DescribeForm(form))

	if got.Fields[0].Value != "db" {
		t.Fatalf("expected prefilled host, got %q", got.Fields[0].Value)
	}
	if diff := cmp.Diff([]string{"required"}, got.Fields[0].Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	env := got.Fields[1].Choices
	if env[0].Label != "Selecciona una opción" || env[1].Selected || !env[2].Selected {
		t.Fatalf("unexpected env choices %+v", env)
	}
	sys := got.Fields[2].Choices
	if sys[0].Selected || !sys[1].Selected {
		t.Fatalf("unexpected sys choices %+v", sys)
	}

	if DescribeForm(form).Fields[1].Choices[0].Label != SelectPlaceholder {
		t.Fatalf("Apply must not mutate the source descriptor")
	}
}
