package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/pkg/render"
)

func TestTranslate_EmbeddedCatalogues(t *testing.T) {
	tr, err := NewTranslations()
	if err != nil {
		t.Fatalf("new translations: %v", err)
	}

	cases := []struct {
		locale string
		key    string
		args   []any
		want   string
	}{
		{locale: "en", key: "form.submit", args: []any{map[string]any{"Title": "Deploy"}}, want: "Submit Deploy"},
		{locale: "es", key: "form.submit", args: []any{map[string]any{"Title": "Deploy"}}, want: "Enviar Deploy"},
		{locale: "", key: "form.select_placeholder", want: "Select an option"},
		{locale: "fr", key: "form.untitled", want: "Untitled Form"},
		{locale: "en", key: "forms.missing_fields", args: []any{1}, want: "1 required field is empty"},
		{locale: "en", key: "forms.missing_fields", args: []any{3}, want: "3 required fields are empty"},
	}
	for _, tc := range cases {
		got, err := tr.Translate(tc.locale, tc.key, tc.args...)
		if err != nil {
			t.Fatalf("Translate(%q, %q): %v", tc.locale, tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("Translate(%q, %q) = %q, want %q", tc.locale, tc.key, got, tc.want)
		}
	}
}

func TestTranslate_UnknownKeyFallsBackThroughRenderOptions(t *testing.T) {
	tr, err := NewTranslations()
	if err != nil {
		t.Fatalf("new translations: %v", err)
	}
	if _, err := tr.Translate("en", "nope"); err == nil {
		t.Fatalf("expected error for unknown key")
	}

	opts := render.RenderOptions{Locale: "es", Translator: tr}
	if got := opts.T("nope", "fallback"); got != "fallback" {
		t.Fatalf("T = %q", got)
	}
	if got := opts.T("form.unsupported", "x"); got != "Tipo de campo no soportado" {
		t.Fatalf("T = %q", got)
	}
}

func TestNewTranslations_ExtraCatalogue(t *testing.T) {
	extra := fstest.MapFS{
		"locales/active.de.toml": {Data: []byte("[\"form.submit\"]\nother = \"{{.Title}} senden\"\n")},
	}
	tr, err := NewTranslations(extra)
	if err != nil {
		t.Fatalf("new translations: %v", err)
	}
	supported := map[string]bool{}
	for _, lang := range []string{"en", "es", "de", "fr"} {
		supported[lang] = tr.Supports(lang)
	}
	want := map[string]bool{"en": true, "es": true, "de": true, "fr": false}
	if diff := cmp.Diff(want, supported); diff != "" {
		t.Fatalf("languages mismatch (-want +got):\n%s", diff)
	}
	if got := tr.Message("de", "form.submit", map[string]any{"Title": "Deploy"}); got != "Deploy senden" {
		t.Fatalf("Message = %q", got)
	}
}
