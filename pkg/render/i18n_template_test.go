package render

import (
	"errors"
	"testing"
)

func TestTemplateI18nFuncs(t *testing.T) {
	opts := RenderOptions{
		Locale: "es",
		Translator: TranslatorFunc(func(locale, key string, _ ...any) (string, error) {
			if locale == "es" && key == "page.forms" {
				return "Formularios", nil
			}
			return "", errors.New("missing")
		}),
	}
	funcs := TemplateI18nFuncs(opts)

	translate := funcs["translate"].(func(string, string) string)
	if got := translate(" page.forms ", "Forms"); got != "Formularios" {
		t.Fatalf("expected translated string, got %q", got)
	}
	if got := translate("page.token", "GitHub token"); got != "GitHub token" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := funcs["current_locale"].(func() string)(); got != "es" {
		t.Fatalf("expected es, got %q", got)
	}
}
