package render

import "strings"

// TemplateI18nFuncs returns helpers for template contexts:
//
//	translate(key, default) string
//	current_locale() string
//
// The vanilla form template and the server pages call these for their
// chrome strings.
func TemplateI18nFuncs(opts RenderOptions) map[string]any {
	return map[string]any{
		"translate": func(key, fallback string) string {
			return opts.T(strings.TrimSpace(key), fallback)
		},
		"current_locale": func() string {
			return opts.Locale
		},
	}
}
