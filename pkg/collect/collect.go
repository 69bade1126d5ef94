// Package collect reads an interactive surface back into FormValues using the
// schema as the authority on which fields exist and how they are shaped.
package collect

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// Surface is the read side of a rendered form.
type Surface interface {
	// Value returns the first value submitted for name, or "" when unset.
	Value(name string) string
	// Checked reports whether the toggle for optionValue under name is on.
	Checked(name, optionValue string) bool
}

// FormSurface adapts url.Values, as produced by an HTML form POST or by the
// terminal prompts, to Surface.
type FormSurface url.Values

var _ Surface = FormSurface(nil)

// Value returns the first value for name. Extra same-named values are ignored.
func (s FormSurface) Value(name string) string {
	values := s[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Checked reports whether optionValue was submitted under name.
func (s FormSurface) Checked(name, optionValue string) bool {
	for _, value := range s[name] {
		if value == optionValue {
			return true
		}
	}
	return false
}

// Collect walks the schema in order. Checkbox fields yield the checked option
// values in option order; every other supported field yields its single raw
// value, "" when unset. Unsupported fields are skipped. Nothing is coerced.
func Collect(form *schema.FormSchema, surface Surface) *model.FormValues {
	values := model.NewFormValues()
	if form == nil || surface == nil {
		return values
	}

	for _, field := range form.Fields {
		if !field.Kind.Supported() {
			continue
		}
		if field.Kind.MultiValued() {
			selected := make([]string, 0, len(field.Options))
			for _, opt := range field.Options {
				if surface.Checked(field.Name, opt.Value) {
					selected = append(selected, opt.Value)
				}
			}
			values.Set(field.Name, model.Multi(selected...))
			continue
		}
		values.Set(field.Name, model.Single(surface.Value(field.Name)))
	}
	return values
}

// Missing lists required fields whose collected value is empty. Collection
// never enforces required; callers decide whether to surface these.
func Missing(form *schema.FormSchema, values *model.FormValues) []string {
	if form == nil {
		return nil
	}
	var out []string
	for _, field := range form.Fields {
		if !field.Required || !field.Kind.Supported() {
			continue
		}
		value, ok := values.Get(field.Name)
		if !ok || value.Empty() {
			out = append(out, field.Name)
		}
	}
	return out
}

// FormSurfaceFromPairs builds a FormSurface from "name=value" pairs, the
// shape used by command-line flags. Pairs without "=" are rejected.
func FormSurfaceFromPairs(pairs []string) (FormSurface, []string) {
	out := FormSurface{}
	var invalid []string
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			invalid = append(invalid, pair)
			continue
		}
		out[name] = append(out[name], value)
	}
	return out, invalid
}

// MapSurface is a scripted surface: single values by name, checked option
// values as a set per field.
type MapSurface struct {
	Values   map[string]string
	Selected map[string][]string
}

var _ Surface = MapSurface{}

// Value returns the scripted value for name.
func (s MapSurface) Value(name string) string {
	return s.Values[name]
}

// Checked reports whether optionValue is listed for name.
func (s MapSurface) Checked(name, optionValue string) bool {
	for _, value := range s.Selected[name] {
		if value == optionValue {
			return true
		}
	}
	return false
}
