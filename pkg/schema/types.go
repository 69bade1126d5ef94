// Package schema turns YAML form definitions into a typed FormSchema. The
// parser only interprets shape: a top-level mapping, a `fields` sequence and
// the fixed field vocabulary. Deeper checks live in pkg/validation.
package schema

import "strings"

// Kind enumerates the field vocabulary understood by renderers and the
// collector. Unknown YAML types decode to KindUnsupported.
type Kind string

const (
	KindText        Kind = "text"
	KindEmail       Kind = "email"
	KindNumber      Kind = "number"
	KindDatetime    Kind = "datetime"
	KindDropdown    Kind = "dropdown"
	KindCheckbox    Kind = "checkbox"
	KindTextarea    Kind = "textarea"
	KindUnsupported Kind = "unsupported"
)

// ParseKind maps a raw YAML type onto a Kind. `datetime-local` is accepted as
// an alias for datetime because stored forms use the HTML input name.
func ParseKind(raw string) Kind {
	switch strings.TrimSpace(raw) {
	case "text":
		return KindText
	case "email":
		return KindEmail
	case "number":
		return KindNumber
	case "datetime", "datetime-local":
		return KindDatetime
	case "dropdown":
		return KindDropdown
	case "checkbox":
		return KindCheckbox
	case "textarea":
		return KindTextarea
	default:
		return KindUnsupported
	}
}

// Supported reports whether renderers and the collector handle the kind.
func (k Kind) Supported() bool {
	return k != KindUnsupported && k != ""
}

// HasOptions reports whether the kind draws its values from an option list.
func (k Kind) HasOptions() bool {
	return k == KindDropdown || k == KindCheckbox
}

// MultiValued reports whether collected values are sequences.
func (k Kind) MultiValued() bool {
	return k == KindCheckbox
}

// Bounded reports whether min/max apply to the kind.
func (k Kind) Bounded() bool {
	return k == KindNumber || k == KindDatetime
}

// Option is a single dropdown or checkbox choice.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// GitHub carries the dispatch target declared by a form.
type GitHub struct {
	Repository string `json:"repository,omitempty" yaml:"repository"`
	Workflow   string `json:"workflow,omitempty" yaml:"workflow"`
	EventType  string `json:"event_type,omitempty" yaml:"event_type"`
}

// FieldDef describes one form field. Min, Max and Default keep the YAML scalar
// text; nothing is coerced.
type FieldDef struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Kind        Kind     `json:"kind"`
	RawType     string   `json:"type"`
	Required    bool     `json:"required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Note        string   `json:"note,omitempty"`
	Min         string   `json:"min,omitempty"`
	Max         string   `json:"max,omitempty"`
	Default     string   `json:"default,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

// FormSchema is the typed view of a stored YAML document.
type FormSchema struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	GitHub      GitHub     `json:"github"`
	Fields      []FieldDef `json:"fields"`
}

// Field returns the field with the given name.
func (s *FormSchema) Field(name string) (FieldDef, bool) {
	if s == nil {
		return FieldDef{}, false
	}
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDef{}, false
}

// UnsupportedFields lists fields whose kind is not part of the vocabulary.
func (s *FormSchema) UnsupportedFields() []FieldDef {
	if s == nil {
		return nil
	}
	var out []FieldDef
	for _, field := range s.Fields {
		if !field.Kind.Supported() {
			out = append(out, field)
		}
	}
	return out
}
