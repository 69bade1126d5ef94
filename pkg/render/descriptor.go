package render

import (
	"strings"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// ControlKind identifies the interactive control a field becomes.
type ControlKind string

const (
	ControlInput         ControlKind = "input"
	ControlTextarea      ControlKind = "textarea"
	ControlSelect        ControlKind = "select"
	ControlCheckboxGroup ControlKind = "checkbox-group"
	ControlUnsupported   ControlKind = "unsupported"
)

// SelectPlaceholder is the label of the empty choice prepended to optional
// dropdowns.
const SelectPlaceholder = "Select an option"

// TextareaRows is the visible height of textarea controls.
const TextareaRows = 4

// Choice is one option of a select or one toggle of a checkbox group.
type Choice struct {
	// ID is "<field>_<value>" for checkbox toggles and the field name for
	// select options.
	ID       string
	Value    string
	Label    string
	Selected bool
	// Sentinel marks the empty "Select an option" entry.
	Sentinel bool
}

// Descriptor is the renderer-neutral description of one field's control.
type Descriptor struct {
	Name        string
	ID          string
	Label       string
	Control     ControlKind
	Field       schema.Kind
	RawType     string
	InputType   string
	Required    bool
	Placeholder string
	Note        string
	Min         string
	Max         string
	Value       string
	Rows        int
	Choices     []Choice
	Errors      []string
}

// FormDescriptor describes a whole form in schema order.
type FormDescriptor struct {
	Title       string
	Description string
	Fields      []Descriptor
}

// Describe maps one field definition to its control. It is a pure function
// of the definition.
func Describe(field schema.FieldDef) Descriptor {
	d := Descriptor{
		Name:     field.Name,
		ID:       field.Name,
		Label:    field.Label,
		Field:    field.Kind,
		RawType:  field.RawType,
		Required: field.Required,
		Note:     field.Note,
	}

	switch field.Kind {
	case schema.KindText, schema.KindEmail, schema.KindNumber, schema.KindDatetime:
		d.Control = ControlInput
		d.InputType = inputType(field.Kind)
		d.Placeholder = field.Placeholder
		d.Value = field.Default
		if field.Kind.Bounded() {
			d.Min = field.Min
			d.Max = field.Max
		}
	case schema.KindTextarea:
		d.Control = ControlTextarea
		d.Placeholder = field.Placeholder
		d.Value = field.Default
		d.Rows = TextareaRows
	case schema.KindDropdown:
		d.Control = ControlSelect
		d.Value = field.Default
		d.Choices = selectChoices(field)
	case schema.KindCheckbox:
		d.Control = ControlCheckboxGroup
		d.Choices = make([]Choice, 0, len(field.Options))
		for _, opt := range field.Options {
			d.Choices = append(d.Choices, Choice{
				ID:    CheckboxID(field.Name, opt.Value),
				Value: opt.Value,
				Label: opt.Label,
			})
		}
	default:
		d.Control = ControlUnsupported
	}
	return d
}

// DescribeForm describes every field of form in order. A nil form yields an
// empty descriptor.
func DescribeForm(form *schema.FormSchema) FormDescriptor {
	if form == nil {
		return FormDescriptor{}
	}
	out := FormDescriptor{
		Title:       form.Title,
		Description: form.Description,
		Fields:      make([]Descriptor, 0, len(form.Fields)),
	}
	for _, field := range form.Fields {
		out.Fields = append(out.Fields, Describe(field))
	}
	return out
}

// CheckboxID returns the DOM id of one checkbox toggle.
func CheckboxID(name, value string) string {
	return name + "_" + value
}

// Prefill applies submitted values to a descriptor. Single-valued controls
// take the first value; checkbox groups check every listed option.
func (d Descriptor) Prefill(values []string) Descriptor {
	if values == nil {
		return d
	}
	switch d.Control {
	case ControlInput, ControlTextarea:
		d.Value = first(values)
	case ControlSelect:
		d.Value = first(values)
		d.Choices = cloneChoices(d.Choices)
		for i := range d.Choices {
			d.Choices[i].Selected = !d.Choices[i].Sentinel && d.Choices[i].Value == d.Value
		}
	case ControlCheckboxGroup:
		d.Choices = cloneChoices(d.Choices)
		for i := range d.Choices {
			d.Choices[i].Selected = contains(values, d.Choices[i].Value)
		}
	}
	return d
}

func inputType(kind schema.Kind) string {
	switch kind {
	case schema.KindEmail:
		return "email"
	case schema.KindNumber:
		return "number"
	case schema.KindDatetime:
		return "datetime-local"
	default:
		return "text"
	}
}

func selectChoices(field schema.FieldDef) []Choice {
	choices := make([]Choice, 0, len(field.Options)+1)
	if !field.Required {
		choices = append(choices, Choice{ID: field.Name, Label: SelectPlaceholder, Sentinel: true})
	}
	for _, opt := range field.Options {
		choices = append(choices, Choice{
			ID:       field.Name,
			Value:    opt.Value,
			Label:    opt.Label,
			Selected: field.Default != "" && opt.Value == field.Default,
		})
	}
	return choices
}

func cloneChoices(in []Choice) []Choice {
	return append([]Choice(nil), in...)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

// HasNote reports whether the descriptor carries auxiliary guidance.
func (d Descriptor) HasNote() bool {
	return strings.TrimSpace(d.Note) != ""
}
