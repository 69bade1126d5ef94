package components

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdispatch/pkg/render"
)

const (
	templatePrefix = "templates/components/"
)

// NewDefaultRegistry returns a registry holding one component per control
// kind. Each renders a partial from the vanilla template bundle.
func NewDefaultRegistry() *Registry {
	registry := New()
	registry.MustRegister(render.ControlInput, Component{
		Render: templateComponentRenderer(templatePrefix + "input.tmpl"),
	})
	registry.MustRegister(render.ControlTextarea, Component{
		Render: templateComponentRenderer(templatePrefix + "textarea.tmpl"),
	})
	registry.MustRegister(render.ControlSelect, Component{
		Render: templateComponentRenderer(templatePrefix + "select.tmpl"),
	})
	// Native validation cannot express "at least one of a group", so the
	// partial carries required as data-required for the runtime script.
	registry.MustRegister(render.ControlCheckboxGroup, Component{
		Render: templateComponentRenderer(templatePrefix + "checkbox_group.tmpl"),
	})
	registry.MustRegister(render.ControlUnsupported, Component{
		Render: templateComponentRenderer(templatePrefix + "unsupported.tmpl"),
	})
	return registry
}

func templateComponentRenderer(templateName string) Renderer {
	return func(buf *bytes.Buffer, field render.Descriptor, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		payload := map[string]any{
			"field": fieldPayload(field),
			"label": data.Translate("form.unsupported", "Unsupported field type"),
		}
		rendered, err := data.Template.RenderTemplate(templateName, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// fieldPayload flattens a descriptor into template values. Optional
// attributes are blank when they should be omitted.
func fieldPayload(field render.Descriptor) map[string]any {
	choices := make([]any, 0, len(field.Choices))
	for _, choice := range field.Choices {
		choices = append(choices, map[string]any{
			"id":       choice.ID,
			"value":    choice.Value,
			"label":    choice.Label,
			"selected": choice.Selected,
		})
	}

	rows := ""
	if field.Rows > 0 {
		rows = strconv.Itoa(field.Rows)
	}

	return map[string]any{
		"id":          field.ID,
		"name":        field.Name,
		"input_type":  field.InputType,
		"raw_type":    field.RawType,
		"value":       field.Value,
		"placeholder": strings.TrimSpace(field.Placeholder),
		"min":         strings.TrimSpace(field.Min),
		"max":         strings.TrimSpace(field.Max),
		"rows":        rows,
		"required":    field.Required,
		"invalid":     len(field.Errors) > 0,
		"choices":     choices,
	}
}
