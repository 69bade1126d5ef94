package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/render/template"
	"github.com/goliatone/go-formdispatch/pkg/renderers/vanilla/components"
)

// componentRenderer renders one form's fields and remembers which components
// were used so their assets are emitted once.
type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	translate func(key, fallback string) string
	used      map[render.ControlKind]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, translate func(key, fallback string) string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates: templates,
		registry:  registry,
		translate: translate,
		used:      make(map[render.ControlKind]struct{}),
	}
}

func (r *componentRenderer) render(field render.Descriptor) (string, error) {
	component, ok := r.registry.Lookup(field.Control)
	if !ok {
		return "", fmt.Errorf("no component for %s control of field %q", field.Control, field.Name)
	}

	var control bytes.Buffer
	if err := component.Render(&control, field, components.ComponentData{
		Template: r.templates,
		T:        r.translate,
	}); err != nil {
		return "", fmt.Errorf("render %s for field %q: %w", field.Control, field.Name, err)
	}
	r.used[field.Control] = struct{}{}

	note, err := RenderNote(field.Note)
	if err != nil {
		return "", fmt.Errorf("render note for field %q: %w", field.Name, err)
	}
	return buildFieldMarkup(field, control.String(), note), nil
}

func (r *componentRenderer) assets() ([]string, []components.Script) {
	return r.registry.Assets(slices.Sorted(maps.Keys(r.used)))
}

func buildFieldMarkup(field render.Descriptor, control, note string) string {
	var b strings.Builder
	b.Grow(len(control) + len(note) + 256)

	b.WriteString(`<div class="`)
	b.WriteString(string(ClassField))
	b.WriteString(`" data-field="`)
	b.WriteString(html.EscapeString(field.Name))
	b.WriteString(`" data-kind="`)
	b.WriteString(html.EscapeString(string(field.Field)))
	b.WriteString(`">`)

	// Checkbox groups have no single control to point a label at.
	if field.Control == render.ControlCheckboxGroup {
		b.WriteString(`<span class="`)
	} else {
		b.WriteString(`<label for="`)
		b.WriteString(html.EscapeString(field.ID))
		b.WriteString(`" class="`)
	}
	b.WriteString(string(ClassLabel))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(field.Label))
	if field.Required {
		b.WriteString(` <span class="`)
		b.WriteString(string(ClassRequired))
		b.WriteString(`" aria-hidden="true">*</span>`)
	}
	if field.Control == render.ControlCheckboxGroup {
		b.WriteString(`</span>`)
	} else {
		b.WriteString(`</label>`)
	}

	b.WriteString(control)

	if note != "" {
		b.WriteString(`<div class="`)
		b.WriteString(string(ClassNote))
		b.WriteString(`">`)
		b.WriteString(note)
		b.WriteString(`</div>`)
	}

	if len(field.Errors) > 0 {
		b.WriteString(`<ul class="`)
		b.WriteString(string(ClassErrors))
		b.WriteString(`" id="`)
		b.WriteString(html.EscapeString(field.ID + "-errors"))
		b.WriteString(`" role="alert">`)
		for _, msg := range field.Errors {
			b.WriteString(`<li>`)
			b.WriteString(html.EscapeString(msg))
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul>`)
	}

	b.WriteString(`</div>`)
	return b.String()
}
