package render

// RenderOptions carry per-request data renderers use without touching the
// schema.
type RenderOptions struct {
	// Action is the form's submit target. Empty leaves the attribute out.
	Action string
	// Method defaults to POST.
	Method string
	// FormID sets the form element's id so controls outside it can join via
	// the form attribute.
	FormID string
	// Values pre-populates controls by field name. Checkbox groups check every
	// listed option; other controls take the first value.
	Values map[string][]string
	// Errors attaches inline messages by field name.
	Errors map[string][]string
	// FormErrors are shown above the fields.
	FormErrors []string
	// Hidden fields are emitted before the visible controls.
	Hidden []HiddenField
	// Locale and Translator localize the renderer's own strings.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// Apply returns the descriptor with options' values and errors attached.
func (o RenderOptions) Apply(form FormDescriptor) FormDescriptor {
	out := form
	out.Fields = make([]Descriptor, len(form.Fields))
	for i, field := range form.Fields {
		if values, ok := o.Values[field.Name]; ok {
			field = field.Prefill(values)
		}
		if msgs := normalizeMessages(o.Errors[field.Name]); len(msgs) > 0 {
			field.Errors = msgs
		}
		if field.Control == ControlSelect {
			field.Choices = cloneChoices(field.Choices)
			for j := range field.Choices {
				if field.Choices[j].Sentinel {
					field.Choices[j].Label = o.T("form.select_placeholder", SelectPlaceholder)
				}
			}
		}
		out.Fields[i] = field
	}
	return out
}

// T translates key, falling back to fallback.
func (o RenderOptions) T(key, fallback string, args ...any) string {
	return translate(o.Locale, key, fallback, o.Translator, o.OnMissing, args...)
}
