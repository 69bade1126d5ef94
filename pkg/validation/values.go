package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// ValuesPrefix is the JSON pointer of the collected values inside a
// dispatch payload. ValueErrors keys its messages below it.
const ValuesPrefix = "/form_data"

const emailPattern = `^[^@\s]+@[^@\s]+\.[^@\s]+$`

var printer = message.NewPrinter(language.English)

// ValuesSchema describes the constraints a form puts on its collected
// values as a JSON Schema document. Empty values are not constrained here;
// required fields are reported by collect.Missing.
func ValuesSchema(form *schema.FormSchema) map[string]any {
	properties := map[string]any{}
	if form != nil {
		for _, field := range form.Fields {
			if prop := fieldSchema(field); prop != nil {
				properties[field.Name] = prop
			}
		}
	}
	return map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"properties": properties,
	}
}

func fieldSchema(field schema.FieldDef) map[string]any {
	switch field.Kind {
	case schema.KindNumber:
		prop := map[string]any{"type": "number"}
		if v, err := strconv.ParseFloat(strings.TrimSpace(field.Min), 64); err == nil {
			prop["minimum"] = v
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(field.Max), 64); err == nil {
			prop["maximum"] = v
		}
		return prop
	case schema.KindEmail:
		return map[string]any{"type": "string", "pattern": emailPattern}
	case schema.KindDropdown:
		return map[string]any{"enum": optionValues(field)}
	case schema.KindCheckbox:
		return map[string]any{
			"type":        "array",
			"uniqueItems": true,
			"items":       map[string]any{"enum": optionValues(field)},
		}
	case schema.KindText, schema.KindTextarea, schema.KindDatetime:
		return map[string]any{"type": "string"}
	}
	return nil
}

func optionValues(field schema.FieldDef) []any {
	out := make([]any, 0, len(field.Options))
	for _, opt := range field.Options {
		out = append(out, opt.Value)
	}
	return out
}

// ValueErrors checks collected values against ValuesSchema. Messages are
// keyed by JSON pointer under ValuesPrefix, e.g. "/form_data/cores".
func ValueErrors(form *schema.FormSchema, values *model.FormValues) (map[string][]string, error) {
	if form == nil || values == nil {
		return nil, nil
	}

	const url = "formdispatch://values.schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, ValuesSchema(form)); err != nil {
		return nil, fmt.Errorf("validation: add values schema: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("validation: compile values schema: %w", err)
	}

	err = compiled.Validate(valuesInstance(form, values))
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("validation: validate values: %w", err)
	}

	out := map[string][]string{}
	collectLeaves(verr, form, out)
	return out, nil
}

// valuesInstance keeps non-empty values only. Number fields that parse are
// passed as numbers so range keywords apply; anything else stays a string.
func valuesInstance(form *schema.FormSchema, values *model.FormValues) map[string]any {
	instance := map[string]any{}
	values.Each(func(name string, value model.Value) {
		if value.Empty() {
			return
		}
		field, _ := form.Field(name)
		if value.IsMulti() {
			items := make([]any, 0, len(value.Strings()))
			for _, item := range value.Strings() {
				items = append(items, item)
			}
			instance[name] = items
			return
		}
		text := value.String()
		if field.Kind == schema.KindNumber {
			if n, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
				instance[name] = n
				return
			}
		}
		instance[name] = text
	})
	return instance
}

func collectLeaves(verr *jsonschema.ValidationError, form *schema.FormSchema, out map[string][]string) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			collectLeaves(cause, form, out)
		}
		return
	}
	path := ValuesPrefix
	for _, segment := range verr.InstanceLocation {
		path += "/" + segment
	}
	out[path] = append(out[path], describe(verr, form))
}

func describe(verr *jsonschema.ValidationError, form *schema.FormSchema) string {
	var field schema.FieldDef
	if len(verr.InstanceLocation) > 0 {
		field, _ = form.Field(verr.InstanceLocation[0])
	}
	keyword := ""
	if kw := verr.ErrorKind.KeywordPath(); len(kw) > 0 {
		keyword = kw[len(kw)-1]
	}
	switch keyword {
	case "minimum":
		return "Must be at least " + field.Min
	case "maximum":
		return "Must be at most " + field.Max
	case "enum":
		return "Not one of the listed options"
	case "pattern":
		if field.Kind == schema.KindEmail {
			return "Must be an email address"
		}
	case "type":
		if field.Kind == schema.KindNumber {
			return "Must be a number"
		}
	case "uniqueItems":
		return "Options may only be selected once"
	}
	return verr.ErrorKind.LocalizedString(printer)
}
