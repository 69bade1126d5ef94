package schema

import (
	"errors"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes YAML text into a FormSchema. Blank input means "no schema
// selected" and yields (nil, nil). Every other failure is a *ParseError.
func Parse(text string) (*FormSchema, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		return nil, &ParseError{Message: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &ParseError{Message: "document is empty"}
	}

	doc := resolve(root.Content[0])
	if doc.Kind != yaml.MappingNode {
		return nil, errorAt(doc, "top level must be a mapping")
	}

	form := &FormSchema{}
	sawFields := false
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		value := resolve(doc.Content[i+1])

		var err error
		switch key {
		case "title":
			form.Title, err = scalarText(value, "title")
		case "description":
			form.Description, err = scalarText(value, "description")
		case "github":
			form.GitHub, err = parseGitHub(value)
		case "fields":
			sawFields = true
			form.Fields, err = parseFields(value)
		}
		if err != nil {
			return nil, err
		}
	}

	if !sawFields {
		return nil, errorAt(doc, "fields must be a sequence")
	}
	return form, nil
}

func parseGitHub(node *yaml.Node) (GitHub, error) {
	var out GitHub
	if isNull(node) {
		return out, nil
	}
	if node.Kind != yaml.MappingNode {
		return out, errorAt(node, "github must be a mapping")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])

		var err error
		switch key {
		case "repository":
			out.Repository, err = scalarText(value, "github.repository")
		case "workflow":
			out.Workflow, err = scalarText(value, "github.workflow")
		case "event_type":
			out.EventType, err = scalarText(value, "github.event_type")
		}
		if err != nil {
			return GitHub{}, err
		}
	}
	return out, nil
}

func parseFields(node *yaml.Node) ([]FieldDef, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, errorAt(node, "fields must be a sequence")
	}
	fields := make([]FieldDef, 0, len(node.Content))
	for idx, item := range node.Content {
		field, err := parseField(idx, resolve(item))
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func parseField(idx int, node *yaml.Node) (FieldDef, error) {
	if node.Kind != yaml.MappingNode {
		return FieldDef{}, errorAt(node, "fields[%d] must be a mapping", idx)
	}

	var (
		field FieldDef
		seen  = make(map[string]bool, len(node.Content)/2)
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])
		seen[key] = true

		var err error
		switch key {
		case "name":
			field.Name, err = scalarText(value, "name")
			field.Name = strings.TrimSpace(field.Name)
		case "label":
			field.Label, err = scalarText(value, "label")
		case "type":
			field.RawType, err = scalarText(value, "type")
			field.RawType = strings.TrimSpace(field.RawType)
		case "required":
			field.Required, err = scalarBool(value, "required")
		case "placeholder":
			field.Placeholder, err = scalarText(value, "placeholder")
		case "note":
			field.Note, err = scalarText(value, "note")
		case "min":
			field.Min, err = scalarText(value, "min")
		case "max":
			field.Max, err = scalarText(value, "max")
		case "default":
			field.Default, err = scalarText(value, "default")
		case "options":
			field.Options, err = parseOptions(value)
		}
		if err != nil {
			return FieldDef{}, withFieldContext(err, idx, field.Name)
		}
	}

	for _, required := range []string{"name", "label", "type"} {
		if !seen[required] {
			return FieldDef{}, errorAt(node, "%smissing %q", fieldContext(idx, field.Name), required)
		}
	}
	if field.Name == "" {
		return FieldDef{}, errorAt(node, "%sname must not be empty", fieldContext(idx, ""))
	}
	if field.RawType == "" {
		return FieldDef{}, errorAt(node, "%stype must not be empty", fieldContext(idx, field.Name))
	}

	field.Kind = ParseKind(field.RawType)
	return field, nil
}

func parseOptions(node *yaml.Node) ([]Option, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errorAt(node, "options must be a sequence")
	}
	options := make([]Option, 0, len(node.Content))
	for idx, item := range node.Content {
		item = resolve(item)
		switch item.Kind {
		case yaml.ScalarNode:
			options = append(options, Option{Value: item.Value, Label: item.Value})
		case yaml.MappingNode:
			var (
				opt      Option
				hasValue bool
				hasLabel bool
			)
			for i := 0; i+1 < len(item.Content); i += 2 {
				value := resolve(item.Content[i+1])
				var err error
				switch item.Content[i].Value {
				case "value":
					hasValue = true
					opt.Value, err = scalarText(value, "option value")
				case "label":
					hasLabel = true
					opt.Label, err = scalarText(value, "option label")
				}
				if err != nil {
					return nil, err
				}
			}
			if !hasValue {
				return nil, errorAt(item, "options[%d] missing \"value\"", idx)
			}
			if !hasLabel {
				opt.Label = opt.Value
			}
			options = append(options, opt)
		default:
			return nil, errorAt(item, "options[%d] must be a mapping", idx)
		}
	}
	return options, nil
}

func fieldContext(idx int, name string) string {
	if name != "" {
		return "field " + strconv.Quote(name) + ": "
	}
	return "fields[" + strconv.Itoa(idx) + "]: "
}

func withFieldContext(err error, idx int, name string) error {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return &ParseError{Message: fieldContext(idx, name) + parseErr.Message, Line: parseErr.Line}
	}
	return err
}

func scalarText(node *yaml.Node, key string) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", errorAt(node, "%s must be a scalar", key)
	}
	if node.Tag == "!!null" {
		return "", nil
	}
	return node.Value, nil
}

func scalarBool(node *yaml.Node, key string) (bool, error) {
	if isNull(node) {
		return false, nil
	}
	var out bool
	if node.Kind != yaml.ScalarNode || node.Decode(&out) != nil {
		return false, errorAt(node, "%s must be a boolean", key)
	}
	return out, nil
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
