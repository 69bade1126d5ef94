package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// Transformer mutates a parsed FormSchema before it is rendered.
type Transformer interface {
	Transform(ctx context.Context, form *schema.FormSchema) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *schema.FormSchema) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *schema.FormSchema) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// PresetTransformer applies declarative overrides loaded from YAML, typically
// used to retarget stored forms per environment:
//
//	title: "Deploy (staging)"
//	github:
//	  repository: acme/staging-infra
//	fields:
//	  serverName:
//	    placeholder: "stg-web-01"
//	    required: true
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Title       *string               `yaml:"title"`
	Description *string               `yaml:"description"`
	GitHub      presetGitHub          `yaml:"github"`
	Fields      map[string]fieldPatch `yaml:"fields"`
}

type presetGitHub struct {
	Repository *string `yaml:"repository"`
	Workflow   *string `yaml:"workflow"`
	EventType  *string `yaml:"event_type"`
}

type fieldPatch struct {
	Label       *string `yaml:"label"`
	Placeholder *string `yaml:"placeholder"`
	Note        *string `yaml:"note"`
	Default     *string `yaml:"default"`
	Required    *bool   `yaml:"required"`
}

// NewPresetTransformer constructs a transformer from raw YAML bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from the provided
// filesystem path.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the patches onto form. Unknown field names are errors.
func (t *PresetTransformer) Transform(ctx context.Context, form *schema.FormSchema) error {
	if form == nil {
		return errors.New("preset transformer: form is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := t.document
	setString(&form.Title, doc.Title)
	setString(&form.Description, doc.Description)
	setString(&form.GitHub.Repository, doc.GitHub.Repository)
	setString(&form.GitHub.Workflow, doc.GitHub.Workflow)
	setString(&form.GitHub.EventType, doc.GitHub.EventType)

	for name, patch := range doc.Fields {
		idx := fieldIndex(form, name)
		if idx < 0 {
			return fmt.Errorf("preset transformer: field %q not found", name)
		}
		field := &form.Fields[idx]
		setString(&field.Label, patch.Label)
		setString(&field.Placeholder, patch.Placeholder)
		setString(&field.Note, patch.Note)
		setString(&field.Default, patch.Default)
		if patch.Required != nil {
			field.Required = *patch.Required
		}
	}
	return nil
}

func fieldIndex(form *schema.FormSchema, name string) int {
	for i := range form.Fields {
		if form.Fields[i].Name == name {
			return i
		}
	}
	return -1
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}
