// Package vanilla renders a form schema to a plain HTML fragment: Go-built
// controls from a component registry wrapped by a pongo2 form template.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/goliatone/go-formdispatch/pkg/render"
	rendertemplate "github.com/goliatone/go-formdispatch/pkg/render/template"
	"github.com/goliatone/go-formdispatch/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formdispatch/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// Name is the registry name of this renderer.
const Name = "vanilla"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	stylesheets      []string
	inlineStyles     bool
}

// WithTemplatesFS replaces the embedded template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithStylesheet links an external stylesheet instead of inlining the
// built-in one.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
			cfg.inlineStyles = false
		}
	}
}

// Renderer produces HTML form fragments.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	components   *components.Registry
	stylesheets  []string
	inlineStyles bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), inlineStyles: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	registry := cfg.components
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}

	return &Renderer{
		templates:    templates,
		components:   registry,
		stylesheets:  cfg.stylesheets,
		inlineStyles: cfg.inlineStyles,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the form. A nil schema renders nothing: blank YAML means no
// form is selected.
func (r *Renderer) Render(_ context.Context, form *schema.FormSchema, opts render.RenderOptions) ([]byte, error) {
	if form == nil {
		return nil, nil
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	descriptor := opts.Apply(render.DescribeForm(form))
	fields := newComponentRenderer(r.templates, r.components, func(key, fallback string) string {
		return opts.T(key, fallback)
	})

	fieldsHTML := make([]string, 0, len(descriptor.Fields))
	for _, field := range descriptor.Fields {
		markup, err := fields.render(field)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		fieldsHTML = append(fieldsHTML, markup)
	}

	stylesheets, scripts := fields.assets()
	stylesheets = append(append([]string(nil), r.stylesheets...), stylesheets...)

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodPost
	}

	title := descriptor.Title
	if strings.TrimSpace(title) == "" {
		title = opts.T("form.untitled", "Untitled Form")
	}

	data := map[string]any{
		"title":         title,
		"description":   descriptor.Description,
		"action":        opts.Action,
		"form_id":       strings.TrimSpace(opts.FormID),
		"method":        method,
		"fields_html":   fieldsHTML,
		"form_errors":   render.MergeFormErrors(opts.FormErrors),
		"hidden_fields": sortedHidden(opts.Hidden),
		"submit_label":  opts.T("form.submit", "Submit "+title, map[string]any{"Title": title}),
		"stylesheets":   stylesheets,
		"scripts":       scripts,
		"classes": map[string]any{
			"form":    string(ClassForm),
			"header":  string(ClassHeader),
			"errors":  string(ClassErrors),
			"actions": string(ClassActions),
		},
	}
	if r.inlineStyles {
		data["inline_styles"] = defaultStylesheet()
	}
	for key, fn := range render.TemplateI18nFuncs(opts) {
		data[key] = fn
	}

	out, err := r.templates.RenderTemplate("templates/form.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(out), nil
}

func sortedHidden(fields []render.HiddenField) []render.HiddenField {
	return render.SortedHiddenFields(render.MergeHiddenFields(nil, fields...))
}
