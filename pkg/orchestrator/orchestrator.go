package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formdispatch/internal/loader"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/renderers/tui"
	"github.com/goliatone/go-formdispatch/pkg/renderers/vanilla"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

const defaultRendererName = "vanilla"

// ErrNoSchema is returned when the resolved document is blank.
var ErrNoSchema = errors.New("orchestrator: document defines no form")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(l schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = l
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer appends a Transformer that runs after parsing and before
// rendering. Transformers run in registration order.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.transformers = append(o.transformers, t)
		}
	}
}

// Orchestrator coordinates the pipeline from YAML document to rendered output.
type Orchestrator struct {
	loader          schema.Loader
	registry        *render.Registry
	defaultRenderer string
	transformers    []Transformer
	initialiseErr   error
}

// New constructs an Orchestrator. Missing dependencies fall back to the
// built-in loader and a registry holding the vanilla and tui renderers.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// Source identifies where the YAML document lives. Optional when Document
	// or Text is supplied.
	Source schema.Source

	// Document bypasses the loader.
	Document *schema.Document

	// Text bypasses both loader and Document.
	Text string

	// Renderer names the renderer to use. Empty selects the default.
	Renderer string

	RenderOptions render.RenderOptions
}

// Generate executes load → parse → transform → render and returns the
// rendered bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	form, err := o.resolveSchema(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, form, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Schema runs the load → parse → transform half of the pipeline.
func (o *Orchestrator) Schema(ctx context.Context, req Request) (*schema.FormSchema, error) {
	return o.resolveSchema(ctx, req)
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

func (o *Orchestrator) resolveSchema(ctx context.Context, req Request) (*schema.FormSchema, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	text, err := o.resolveText(ctx, req)
	if err != nil {
		return nil, err
	}

	form, err := schema.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse document: %w", err)
	}
	if form == nil {
		return nil, ErrNoSchema
	}

	for _, t := range o.transformers {
		if err := t.Transform(ctx, form); err != nil {
			return nil, fmt.Errorf("orchestrator: transform form: %w", err)
		}
	}
	return form, nil
}

func (o *Orchestrator) resolveText(ctx context.Context, req Request) (string, error) {
	if req.Text != "" {
		return req.Text, nil
	}
	if req.Document != nil {
		return req.Document.Text(), nil
	}
	if req.Source == nil {
		return "", errors.New("orchestrator: source, document or text is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return "", fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc.Text(), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = loader.New(schema.NewLoaderOptions())
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
		o.registry.MustRegister(tui.New())
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
