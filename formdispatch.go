// Package formdispatch exposes the YAML form pipeline through a small set of
// top-level helpers.
package formdispatch

import (
	"context"

	"github.com/goliatone/go-formdispatch/internal/loader"
	"github.com/goliatone/go-formdispatch/pkg/orchestrator"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// RenderOptions aliases render.RenderOptions for callers that only import the
// root package.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(schema.NewLoaderOptions(options...))
}

// GenerateHTML loads the YAML source and renders it with the named renderer
// (the vanilla HTML renderer when empty).
func GenerateHTML(ctx context.Context, source schema.Source, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:   source,
		Renderer: rendererName,
	})
}

// GenerateHTMLFromText renders YAML text already in memory.
func GenerateHTMLFromText(ctx context.Context, text, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Text:     text,
		Renderer: rendererName,
	})
}
