package tui

import "github.com/goliatone/go-formdispatch/pkg/model"

// OutputFormat controls how Render serializes collected values.
type OutputFormat string

const (
	// OutputFormatJSON emits the FormValues record as JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits one "label: value" line per field.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// SubmitTransformer may rewrite collected values before serialization.
type SubmitTransformer func(*model.FormValues) (*model.FormValues, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the serialization of Render.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer installs a hook run after collection.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}
