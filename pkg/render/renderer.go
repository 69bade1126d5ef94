package render

import (
	"context"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// Renderer turns a schema into an output representation (HTML, a filled
// payload from terminal prompts, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form *schema.FormSchema, options RenderOptions) ([]byte, error)
}
