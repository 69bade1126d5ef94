package formdispatch

import (
	"io/fs"

	"github.com/goliatone/go-formdispatch/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// StylesAssetsFS exposes the built-in stylesheet.
func StylesAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
