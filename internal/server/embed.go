package server

import "embed"

//go:embed api/openapi.yaml api/dispatch.schema.json
var apiFS embed.FS

//go:embed templates/*.tmpl
var templatesFS embed.FS
