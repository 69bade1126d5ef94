package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// loadAPIDocument parses and validates the embedded OpenAPI description and
// returns it as JSON.
func loadAPIDocument(ctx context.Context) ([]byte, error) {
	raw, err := apiFS.ReadFile("api/openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("server: read openapi: %w", err)
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("server: load openapi: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("server: validate openapi: %w", err)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("server: encode openapi: %w", err)
	}
	return out, nil
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.apiDoc)
}
