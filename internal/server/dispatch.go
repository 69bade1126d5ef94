package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/goliatone/go-formdispatch/internal/githubdispatch"
	"github.com/goliatone/go-formdispatch/internal/logger"
)

const dispatchSchemaURL = "https://formdispatch.local/schemas/dispatch.schema.json"

// dispatchFields are checked for presence in this order before any other
// validation so the first missing one is reported.
var dispatchFields = []string{"event_type", "client_payload", "github_token", "github_repository"}

type dispatchBody struct {
	EventType        string          `json:"event_type"`
	ClientPayload    json.RawMessage `json:"client_payload"`
	GitHubToken      string          `json:"github_token"`
	GitHubRepository string          `json:"github_repository"`
}

func compileDispatchSchema() (*jsonschema.Schema, error) {
	raw, err := apiFS.ReadFile("api/dispatch.schema.json")
	if err != nil {
		return nil, fmt.Errorf("server: read dispatch schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("server: decode dispatch schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(dispatchSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("server: add dispatch schema: %w", err)
	}
	compiled, err := compiler.Compile(dispatchSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("server: compile dispatch schema: %w", err)
	}
	return compiled, nil
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	object, ok := instance.(map[string]any)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	for _, key := range dispatchFields {
		if value, present := object[key]; !present || isBlank(value) {
			writeError(w, http.StatusBadRequest, "Missing required field: "+key)
			return
		}
	}
	if err := s.bodySchema.Validate(instance); err != nil {
		if repo, _ := object["github_repository"].(string); repo != "" {
			if _, _, splitErr := githubdispatch.SplitRepository(repo); splitErr != nil {
				s.dispatchOutcome(w, r, githubdispatch.Request{Repository: repo})
				return
			}
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid dispatch request", Details: err.Error()})
		return
	}

	var body dispatchBody
	if err := json.Unmarshal(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}
	s.dispatchOutcome(w, r, githubdispatch.Request{
		EventType:     body.EventType,
		ClientPayload: body.ClientPayload,
		Token:         body.GitHubToken,
		Repository:    body.GitHubRepository,
	})
}

func (s *Server) dispatchOutcome(w http.ResponseWriter, r *http.Request, req githubdispatch.Request) {
	outcome := s.forward(r, req)
	writeJSON(w, outcome.Status, outcome.Body)
}

// forward runs the dispatch service and logs failures worth investigating.
func (s *Server) forward(r *http.Request, req githubdispatch.Request) githubdispatch.Outcome {
	outcome, err := s.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		logger.Error(r.Context(), "github dispatch failed", err,
			"repository", req.Repository, "event_type", req.EventType)
	} else {
		logger.Info(r.Context(), "github dispatch",
			"repository", req.Repository, "event_type", req.EventType, "status", outcome.Status)
	}
	return outcome
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case map[string]any:
		return len(v) == 0
	}
	return false
}
