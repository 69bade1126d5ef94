package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-formdispatch/internal/logger"
	"github.com/goliatone/go-formdispatch/internal/store"
	"github.com/goliatone/go-formdispatch/pkg/registry"
)

const (
	msgFormNotFound   = "Form not found"
	msgFormExists     = "Form with this name already exists"
	msgNothingChanged = "Nothing to update"
	msgInvalidJSON    = "Invalid JSON body"
	msgInvalidName    = "Form name must contain only lowercase letters, numbers, and hyphens"
)

// formFields lists the writable attributes in the order they are checked.
var formFields = []string{"name", "title", "yamlContent"}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := s.store.List(r.Context())
	if err != nil {
		s.databaseError(w, r, err)
		return
	}
	if forms == nil {
		forms = []store.Form{}
	}
	writeJSON(w, http.StatusOK, forms)
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	form, err := s.store.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFormBody(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, key := range formFields {
		if value, ok := fields[key]; !ok || value == nil || *value == "" {
			writeError(w, http.StatusBadRequest, "Missing required field: "+key)
			return
		}
	}
	if !registry.ValidName(*fields["name"]) {
		writeError(w, http.StatusBadRequest, msgInvalidName)
		return
	}

	created, err := s.store.Create(r.Context(), store.Form{
		Name:        *fields["name"],
		Title:       *fields["title"],
		YAMLContent: *fields["yamlContent"],
	})
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	logger.Info(r.Context(), "form created", "name", created.Name, "id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFormBody(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	update := store.Update{
		Name:        fields["name"],
		Title:       fields["title"],
		YAMLContent: fields["yamlContent"],
	}
	if update.Empty() {
		writeError(w, http.StatusBadRequest, msgNothingChanged)
		return
	}
	if update.Name != nil && !registry.ValidName(*update.Name) {
		writeError(w, http.StatusBadRequest, msgInvalidName)
		return
	}

	updated, err := s.store.Update(r.Context(), r.PathValue("name"), update)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.storeError(w, r, err)
		return
	}
	logger.Info(r.Context(), "form deleted", "name", name)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Form deleted"})
}

// decodeFormBody reads the writable string attributes of a form. Absent keys
// and JSON nulls stay nil.
func decodeFormBody(body io.Reader) (map[string]*string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(body, maxBodyBytes)).Decode(&raw); err != nil || raw == nil {
		return nil, requestError(msgInvalidJSON)
	}

	out := make(map[string]*string, len(formFields))
	for _, key := range formFields {
		value, ok := raw[key]
		if !ok || strings.TrimSpace(string(value)) == "null" {
			continue
		}
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return nil, requestError("Field " + key + " must be a string")
		}
		out[key] = &text
	}
	return out, nil
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgFormNotFound)
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, msgFormExists)
	case errors.Is(err, store.ErrNoChange):
		writeError(w, http.StatusBadRequest, msgNothingChanged)
	default:
		s.databaseError(w, r, err)
	}
}

func (s *Server) databaseError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error(r.Context(), "store operation failed", err)
	writeError(w, http.StatusInternalServerError, "Database error: "+err.Error())
}
