package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/text/language"

	formdispatch "github.com/goliatone/go-formdispatch"
	"github.com/goliatone/go-formdispatch/internal/githubdispatch"
	"github.com/goliatone/go-formdispatch/internal/logger"
	"github.com/goliatone/go-formdispatch/internal/store"
	"github.com/goliatone/go-formdispatch/pkg/collect"
	"github.com/goliatone/go-formdispatch/pkg/dispatch"
	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/orchestrator"
	"github.com/goliatone/go-formdispatch/pkg/render"
	"github.com/goliatone/go-formdispatch/pkg/schema"
	"github.com/goliatone/go-formdispatch/pkg/validation"
)

const (
	runtimePrefix = "/runtime/"
	assetsPrefix  = "/assets/"
	pageFormID    = "fd-form"
	tokenField    = "github_token"
)

func runtimeFS() fs.FS {
	return formdispatch.RuntimeAssetsFS()
}

type indexEntry struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Updated string `json:"updated"`
	Valid   bool   `json:"valid"`
	Status  string `json:"status"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	opts := s.renderOptions(r)
	forms, err := s.store.List(r.Context())
	if err != nil {
		logger.Error(r.Context(), "list forms", err)
		s.renderError(w, r, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	entries := make([]indexEntry, 0, len(forms))
	for _, form := range forms {
		result := validation.ValidateText(form.YAMLContent)
		status := "ok"
		if n := len(result.Errors()); n == 1 {
			status = "1 issue"
		} else if n > 1 {
			status = fmt.Sprintf("%d issues", n)
		}
		entries = append(entries, indexEntry{
			Name:    form.Name,
			Title:   form.Title,
			Updated: form.UpdatedAt.UTC().Format("2006-01-02 15:04"),
			Valid:   result.Valid,
			Status:  status,
		})
	}

	s.renderPage(w, r, http.StatusOK, "templates/index", map[string]any{
		"page_title":  opts.T("page.forms", "Forms"),
		"forms":       entries,
		"empty_label": opts.T("forms.empty", "No forms stored yet"),
	})
}

func (s *Server) handleFormPage(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadStored(w, r)
	if !ok {
		return
	}
	s.renderForm(w, r, http.StatusOK, stored, s.renderOptions(r))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	stored, form, ok := s.submittedForm(w, r)
	if !ok {
		return
	}
	opts := s.renderOptions(r)

	values := collect.Collect(form, collect.FormSurface(r.PostForm))
	event := s.assembler.Assemble(form, values)
	encoded, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	_, notes, err := s.valueProblems(opts, form, values)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	s.renderPage(w, r, http.StatusOK, "templates/result", map[string]any{
		"page_title": stored.Title,
		"name":       stored.Name,
		"heading":    opts.T("preview.heading", "Payload preview"),
		"notes":      notes,
		"payload":    string(encoded),
		"success":    true,
	})
}

func (s *Server) handleFormDispatch(w http.ResponseWriter, r *http.Request) {
	stored, form, ok := s.submittedForm(w, r)
	if !ok {
		return
	}
	opts := s.renderOptions(r)
	opts.Values = withoutToken(r.PostForm)

	values := collect.Collect(form, collect.FormSurface(r.PostForm))
	fieldErrors, formErrors, err := s.valueProblems(opts, form, values)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	if len(fieldErrors) > 0 || len(formErrors) > 0 {
		opts.Errors = fieldErrors
		opts.FormErrors = formErrors
		s.renderForm(w, r, http.StatusUnprocessableEntity, stored, opts)
		return
	}
	if err := dispatch.CheckDispatchable(form); err != nil {
		opts.FormErrors = []string{s.refusal(opts, err)}
		s.renderForm(w, r, http.StatusUnprocessableEntity, stored, opts)
		return
	}
	token := strings.TrimSpace(r.PostForm.Get(tokenField))
	if token == "" {
		opts.FormErrors = []string{opts.T("dispatch.token_required", "A GitHub token is required to dispatch")}
		s.renderForm(w, r, http.StatusUnprocessableEntity, stored, opts)
		return
	}

	event := s.assembler.Assemble(form, values)
	clientPayload, err := json.Marshal(event.ClientPayload)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	outcome := s.forward(r, githubdispatch.Request{
		EventType:     event.EventType,
		ClientPayload: clientPayload,
		Token:         token,
		Repository:    form.GitHub.Repository,
	})

	encoded, _ := json.MarshalIndent(event, "", "  ")
	data := map[string]any{
		"page_title": stored.Title,
		"name":       stored.Name,
		"payload":    string(encoded),
	}
	switch body := outcome.Body.(type) {
	case githubdispatch.Success:
		data["success"] = true
		data["heading"] = opts.T("dispatch.success", body.Message)
		data["notes"] = []string{body.EventType + " → " + body.Repository, body.Timestamp}
	case githubdispatch.Failure:
		data["heading"] = body.Error
		if body.Details != "" {
			data["notes"] = []string{body.Details}
		}
	}
	s.renderPage(w, r, outcome.Status, "templates/result", data)
}

// valueProblems reports empty required fields and values the form does not
// accept, as per-field messages plus form-level summaries.
func (s *Server) valueProblems(opts render.RenderOptions, form *schema.FormSchema, values *model.FormValues) (map[string][]string, []string, error) {
	fieldErrors := map[string][]string{}
	var formErrors []string

	if missing := collect.Missing(form, values); len(missing) > 0 {
		for name, messages := range render.RequiredErrors(missing, opts.T("form.required", "This field is required")) {
			fieldErrors[name] = messages
		}
		formErrors = append(formErrors, opts.T("forms.missing_fields", fmt.Sprintf("%d required fields are empty", len(missing)), len(missing)))
	}

	invalid, err := validation.ValueErrors(form, values)
	if err != nil {
		return nil, nil, err
	}
	if len(invalid) > 0 {
		mapping := render.MapErrorPayload(form, invalid)
		for name, messages := range mapping.Fields {
			fieldErrors[name] = append(fieldErrors[name], messages...)
		}
		formErrors = append(formErrors, opts.T("forms.invalid_values", "Some values are not accepted"))
		formErrors = append(formErrors, mapping.Form...)
	}

	if len(fieldErrors) == 0 {
		fieldErrors = nil
	}
	return fieldErrors, render.MergeFormErrors(formErrors), nil
}

// submittedForm parses the POST body and the stored form it targets.
func (s *Server) submittedForm(w http.ResponseWriter, r *http.Request) (store.Form, *schema.FormSchema, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, err.Error())
		return store.Form{}, nil, false
	}
	stored, ok := s.loadStored(w, r)
	if !ok {
		return store.Form{}, nil, false
	}
	form, err := s.orchestrator.Schema(r.Context(), orchestrator.Request{Text: stored.YAMLContent})
	if err != nil {
		s.renderError(w, r, http.StatusUnprocessableEntity, err.Error())
		return store.Form{}, nil, false
	}
	return stored, form, true
}

func (s *Server) loadStored(w http.ResponseWriter, r *http.Request) (store.Form, bool) {
	stored, err := s.store.Get(r.Context(), r.PathValue("name"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, msgFormNotFound)
		return store.Form{}, false
	case err != nil:
		logger.Error(r.Context(), "load form", err)
		s.renderError(w, r, http.StatusInternalServerError, "Database error: "+err.Error())
		return store.Form{}, false
	}
	return stored, true
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, stored store.Form, opts render.RenderOptions) {
	opts.Action = "/forms/" + stored.Name + "/dispatch"
	opts.FormID = pageFormID
	opts.Hidden = append(opts.Hidden, render.FormKey(stored.Name))

	markup, err := s.orchestrator.Generate(r.Context(), orchestrator.Request{
		Text:          stored.YAMLContent,
		RenderOptions: opts,
	})
	if err != nil {
		result := validation.ValidateText(stored.YAMLContent)
		messages := make([]string, 0, len(result.Issues))
		for _, issue := range result.Errors() {
			messages = append(messages, issue.Message)
		}
		if len(messages) == 0 {
			messages = append(messages, err.Error())
		}
		s.renderPage(w, r, http.StatusUnprocessableEntity, "templates/error", map[string]any{
			"page_title": stored.Title,
			"heading":    stored.Title,
			"messages":   messages,
		})
		return
	}

	s.renderPage(w, r, status, "templates/form", map[string]any{
		"page_title":     stored.Title,
		"name":           stored.Name,
		"form_html":      string(markup),
		"form_id":        pageFormID,
		"token_field":    tokenField,
		"preview_action": "/forms/" + stored.Name + "/preview",
	})
}

func (s *Server) refusal(opts render.RenderOptions, err error) string {
	switch {
	case errors.Is(err, dispatch.ErrMissingRepository):
		return opts.T("dispatch.refused_repository", "Missing github.repository in the form definition")
	case errors.Is(err, dispatch.ErrUnsupportedFields):
		return opts.T("dispatch.refused_unsupported", "The form contains unsupported field types")
	}
	return err.Error()
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.renderPage(w, r, status, "templates/error", map[string]any{
		"page_title": http.StatusText(status),
		"heading":    http.StatusText(status),
		"messages":   []string{message},
	})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	for key, fn := range render.TemplateI18nFuncs(s.renderOptions(r)) {
		data[key] = fn
	}
	out, err := s.pages.RenderTemplate(name, data)
	if err != nil {
		logger.Error(r.Context(), "render page", err, "template", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(out))
}

func (s *Server) renderOptions(r *http.Request) render.RenderOptions {
	return render.RenderOptions{
		Locale:     s.localeFor(r),
		Translator: s.translator,
	}
}

// localeFor picks the page locale: an explicit ?lang= wins, then
// Accept-Language negotiation against the configured languages.
func (s *Server) localeFor(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" && slices.Contains(s.languages, lang) {
		return lang
	}
	tags := make([]language.Tag, 0, len(s.languages))
	for _, lang := range s.languages {
		tags = append(tags, language.Make(lang))
	}
	_, idx := language.MatchStrings(language.NewMatcher(tags), r.Header.Get("Accept-Language"))
	if idx < 0 || idx >= len(s.languages) {
		return s.languages[0]
	}
	return s.languages[idx]
}

func withoutToken(values map[string][]string) map[string][]string {
	out := make(map[string][]string, len(values))
	for key, value := range values {
		if key == tokenField {
			continue
		}
		out[key] = value
	}
	return out
}
