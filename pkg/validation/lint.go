// Package validation lints parsed forms for problems the parser tolerates:
// malformed or duplicate field names, option lists on the wrong kinds and a
// missing dispatch target.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// Severity ranks an issue. Only errors make a result invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// SchemaIssue represents a lint finding with optional location metadata.
type SchemaIssue struct {
	Path     string   `json:"path,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// SchemaValidationResult captures lint outcomes for editor previews and the CLI.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Errors returns only the error-level issues.
func (r SchemaValidationResult) Errors() []SchemaIssue {
	var out []SchemaIssue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

var (
	fieldNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	repositoryPattern = regexp.MustCompile(`^[^/\s]+/[^/\s]+$`)
)

// ValidFieldName reports whether name is usable as a form control name.
func ValidFieldName(name string) bool {
	return fieldNamePattern.MatchString(name)
}

// ValidateText parses and lints a YAML document. Parse failures become a
// single error issue; blank documents are reported as such.
func ValidateText(text string) SchemaValidationResult {
	form, err := schema.Parse(text)
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{issueFromParseError(err)}}
	}
	if form == nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{
			Message:  "document is empty",
			Severity: SeverityError,
		}}}
	}
	return ValidateSchema(form)
}

// ValidateSchema lints an already parsed form.
func ValidateSchema(form *schema.FormSchema) SchemaValidationResult {
	var issues []SchemaIssue
	add := func(severity Severity, path, field, format string, args ...any) {
		issues = append(issues, SchemaIssue{
			Path:     path,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	if form == nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: "no schema", Severity: SeverityError}}}
	}

	if strings.TrimSpace(form.Title) == "" {
		add(SeverityWarning, "title", "", "title is empty; dispatches will use %q", "Untitled Form")
	}

	repo := strings.TrimSpace(form.GitHub.Repository)
	switch {
	case repo == "":
		add(SeverityError, "github.repository", "", "github.repository is required before dispatch")
	case !repositoryPattern.MatchString(repo):
		add(SeverityError, "github.repository", "", "github.repository %q must be in owner/repo form", repo)
	}
	if strings.TrimSpace(form.GitHub.Workflow) == "" {
		add(SeverityWarning, "github.workflow", "", "github.workflow is empty; dispatches will use %q", "workflow.yml")
	}

	if len(form.Fields) == 0 {
		add(SeverityError, "fields", "", "form has no fields")
	}

	seen := make(map[string]int, len(form.Fields))
	for idx, field := range form.Fields {
		path := fmt.Sprintf("fields[%d]", idx)

		if !ValidFieldName(field.Name) {
			add(SeverityError, path+".name", field.Name, "field name %q must match %s", field.Name, fieldNamePattern.String())
		}
		if first, dup := seen[field.Name]; dup {
			add(SeverityError, path+".name", field.Name, "field name %q duplicates fields[%d]", field.Name, first)
		} else {
			seen[field.Name] = idx
		}

		if !field.Kind.Supported() {
			add(SeverityError, path+".type", field.Name, "unsupported field type %q", field.RawType)
			continue
		}

		switch {
		case field.Kind.HasOptions() && len(field.Options) == 0:
			add(SeverityError, path+".options", field.Name, "%s field needs at least one option", field.Kind)
		case !field.Kind.HasOptions() && len(field.Options) > 0:
			add(SeverityWarning, path+".options", field.Name, "options are ignored for %s fields", field.Kind)
		}

		if !field.Kind.Bounded() && (field.Min != "" || field.Max != "") {
			add(SeverityWarning, path, field.Name, "min/max are ignored for %s fields", field.Kind)
		}
		if field.Kind == schema.KindCheckbox && field.Default != "" {
			add(SeverityWarning, path+".default", field.Name, "checkbox fields do not support defaults")
		}
		if field.Kind == schema.KindDropdown && field.Default != "" && !hasOption(field.Options, field.Default) {
			add(SeverityWarning, path+".default", field.Name, "default %q is not one of the options", field.Default)
		}

		optionSeen := make(map[string]struct{}, len(field.Options))
		for optIdx, opt := range field.Options {
			if _, dup := optionSeen[opt.Value]; dup {
				add(SeverityWarning, fmt.Sprintf("%s.options[%d]", path, optIdx), field.Name, "duplicate option value %q", opt.Value)
			}
			optionSeen[opt.Value] = struct{}{}
		}
	}

	result := SchemaValidationResult{Issues: issues}
	result.Valid = len(result.Errors()) == 0
	return result
}

func hasOption(options []schema.Option, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func issueFromParseError(err error) SchemaIssue {
	var parseErr *schema.ParseError
	if errors.As(err, &parseErr) {
		issue := SchemaIssue{Message: parseErr.Message, Severity: SeverityError}
		if parseErr.Line > 0 {
			issue.Path = fmt.Sprintf("line %d", parseErr.Line)
		}
		return issue
	}
	return SchemaIssue{Message: strings.TrimSpace(err.Error()), Severity: SeverityError}
}
