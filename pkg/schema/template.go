package schema

import (
	"regexp"
	"strings"
	"unicode"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// TitleFromName derives a display title from a registry key:
// "server-deployment" becomes "Server Deployment".
func TitleFromName(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "-", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// DefaultTemplate returns the starter document used for new forms. It shows
// one field of every supported kind.
func DefaultTemplate(title string) string {
	lower := strings.ToLower(title)
	workflow := whitespaceRun.ReplaceAllString(lower, "-") + "-workflow.yml"
	eventType := whitespaceRun.ReplaceAllString(lower, "_") + "_automation"

	replacer := strings.NewReplacer(
		"{{title}}", escapeDoubleQuoted(title),
		"{{workflow}}", escapeDoubleQuoted(workflow),
		"{{event_type}}", escapeDoubleQuoted(eventType),
	)
	return replacer.Replace(defaultTemplate)
}

func escapeDoubleQuoted(value string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
}

const defaultTemplate = `title: "{{title}}"
description: "Getting started template with examples of all field types"
github:
  repository: "your-org/your-repo"
  workflow: "{{workflow}}"
  event_type: "{{event_type}}"

fields:
  - name: "textExample"
    label: "Text Input Example"
    type: "text"
    required: true
    placeholder: "Enter some text here"
    note: "This is an example note explaining field behavior or requirements"

  - name: "emailExample"
    label: "Email Input Example"
    type: "email"
    required: true
    placeholder: "user@example.com"

  - name: "numberExample"
    label: "Number Input Example"
    type: "number"
    required: false
    min: 1
    max: 100
    default: 10

  - name: "dateExample"
    label: "Date/Time Input Example"
    type: "datetime-local"
    required: false

  - name: "dropdownExample"
    label: "Dropdown Selection Example"
    type: "dropdown"
    required: true
    options:
      - value: "option1"
        label: "First Option"
      - value: "option2"
        label: "Second Option"
      - value: "option3"
        label: "Third Option"

  - name: "checkboxExample"
    label: "Multiple Choice Example"
    type: "checkbox"
    required: false
    options:
      - value: "choice1"
        label: "First Choice"
      - value: "choice2"
        label: "Second Choice"
      - value: "choice3"
        label: "Third Choice"

  - name: "textareaExample"
    label: "Long Text Example"
    type: "textarea"
    required: false
    placeholder: "Enter detailed information here..."
    note: "Notes accept **markdown**."
`
