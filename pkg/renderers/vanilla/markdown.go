package vanilla

import (
	"bytes"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
	notePolicy     *bluemonday.Policy
)

func noteMarkdown() (goldmark.Markdown, *bluemonday.Policy) {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		)
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		notePolicy = policy
	})
	return markdownParser, notePolicy
}

// RenderNote converts a field note from Markdown to sanitized HTML. Raw HTML
// in the note is never trusted.
func RenderNote(note string) (string, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return "", nil
	}
	md, policy := noteMarkdown()
	var buf bytes.Buffer
	if err := md.Convert([]byte(note), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(policy.Sanitize(buf.String())), nil
}
