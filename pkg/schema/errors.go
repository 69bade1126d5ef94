package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseError reports a document that could not be turned into a FormSchema.
// Line is 1-based and zero when the position is unknown.
type ParseError struct {
	Message string
	Line    int
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("schema: line %d: %s", e.Line, e.Message)
	}
	return "schema: " + e.Message
}

func errorAt(node *yaml.Node, format string, args ...any) *ParseError {
	line := 0
	if node != nil {
		line = node.Line
	}
	return &ParseError{Message: fmt.Sprintf(format, args...), Line: line}
}
