package schema

import "errors"

// Document wraps raw YAML text and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document. Empty payloads are allowed: a blank
// document parses to "no schema selected".
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	return Document{source: src, raw: append([]byte(nil), raw...)}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Text returns the payload as a string.
func (d Document) Text() string {
	return string(d.raw)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Parse decodes the document into a FormSchema.
func (d Document) Parse() (*FormSchema, error) {
	return Parse(d.Text())
}
