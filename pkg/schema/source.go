package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a YAML document lives so loaders can read files,
// fs.FS entries, URLs or registry records behind one interface.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile     SourceKind = "file"
	SourceKindFS       SourceKind = "fs"
	SourceKindURL      SourceKind = "url"
	SourceKindRegistry SourceKind = "registry"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }
func (s source) Location() string { return s.location }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: name}
}

// SourceFromURL parses the supplied URL and returns a Source. It panics on an
// invalid URL to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("schema: invalid URL %q: %v", raw, err))
	}
	return source{kind: SourceKindURL, location: raw}
}

// SourceFromRegistry references a stored form by its registry name.
func SourceFromRegistry(name string) Source {
	return source{kind: SourceKindRegistry, location: strings.TrimSpace(name)}
}

// ParseSource interprets command-line style references: "registry:<name>",
// http(s) URLs, and anything else as a file path.
func ParseSource(raw string) (Source, error) {
	ref := strings.TrimSpace(raw)
	switch {
	case ref == "":
		return nil, fmt.Errorf("schema: source is required")
	case strings.HasPrefix(ref, "registry:"):
		name := strings.TrimPrefix(ref, "registry:")
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("schema: registry source %q has no form name", raw)
		}
		return SourceFromRegistry(name), nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if _, err := url.ParseRequestURI(ref); err != nil {
			return nil, fmt.Errorf("schema: invalid URL %q: %w", ref, err)
		}
		return source{kind: SourceKindURL, location: ref}, nil
	default:
		return SourceFromFile(ref), nil
	}
}
