// Package loader implements schema.Loader over files, fs.FS entries, HTTP
// URLs and registry records.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

// Loader dispatches on the source kind.
type Loader struct {
	fs       fs.FS
	http     *http.Client
	timeout  time.Duration
	registry schema.RegistryFetcher
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader. HTTP sources work only when a client was supplied
// or the HTTP fallback was enabled.
func New(options schema.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:       options.FileSystem,
		http:     client,
		timeout:  timeout,
		registry: options.Registry,
	}
}

// Load reads src and wraps the bytes in a Document.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if l.http == nil {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	case schema.SourceKindRegistry:
		data, err = loadFromRegistry(ctx, l.registry, src.Location())
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s %q: %w", src.Kind(), src.Location(), err)
	}
	return schema.NewDocument(src, data)
}
