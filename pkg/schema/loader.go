package schema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches raw documents from a Source. The implementation lives in
// internal/loader and is constructed through the root package.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// RegistryFetcher resolves registry sources to their stored YAML text.
type RegistryFetcher interface {
	FetchYAML(ctx context.Context, name string) (string, error)
}

// LoaderOptions configures how a Loader resolves sources. HTTP stays disabled
// unless a client is supplied or AllowHTTPFallback is set.
type LoaderOptions struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	RequestTimeout    time.Duration
	Registry          RegistryFetcher
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS for SourceKindFS entries.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and an
// optional timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithRegistry resolves "registry:<name>" sources through the given fetcher.
func WithRegistry(fetcher RegistryFetcher) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.Registry = fetcher
	}
}

// NewLoaderOptions applies a set of LoaderOption values.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
