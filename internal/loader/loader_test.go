package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

const sample = "title: Sample\nfields: []\n"

type fetcherFunc func(ctx context.Context, name string) (string, error)

func (f fetcherFunc) FetchYAML(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

func TestLoad_AllSourceKinds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "form.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sample))
	}))
	defer server.Close()

	l := New(schema.NewLoaderOptions(
		schema.WithFileSystem(fstest.MapFS{"forms/a.yaml": {Data: []byte(sample)}}),
		schema.WithHTTPFallback(time.Second),
		schema.WithRegistry(fetcherFunc(func(_ context.Context, name string) (string, error) {
			if name != "alpha" {
				return "", errors.New("not found")
			}
			return sample, nil
		})),
	))

	sources := []schema.Source{
		schema.SourceFromFile(path),
		schema.SourceFromFS("forms/a.yaml"),
		schema.SourceFromURL(server.URL + "/form.yaml"),
		schema.SourceFromRegistry("alpha"),
	}
	for _, src := range sources {
		doc, err := l.Load(context.Background(), src)
		if err != nil {
			t.Fatalf("load %s: %v", src.Kind(), err)
		}
		if doc.Text() != sample {
			t.Fatalf("load %s: unexpected text %q", src.Kind(), doc.Text())
		}
	}
}

func TestLoad_HTTPDisabledByDefault(t *testing.T) {
	l := New(schema.NewLoaderOptions())
	if _, err := l.Load(context.Background(), schema.SourceFromURL("https://example.com/form.yaml")); err == nil {
		t.Fatalf("expected http to be disabled")
	}
}

func TestLoad_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	l := New(schema.NewLoaderOptions(schema.WithHTTPClient(server.Client())))
	if _, err := l.Load(context.Background(), schema.SourceFromURL(server.URL)); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestLoad_RegistryWithoutFetcher(t *testing.T) {
	l := New(schema.NewLoaderOptions())
	if _, err := l.Load(context.Background(), schema.SourceFromRegistry("alpha")); err == nil {
		t.Fatalf("expected error without registry")
	}
}
