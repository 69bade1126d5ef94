package formdispatch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formdispatch/pkg/schema"
)

func TestRuntimeAssetsFSContainsRuntime(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), RuntimeScriptName)
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "data-dispatch-trigger") {
		t.Fatalf("expected runtime to guard dispatch triggers")
	}
}

func TestEmbeddedTemplatesIncludeForm(t *testing.T) {
	if _, err := fs.Stat(EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
}

func TestGenerateHTMLFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	doc := "title: Ping\nfields:\n  - name: host\n    label: Host\n    type: text\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := GenerateHTML(context.Background(), schema.SourceFromFile(path), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `name="host"`) {
		t.Fatalf("expected host input in:\n%s", out)
	}
}
