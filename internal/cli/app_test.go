package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-github/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formdispatch/internal/githubdispatch"
	"github.com/goliatone/go-formdispatch/internal/server"
	"github.com/goliatone/go-formdispatch/internal/store/memory"
	"github.com/goliatone/go-formdispatch/pkg/renderers/tui"
)

const deployYAML = `title: "Server Deployment Request"
github:
  repository: "acme/infra"
  workflow: "server-deployment.yml"
  event_type: "server_deployment_request"
fields:
  - name: serverName
    label: Server Name
    type: text
    required: true
  - name: environment
    label: Environment
    type: dropdown
    options: [staging, production]
`

type scriptedDriver struct {
	tui.PromptDriver
	input  string
	choice int
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	return d.input, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return d.choice, nil
}

func (d *scriptedDriver) Info(context.Context, string) error {
	return nil
}

type fixture struct {
	dir        string
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	env        map[string]string
	prompter   tui.PromptDriver
	dispatcher *githubdispatch.MockRepositoryDispatcher
	apiURL     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		dir:    dir,
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		env: map[string]string{
			configEnv: filepath.Join(dir, "formdispatch.toml"),
		},
	}
}

// withRegistry starts a registry server backed by a memory store.
func (f *fixture) withRegistry(t *testing.T) {
	t.Helper()
	f.dispatcher = &githubdispatch.MockRepositoryDispatcher{}
	srv, err := server.New(context.Background(), memory.New(nil),
		server.WithDispatcher(githubdispatch.NewService(f.dispatcher, nil)),
	)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	f.apiURL = ts.URL
}

func (f *fixture) run(t *testing.T, args ...string) error {
	t.Helper()
	f.out.Reset()
	app := New(Options{
		Out:      f.out,
		Err:      f.errOut,
		Getenv:   func(key string) string { return f.env[key] },
		Prompter: f.prompter,
	})
	full := []string{"formdispatch"}
	if f.apiURL != "" {
		full = append(full, "--api-url", f.apiURL)
	}
	return app.Run(context.Background(), append(full, args...))
}

func (f *fixture) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLint(t *testing.T) {
	f := newFixture(t)
	good := f.writeFile(t, "good.yaml", deployYAML)
	bad := f.writeFile(t, "bad.yaml", "title: x\nfields:\n  - name: a b\n    label: A\n    type: text\n")

	require.NoError(t, f.run(t, "lint", good))
	assert.Contains(t, f.out.String(), good)

	err := f.run(t, "lint", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 document(s) have errors")
	assert.Contains(t, f.out.String(), "github.repository is required before dispatch")

	err = f.run(t, "lint", "--json", bad)
	require.Error(t, err)
	var reports []map[string]any
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, false, reports[0]["valid"])
}

func TestRender(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "deploy.yaml", deployYAML)

	require.NoError(t, f.run(t, "render", "--action", "/submit", "--form-id", "deploy", path))
	out := f.out.String()
	assert.Contains(t, out, `id="deploy"`)
	assert.Contains(t, out, `action="/submit"`)
	assert.Contains(t, out, "Server Deployment Request")

	target := filepath.Join(f.dir, "form.html")
	require.NoError(t, f.run(t, "render", "-o", target, path))
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), "<form")
}

func TestRender_Preset(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "deploy.yaml", deployYAML)
	preset := f.writeFile(t, "preset.yaml", "title: Staging Deploy\nfields:\n  serverName:\n    label: Host\n")

	require.NoError(t, f.run(t, "render", "--preset", preset, path))
	out := f.out.String()
	assert.Contains(t, out, "Staging Deploy")
	assert.Contains(t, out, "Host")
}

func TestDispatch_DryRun(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "deploy.yaml", deployYAML)

	require.NoError(t, f.run(t, "dispatch", "--dry-run", "--set", "serverName=web-01", "--set", "environment=staging", path))
	var event map[string]any
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &event))
	assert.Equal(t, "server_deployment_request", event["event_type"])
	clientPayload := event["client_payload"].(map[string]any)
	assert.Equal(t, map[string]any{"serverName": "web-01", "environment": "staging"}, clientPayload["form_data"])
}

func TestDispatch_Validation(t *testing.T) {
	f := newFixture(t)
	path := f.writeFile(t, "deploy.yaml", deployYAML)

	err := f.run(t, "dispatch", "--dry-run", "--set", "environment=staging", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serverName")

	err = f.run(t, "dispatch", "--dry-run", "--set", "serverName", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected name=value")

	err = f.run(t, "dispatch", "--dry-run", "--set", "serverName=web-01", "--set", "environment=qa", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Some values are not accepted")
	assert.Contains(t, err.Error(), "environment: Not one of the listed options")

	err = f.run(t, "dispatch", "--set", "serverName=web-01", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A GitHub token is required to dispatch")
}

func TestDispatch_ThroughRegistry(t *testing.T) {
	f := newFixture(t)
	f.withRegistry(t)
	f.env[tokenEnv] = "ghp_env"
	path := f.writeFile(t, "deploy.yaml", deployYAML)

	f.dispatcher.On("Dispatch", mock.Anything, "ghp_env", "acme", "infra", mock.Anything).
		Return(&github.Response{Response: &http.Response{StatusCode: http.StatusNoContent}}, nil)

	require.NoError(t, f.run(t, "dispatch", "--set", "serverName=web-01", path))
	assert.Contains(t, f.out.String(), "Workflow dispatched successfully")
	assert.Contains(t, f.out.String(), "acme/infra")
	f.dispatcher.AssertExpectations(t)
}

func TestFill_DryRun(t *testing.T) {
	f := newFixture(t)
	f.prompter = &scriptedDriver{input: "web-02", choice: 2}
	path := f.writeFile(t, "deploy.yaml", deployYAML)

	require.NoError(t, f.run(t, "fill", "--dry-run", path))
	var event map[string]any
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &event))
	clientPayload := event["client_payload"].(map[string]any)
	formData := clientPayload["form_data"].(map[string]any)
	assert.Equal(t, "web-02", formData["serverName"])
}

func TestForms_Lifecycle(t *testing.T) {
	f := newFixture(t)
	f.withRegistry(t)

	require.NoError(t, f.run(t, "forms", "list"))
	assert.Contains(t, f.out.String(), "No forms stored yet")

	require.NoError(t, f.run(t, "forms", "create", "starter"))
	assert.Contains(t, f.out.String(), "Created starter")

	path := f.writeFile(t, "deploy.yaml", deployYAML)
	require.NoError(t, f.run(t, "forms", "create", "--file", path, "server-deployment"))

	require.NoError(t, f.run(t, "forms", "list"))
	assert.Contains(t, f.out.String(), "starter")
	assert.Contains(t, f.out.String(), "Server Deployment Request")

	require.NoError(t, f.run(t, "forms", "get", "server-deployment"))
	assert.Equal(t, deployYAML, f.out.String())

	require.NoError(t, f.run(t, "render", "registry:server-deployment"))
	assert.Contains(t, f.out.String(), "Server Deployment Request")

	require.NoError(t, f.run(t, "forms", "update", "--file", path, "starter"))
	require.NoError(t, f.run(t, "forms", "get", "--json", "starter"))
	var record map[string]any
	require.NoError(t, json.Unmarshal(f.out.Bytes(), &record))
	assert.Equal(t, "Server Deployment Request", record["title"])

	require.NoError(t, f.run(t, "forms", "delete", "starter"))
	err := f.run(t, "forms", "get", "starter")
	require.Error(t, err)

	err = f.run(t, "forms", "create", "Not Valid")
	require.Error(t, err)

	require.NoError(t, f.run(t, "forms", "health"))
	assert.Contains(t, f.out.String(), "healthy")
}

func TestSeed(t *testing.T) {
	f := newFixture(t)
	f.env["FORMDISPATCH_SQLITE_PATH"] = filepath.Join(f.dir, "forms.db")

	require.NoError(t, f.run(t, "seed", "--store", "sqlite"))
	assert.Contains(t, f.out.String(), "created: maintenance-window, dynatrace-access, user-provisioning, server-deployment")

	require.NoError(t, f.run(t, "seed", "--store", "sqlite"))
	assert.Contains(t, f.out.String(), "created: none")
}

func TestConfigInit(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "config", "init"))
	_, err := os.Stat(f.env[configEnv])
	require.NoError(t, err)

	require.Error(t, f.run(t, "config", "init"))
	require.NoError(t, f.run(t, "config", "init", "--force"))

	require.NoError(t, f.run(t, "config", "show"))
	assert.Contains(t, f.out.String(), `driver = "memory"`)
}
