// Package seed ships the sample forms loaded into a fresh registry.
package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/goliatone/go-formdispatch/internal/store"
)

//go:embed forms/*.yaml
var formsFS embed.FS

type sample struct {
	name  string
	title string
}

var samples = []sample{
	{name: "maintenance-window", title: "Creating a Maintenance Window"},
	{name: "dynatrace-access", title: "Dynatrace Access Request"},
	{name: "user-provisioning", title: "User Account Provisioning"},
	{name: "server-deployment", title: "Server Deployment Request"},
}

// Forms returns the sample records without IDs or timestamps.
func Forms() ([]store.Form, error) {
	out := make([]store.Form, 0, len(samples))
	for _, s := range samples {
		data, err := formsFS.ReadFile("forms/" + s.name + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("seed: read %s: %w", s.name, err)
		}
		out = append(out, store.Form{Name: s.name, Title: s.title, YAMLContent: string(data)})
	}
	return out, nil
}

// Result reports what Apply did.
type Result struct {
	Created []string
	Skipped []string
}

// Apply inserts every sample whose name is free. Existing records are left
// untouched.
func Apply(ctx context.Context, s store.Store) (Result, error) {
	forms, err := Forms()
	if err != nil {
		return Result{}, err
	}

	var result Result
	for _, form := range forms {
		_, err := s.Create(ctx, form)
		switch {
		case err == nil:
			result.Created = append(result.Created, form.Name)
		case errors.Is(err, store.ErrConflict):
			result.Skipped = append(result.Skipped, form.Name)
		default:
			return result, fmt.Errorf("seed: create %s: %w", form.Name, err)
		}
	}
	return result, nil
}
