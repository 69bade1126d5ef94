// Package storetest holds the behaviour every store.Store must satisfy.
package storetest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdispatch/internal/store"
)

// FixedClock returns a clock that advances one second per call from start.
func FixedClock(start time.Time) store.Clock {
	current := start.Add(-time.Second)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

// Run exercises s. The store must be empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	forms, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(forms) != 0 {
		t.Fatalf("expected empty store, got %d forms", len(forms))
	}

	alpha, err := s.Create(ctx, store.Form{Name: "alpha", Title: "Alpha", YAMLContent: "title: Alpha\nfields: []\n"})
	if err != nil {
		t.Fatalf("create alpha: %v", err)
	}
	if !strings.HasPrefix(alpha.ID, store.IDPrefix+"_") {
		t.Fatalf("unexpected id %q", alpha.ID)
	}
	if alpha.CreatedAt.IsZero() || !alpha.CreatedAt.Equal(alpha.UpdatedAt) {
		t.Fatalf("unexpected timestamps %v %v", alpha.CreatedAt, alpha.UpdatedAt)
	}
	if _, err := s.Create(ctx, store.Form{Name: "bravo", Title: "Bravo", YAMLContent: "fields: []"}); err != nil {
		t.Fatalf("create bravo: %v", err)
	}
	if _, err := s.Create(ctx, store.Form{Name: "alpha", Title: "Again", YAMLContent: ""}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	forms, err = s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, f := range forms {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"alpha", "bravo"}, names); diff != "" {
		t.Fatalf("list order mismatch (-want +got):\n%s", diff)
	}

	got, err := s.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != alpha.ID || got.YAMLContent != alpha.YAMLContent || !got.CreatedAt.Equal(alpha.CreatedAt) {
		t.Fatalf("get mismatch: %+v vs %+v", got, alpha)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := s.Update(ctx, "alpha", store.Update{}); !errors.Is(err, store.ErrNoChange) {
		t.Fatalf("expected ErrNoChange, got %v", err)
	}
	text := "title: Alpha 2\nfields: []\n"
	updated, err := s.Update(ctx, "alpha", store.Update{YAMLContent: &text})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.YAMLContent != text || updated.Title != "Alpha" || !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("unexpected update result %+v", updated)
	}

	taken := "bravo"
	if _, err := s.Update(ctx, "alpha", store.Update{Name: &taken}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected rename conflict, got %v", err)
	}
	renamed := "charlie"
	moved, err := s.Update(ctx, "alpha", store.Update{Name: &renamed})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if moved.Name != "charlie" || moved.ID != alpha.ID {
		t.Fatalf("unexpected rename result %+v", moved)
	}
	if _, err := s.Get(ctx, "alpha"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("old name should be gone, got %v", err)
	}
	if _, err := s.Update(ctx, "missing", store.Update{Title: &renamed}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	if err := s.Delete(ctx, "charlie"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "charlie"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}
