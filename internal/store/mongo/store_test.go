package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/goliatone/go-formdispatch/internal/store"
)

func TestUpdateFields(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	title := "New title"
	yaml := "fields: []"

	got := updateFields(store.Update{Title: &title, YAMLContent: &yaml}, now)
	want := bson.M{"updatedAt": now, "title": title, "yamlContent": yaml}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("update mismatch (-want +got):\n%s", diff)
	}
}

func TestMigrationIndexesIncludeUniqueName(t *testing.T) {
	indexes := migrationIndexes()
	if len(indexes) == 0 {
		t.Fatalf("expected indexes")
	}
	keys, ok := indexes[0].Keys.(bson.D)
	if !ok || len(keys) != 1 || keys[0].Key != "name" {
		t.Fatalf("first index should be on name, got %#v", indexes[0].Keys)
	}
}

// TestStore_Integration runs against a live server when
// FORMDISPATCH_TEST_MONGO_URI is set.
func TestStore_Integration(t *testing.T) {
	uri := os.Getenv("FORMDISPATCH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FORMDISPATCH_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := "formdispatch_test_" + time.Now().Format("20060102150405")
	s, err := Open(ctx, uri, db, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		_ = s.col.Database().Drop(context.Background())
		_ = s.Close()
	}()

	created, err := s.Create(ctx, store.Form{Name: "alpha", Title: "Alpha", YAMLContent: "fields: []"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, store.Form{Name: "alpha"}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, err := s.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("id mismatch: %q vs %q", got.ID, created.ID)
	}

	renamed := "beta"
	updated, err := s.Update(ctx, "alpha", store.Update{Name: &renamed})
	if err != nil || updated.Name != "beta" {
		t.Fatalf("update: %+v %v", updated, err)
	}
	if err := s.Delete(ctx, "beta"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "beta"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
