package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-formdispatch/internal/store/storetest"
)

func TestStore(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "forms.db"), storetest.FixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	storetest.Run(t, s)
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(":memory:", storetest.FixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	storetest.Run(t, s)
}
