// Package memory is an in-process store.Store used by tests and the default
// server configuration.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-formdispatch/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps forms in a map guarded by a RWMutex.
type Store struct {
	mu    sync.RWMutex
	forms map[string]entry
	seq   uint64
	clock store.Clock
}

type entry struct {
	form store.Form
	seq  uint64
}

// New creates an empty store. A nil clock uses store.UTCNow.
func New(clock store.Clock) *Store {
	if clock == nil {
		clock = store.UTCNow
	}
	return &Store{forms: make(map[string]entry), clock: clock}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// List returns forms in insertion order.
func (s *Store) List(_ context.Context) ([]store.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]entry, 0, len(s.forms))
	for _, e := range s.forms {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	out := make([]store.Form, len(entries))
	for i, e := range entries {
		out[i] = e.form
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, name string) (store.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.forms[name]
	if !ok {
		return store.Form{}, store.ErrNotFound
	}
	return e.form, nil
}

func (s *Store) Create(_ context.Context, form store.Form) (store.Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.forms[form.Name]; exists {
		return store.Form{}, store.ErrConflict
	}
	prepared, err := store.Prepare(form, s.clock())
	if err != nil {
		return store.Form{}, err
	}
	s.seq++
	s.forms[form.Name] = entry{form: prepared, seq: s.seq}
	return prepared, nil
}

func (s *Store) Update(_ context.Context, name string, update store.Update) (store.Form, error) {
	if update.Empty() {
		return store.Form{}, store.ErrNoChange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.forms[name]
	if !ok {
		return store.Form{}, store.ErrNotFound
	}
	if update.Name != nil && *update.Name != name {
		if _, taken := s.forms[*update.Name]; taken {
			return store.Form{}, store.ErrConflict
		}
	}

	update.Apply(&e.form, s.clock())
	delete(s.forms, name)
	s.forms[e.form.Name] = e
	return e.form, nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.forms[name]; !ok {
		return store.ErrNotFound
	}
	delete(s.forms, name)
	return nil
}

func (s *Store) Close() error {
	return nil
}
