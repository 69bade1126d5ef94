// Package session holds the state of one editing session: which registry
// form is active, its YAML text, the schema derived from it and whether the
// text has unsaved edits. Every transition is an explicit method.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-formdispatch/pkg/collect"
	"github.com/goliatone/go-formdispatch/pkg/dispatch"
	"github.com/goliatone/go-formdispatch/pkg/model"
	"github.com/goliatone/go-formdispatch/pkg/payload"
	"github.com/goliatone/go-formdispatch/pkg/registry"
	"github.com/goliatone/go-formdispatch/pkg/schema"
	"github.com/goliatone/go-formdispatch/pkg/validation"
)

var (
	// ErrNoFormSelected is returned by actions that need an active form.
	ErrNoFormSelected = errors.New("session: no form selected")
	// ErrNothingToSave is returned by Save when there are no unsaved edits.
	ErrNothingToSave = errors.New("session: no unsaved changes")
	// ErrDiscardRefused is returned when switching forms was not confirmed.
	ErrDiscardRefused = errors.New("session: unsaved changes kept")
	// ErrInvalidYAML is returned by Save when the text does not parse.
	ErrInvalidYAML = errors.New("session: yaml does not parse")
)

// Registry is the subset of the registry client a session needs.
type Registry interface {
	Get(ctx context.Context, name string) (*registry.Form, error)
	Create(ctx context.Context, input registry.FormInput) (*registry.Form, error)
	Update(ctx context.Context, name string, input registry.FormInput) (*registry.Form, error)
	Delete(ctx context.Context, name string) error
}

// Dispatcher sends a collected form.
type Dispatcher interface {
	Dispatch(ctx context.Context, form *schema.FormSchema, values *model.FormValues, token string) (*dispatch.Result, error)
}

// Confirmer asks the user whether unsaved edits may be discarded. It blocks
// until answered.
type Confirmer interface {
	ConfirmDiscard(current string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(current string) bool

// ConfirmDiscard calls f.
func (f ConfirmFunc) ConfirmDiscard(current string) bool {
	return f(current)
}

var (
	_ Registry   = (*registry.Client)(nil)
	_ Dispatcher = (*dispatch.Client)(nil)
)

// State is a snapshot of the session.
type State struct {
	Key      string
	Text     string
	Schema   *schema.FormSchema
	ParseErr error
	Dirty    bool
}

// Selected reports whether a registry form is active.
func (s State) Selected() bool {
	return s.Key != ""
}

// Option configures a Session.
type Option func(*Session)

// WithConfirmer sets the prompt used before discarding edits. Without one,
// switching away from unsaved edits is refused.
func WithConfirmer(confirmer Confirmer) Option {
	return func(s *Session) {
		s.confirmer = confirmer
	}
}

// WithDispatcher sets the dispatch client.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(s *Session) {
		s.dispatcher = dispatcher
	}
}

// WithAssembler sets the assembler used for previews.
func WithAssembler(assembler *payload.Assembler) Option {
	return func(s *Session) {
		if assembler != nil {
			s.assembler = assembler
		}
	}
}

// Session is the editing state machine. Registry actions hold the lock for
// their whole duration, so the schema cannot change under a round-trip.
// Dispatch works on a copy of the schema and does not hold it.
type Session struct {
	mu         sync.Mutex
	registry   Registry
	dispatcher Dispatcher
	confirmer  Confirmer
	assembler  *payload.Assembler

	key      string
	text     string
	schema   *schema.FormSchema
	parseErr error
	dirty    bool
}

// New creates an empty session bound to a registry.
func New(reg Registry, options ...Option) *Session {
	s := &Session{
		registry:  reg,
		assembler: payload.NewAssembler(nil),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// State returns a snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Select makes name the active form. With unsaved edits the Confirmer must
// agree first; otherwise ErrDiscardRefused and nothing changes.
func (s *Session) Select(ctx context.Context, name string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.confirmDiscard(); err != nil {
		return s.snapshot(), err
	}

	form, err := s.registry.Get(ctx, name)
	if err != nil {
		return s.snapshot(), fmt.Errorf("session: load %q: %w", name, err)
	}

	s.key = form.Name
	if s.key == "" {
		s.key = name
	}
	s.setText(form.YAMLContent)
	s.dirty = false
	return s.snapshot(), nil
}

// Edit replaces the YAML text and reparses it. A parse failure clears the
// schema and is kept in State.ParseErr; the text itself is never discarded.
func (s *Session) Edit(text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setText(text)
	s.dirty = true
	return s.snapshot()
}

// Save writes the current text back to the registry.
func (s *Session) Save(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == "" {
		return s.snapshot(), ErrNoFormSelected
	}
	if !s.dirty {
		return s.snapshot(), ErrNothingToSave
	}
	if s.parseErr != nil {
		return s.snapshot(), fmt.Errorf("%w: %v", ErrInvalidYAML, s.parseErr)
	}

	title := s.key
	if s.schema != nil && strings.TrimSpace(s.schema.Title) != "" {
		title = s.schema.Title
	}
	if _, err := s.registry.Update(ctx, s.key, registry.FormInput{
		Name:        s.key,
		Title:       title,
		YAMLContent: s.text,
	}); err != nil {
		return s.snapshot(), fmt.Errorf("session: save %q: %w", s.key, err)
	}
	s.dirty = false
	return s.snapshot(), nil
}

// Create stores a new form seeded with the starter template and selects it.
func (s *Session) Create(ctx context.Context, name string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if !registry.ValidName(name) {
		return s.snapshot(), fmt.Errorf("%w: %q", registry.ErrInvalidName, name)
	}
	if err := s.confirmDiscard(); err != nil {
		return s.snapshot(), err
	}

	title := schema.TitleFromName(name)
	text := schema.DefaultTemplate(title)
	form, err := s.registry.Create(ctx, registry.FormInput{Name: name, Title: title, YAMLContent: text})
	if err != nil {
		return s.snapshot(), fmt.Errorf("session: create %q: %w", name, err)
	}

	s.key = name
	if form != nil && form.YAMLContent != "" {
		text = form.YAMLContent
	}
	s.setText(text)
	s.dirty = false
	return s.snapshot(), nil
}

// Delete removes the active form and resets the session.
func (s *Session) Delete(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key == "" {
		return s.snapshot(), ErrNoFormSelected
	}
	if err := s.registry.Delete(ctx, s.key); err != nil {
		return s.snapshot(), fmt.Errorf("session: delete %q: %w", s.key, err)
	}
	s.reset()
	return s.snapshot(), nil
}

// Clear resets to the empty state, unsaved edits included.
func (s *Session) Clear() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return s.snapshot()
}

// Lint reports schema issues for the current text.
func (s *Session) Lint() validation.SchemaValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validation.ValidateText(s.text)
}

// Collect reads a surface against the current schema.
func (s *Session) Collect(surface collect.Surface) (*model.FormValues, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil {
		return nil, dispatch.ErrNoSchema
	}
	return collect.Collect(s.schema, surface), nil
}

// Preview assembles the payload that Dispatch would send.
func (s *Session) Preview(values *model.FormValues) (payload.DispatchPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schema == nil {
		return payload.DispatchPayload{}, dispatch.ErrNoSchema
	}
	return s.assembler.Assemble(s.schema, values), nil
}

// Dispatch sends values for the current schema. The session lock is only
// held while reading the schema; the dispatcher's in-flight guard refuses a
// second send while one is outstanding.
func (s *Session) Dispatch(ctx context.Context, values *model.FormValues, token string) (*dispatch.Result, error) {
	s.mu.Lock()
	form, dispatcher := s.schema, s.dispatcher
	s.mu.Unlock()

	if dispatcher == nil {
		return nil, errors.New("session: no dispatcher configured")
	}
	return dispatcher.Dispatch(ctx, form, values, token)
}

func (s *Session) confirmDiscard() error {
	if !s.dirty {
		return nil
	}
	if s.confirmer == nil || !s.confirmer.ConfirmDiscard(s.key) {
		return ErrDiscardRefused
	}
	return nil
}

func (s *Session) setText(text string) {
	s.text = text
	form, err := schema.Parse(text)
	s.schema = form
	s.parseErr = err
}

func (s *Session) reset() {
	s.key = ""
	s.text = ""
	s.schema = nil
	s.parseErr = nil
	s.dirty = false
}

func (s *Session) snapshot() State {
	return State{
		Key:      s.key,
		Text:     s.text,
		Schema:   s.schema,
		ParseErr: s.parseErr,
		Dirty:    s.dirty,
	}
}
