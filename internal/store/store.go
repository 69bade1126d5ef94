// Package store defines persistence for form records. Implementations live
// in the memory, mongo and sqlite subpackages.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.jetify.com/typeid/v2"
)

var (
	ErrNotFound = errors.New("store: form not found")
	ErrConflict = errors.New("store: form with this name already exists")
	ErrNoChange = errors.New("store: nothing to update")
)

// IDPrefix prefixes every record ID.
const IDPrefix = "form"

// Form is a stored form definition. YAMLContent is the source of truth;
// nothing else about the form is persisted.
type Form struct {
	ID          string    `json:"_id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Title       string    `json:"title" bson:"title"`
	YAMLContent string    `json:"yamlContent" bson:"yamlContent"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Update carries the fields to change. Nil means unchanged.
type Update struct {
	Name        *string
	Title       *string
	YAMLContent *string
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Name == nil && u.Title == nil && u.YAMLContent == nil
}

// Apply copies the set fields onto f and stamps UpdatedAt.
func (u Update) Apply(f *Form, now time.Time) {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Title != nil {
		f.Title = *u.Title
	}
	if u.YAMLContent != nil {
		f.YAMLContent = *u.YAMLContent
	}
	f.UpdatedAt = now
}

// Store persists forms keyed by unique name.
type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Form, error)
	Get(ctx context.Context, name string) (Form, error)
	// Create assigns ID and timestamps. A taken name yields ErrConflict.
	Create(ctx context.Context, form Form) (Form, error)
	// Update returns the record under its new name when renamed.
	Update(ctx context.Context, name string, update Update) (Form, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Clock returns the current time; stores take one so tests can pin it.
type Clock func() time.Time

// UTCNow is the default Clock.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// NewID generates a K-sortable record ID such as "form_01h455vb4pex5vsknk084sn02q".
func NewID() (string, error) {
	tid, err := typeid.Generate(IDPrefix)
	if err != nil {
		return "", fmt.Errorf("store: generate id: %w", err)
	}
	return tid.String(), nil
}

// Prepare fills ID and timestamps for a record about to be inserted.
func Prepare(form Form, now time.Time) (Form, error) {
	id, err := NewID()
	if err != nil {
		return Form{}, err
	}
	form.ID = id
	form.CreatedAt = now
	form.UpdatedAt = now
	return form, nil
}
