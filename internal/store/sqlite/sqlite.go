// Package sqlite implements store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/goliatone/go-formdispatch/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps forms in a single table.
type Store struct {
	db    *sql.DB
	clock store.Clock
}

// Open opens (or creates) the database at path and migrates it. Use
// ":memory:" for a throwaway database.
func Open(path string, clock store.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: open %s: %w", path, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if clock == nil {
		clock = store.UTCNow
	}

	s := &Store{db: db, clock: clock}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS forms (
		id TEXT PRIMARY KEY,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		yaml_content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_forms_seq ON forms(seq);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store/sqlite: migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const selectColumns = `SELECT id, name, title, yaml_content, created_at, updated_at FROM forms`

// List returns forms in insertion order.
func (s *Store) List(ctx context.Context) ([]store.Form, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("store/sqlite: list: %w", err)
	}
	defer rows.Close()

	forms := []store.Form{}
	for rows.Next() {
		form, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("store/sqlite: list: %w", err)
		}
		forms = append(forms, form)
	}
	return forms, rows.Err()
}

func (s *Store) Get(ctx context.Context, name string) (store.Form, error) {
	form, err := scanForm(s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ?`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Form{}, store.ErrNotFound
		}
		return store.Form{}, fmt.Errorf("store/sqlite: get: %w", err)
	}
	return form, nil
}

func (s *Store) Create(ctx context.Context, form store.Form) (store.Form, error) {
	prepared, err := store.Prepare(form, s.clock())
	if err != nil {
		return store.Form{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO forms (id, seq, name, title, yaml_content, created_at, updated_at)
		 VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM forms), ?, ?, ?, ?, ?)`,
		prepared.ID, prepared.Name, prepared.Title, prepared.YAMLContent,
		formatTime(prepared.CreatedAt), formatTime(prepared.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.Form{}, store.ErrConflict
		}
		return store.Form{}, fmt.Errorf("store/sqlite: create: %w", err)
	}
	return prepared, nil
}

func (s *Store) Update(ctx context.Context, name string, update store.Update) (store.Form, error) {
	if update.Empty() {
		return store.Form{}, store.ErrNoChange
	}

	sets := []string{"updated_at = ?"}
	args := []any{formatTime(s.clock())}
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.YAMLContent != nil {
		sets = append(sets, "yaml_content = ?")
		args = append(args, *update.YAMLContent)
	}
	args = append(args, name)

	result, err := s.db.ExecContext(ctx, `UPDATE forms SET `+strings.Join(sets, ", ")+` WHERE name = ?`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return store.Form{}, store.ErrConflict
		}
		return store.Form{}, fmt.Errorf("store/sqlite: update: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return store.Form{}, store.ErrNotFound
	}

	current := name
	if update.Name != nil {
		current = *update.Name
	}
	return s.Get(ctx, current)
}

func (s *Store) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store/sqlite: delete: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store/sqlite: delete: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanForm(row scanner) (store.Form, error) {
	var (
		form               store.Form
		created, updatedAt string
	)
	if err := row.Scan(&form.ID, &form.Name, &form.Title, &form.YAMLContent, &created, &updatedAt); err != nil {
		return store.Form{}, err
	}
	var err error
	if form.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return store.Form{}, err
	}
	if form.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return store.Form{}, err
	}
	return form, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(sqliteErr.Error(), "UNIQUE")
		}
	}
	return false
}
