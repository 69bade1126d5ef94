package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoSchema is returned when there is no form to fill.
	ErrNoSchema = errors.New("tui: no schema to fill")
)
