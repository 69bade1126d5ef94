package model

import (
	"encoding/json"
	"strings"
)

// ValueKind tags the Value union.
type ValueKind int

const (
	SingleKind ValueKind = iota
	MultiKind
)

func (k ValueKind) String() string {
	if k == MultiKind {
		return "multi"
	}
	return "single"
}

// Value is a collected field value: Single(string) or Multi([]string).
type Value struct {
	kind   ValueKind
	single string
	multi  []string
}

// Single wraps a scalar value.
func Single(value string) Value {
	return Value{kind: SingleKind, single: value}
}

// Multi wraps a list of selected values. The list is copied and never nil.
func Multi(values ...string) Value {
	out := make([]string, len(values))
	copy(out, values)
	return Value{kind: MultiKind, multi: out}
}

// Kind reports the union variant.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsMulti reports whether the value is a list.
func (v Value) IsMulti() bool {
	return v.kind == MultiKind
}

// String returns the scalar value, or the list joined with ", ".
func (v Value) String() string {
	if v.kind == MultiKind {
		return strings.Join(v.multi, ", ")
	}
	return v.single
}

// Strings returns the list for Multi values and a one-element slice for
// non-empty Single values.
func (v Value) Strings() []string {
	if v.kind == MultiKind {
		out := make([]string, len(v.multi))
		copy(out, v.multi)
		return out
	}
	if v.single == "" {
		return nil
	}
	return []string{v.single}
}

// Empty reports whether nothing was entered or selected.
func (v Value) Empty() bool {
	if v.kind == MultiKind {
		return len(v.multi) == 0
	}
	return strings.TrimSpace(v.single) == ""
}

// MarshalJSON encodes Single as a string and Multi as an array (never null).
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == MultiKind {
		if v.multi == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.multi)
	}
	return json.Marshal(v.single)
}

// Any returns the value as string or []string for template contexts.
func (v Value) Any() any {
	if v.kind == MultiKind {
		return v.Strings()
	}
	return v.single
}
