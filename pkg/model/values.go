package model

import (
	"bytes"
	"encoding/json"
)

// FormValues is an ordered mapping from field name to Value.
type FormValues struct {
	names  []string
	values map[string]Value
}

// NewFormValues returns an empty record.
func NewFormValues() *FormValues {
	return &FormValues{values: make(map[string]Value)}
}

// Set stores a value. Re-setting an existing name keeps its position.
func (f *FormValues) Set(name string, value Value) {
	if f.values == nil {
		f.values = make(map[string]Value)
	}
	if _, exists := f.values[name]; !exists {
		f.names = append(f.names, name)
	}
	f.values[name] = value
}

// Get returns the value stored for name.
func (f *FormValues) Get(name string) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	value, ok := f.values[name]
	return value, ok
}

// Len returns the number of stored fields.
func (f *FormValues) Len() int {
	if f == nil {
		return 0
	}
	return len(f.names)
}

// Names returns field names in insertion order.
func (f *FormValues) Names() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Each calls fn for every entry in order.
func (f *FormValues) Each(fn func(name string, value Value)) {
	if f == nil {
		return
	}
	for _, name := range f.names {
		fn(name, f.values[name])
	}
}

// Map returns a plain map of strings and string slices.
func (f *FormValues) Map() map[string]any {
	out := make(map[string]any, f.Len())
	f.Each(func(name string, value Value) {
		out[name] = value.Any()
	})
	return out
}

// MarshalJSON encodes the record as an object in insertion order.
func (f *FormValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, name := range f.Names() {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := f.values[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
