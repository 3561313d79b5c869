package domain

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state value used by partial updates: it is either unset
// (omitted from the request), cleared (explicit null), or set to a value.
// The zero value is unset.
type Field[T any] struct {
	state fieldState
	value T
}

type fieldState uint8

const (
	fieldUnset fieldState = iota
	fieldClear
	fieldSet
)

// Set returns a field holding v
func Set[T any](v T) Field[T] {
	return Field[T]{state: fieldSet, value: v}
}

// Clear returns a field that was explicitly nulled
func Clear[T any]() Field[T] {
	return Field[T]{state: fieldClear}
}

func (f Field[T]) IsUnset() bool   { return f.state == fieldUnset }
func (f Field[T]) IsCleared() bool { return f.state == fieldClear }
func (f Field[T]) IsSet() bool     { return f.state == fieldSet }

// Value returns the held value and whether the field is set
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == fieldSet
}

// ApplyTo overwrites *dst when the field is set. Unset and cleared fields
// leave *dst untouched. It reports whether *dst was written.
func (f Field[T]) ApplyTo(dst *T) bool {
	if f.state != fieldSet {
		return false
	}
	*dst = f.value
	return true
}

// ApplyClearableTo is ApplyTo for optional columns: a cleared field resets
// *dst to the zero value.
func (f Field[T]) ApplyClearableTo(dst *T) bool {
	switch f.state {
	case fieldSet:
		*dst = f.value
		return true
	case fieldClear:
		var zero T
		*dst = zero
		return true
	}
	return false
}

// UnmarshalJSON is only invoked when the key is present, which is what
// separates "omitted" from "null".
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.state, f.value = fieldClear, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.state, f.value = fieldSet, v
	return nil
}

// MarshalJSON writes null for unset and cleared fields
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != fieldSet {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
