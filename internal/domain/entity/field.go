package entity

import (
	"bytes"
	"encoding/json"
)

// FieldState distinguishes a field the user never mentioned from one they
// explicitly cleared ("any airline", "any class").
type FieldState uint8

const (
	FieldAbsent FieldState = iota
	FieldSet
	FieldCleared
)

func (s FieldState) String() string {
	switch s {
	case FieldSet:
		return "set"
	case FieldCleared:
		return "cleared"
	default:
		return "absent"
	}
}

// Field is a tri-state value. The zero value is absent.
//
// JSON: absent fields are omitted (use the omitzero tag option), cleared
// fields encode as null and set fields encode as their value.
type Field[T any] struct {
	state FieldState
	value T
}

// Set returns a field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{state: FieldSet, value: v}
}

// Cleared returns an explicitly cleared field.
func Cleared[T any]() Field[T] {
	return Field[T]{state: FieldCleared}
}

func (f Field[T]) State() FieldState { return f.state }
func (f Field[T]) IsSet() bool       { return f.state == FieldSet }
func (f Field[T]) IsCleared() bool   { return f.state == FieldCleared }
func (f Field[T]) IsAbsent() bool    { return f.state == FieldAbsent }

// IsZero reports absence; encoding/json uses it for omitzero.
func (f Field[T]) IsZero() bool { return f.state == FieldAbsent }

// Value returns the held value and whether the field is set.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == FieldSet
}

// ValueOr returns the held value, or def when the field is not set.
func (f Field[T]) ValueOr(def T) T {
	if f.state != FieldSet {
		return def
	}
	return f.value
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != FieldSet {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.state, f.value = FieldCleared, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.state, f.value = FieldSet, v
	return nil
}
