// Package patch models tri-state partial-update fields. A field in a PATCH
// body is one of: absent (leave the stored value), present-with-null (clear
// the field), or present-with-value (replace). encoding/json only calls
// UnmarshalJSON for keys that appear in the body, which is exactly what keeps
// "absent" distinguishable from "null" — do not collapse the two.
package patch

import "encoding/json"

// Field is one tri-state patch value. The zero value is Unset.
type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

// Clear returns a Field that explicitly clears the target.
func Clear[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

// UnmarshalJSON is only invoked for keys present in the body; absent keys
// leave the zero (Unset) value.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.present = true
	if string(b) == "null" {
		f.null = true
		return nil
	}
	return json.Unmarshal(b, &f.value)
}

// IsUnset reports that the key was absent: keep the stored value.
func (f Field[T]) IsUnset() bool { return !f.present }

// IsClear reports an explicit null: clear the field, where legal.
func (f Field[T]) IsClear() bool { return f.present && f.null }

// Get returns the carried value and whether one was set.
func (f Field[T]) Get() (T, bool) {
	if !f.present || f.null {
		var zero T
		return zero, false
	}
	return f.value, true
}

// Or returns the carried value when set, otherwise stored. It must only be
// used for non-nullable targets after the caller has rejected IsClear.
func (f Field[T]) Or(stored T) T {
	if v, ok := f.Get(); ok {
		return v
	}
	return stored
}

// OrPtr merges onto a nullable target: unset keeps stored, clear yields nil,
// set yields a pointer to the new value.
func (f Field[T]) OrPtr(stored *T) *T {
	switch {
	case !f.present:
		return stored
	case f.null:
		return nil
	default:
		v := f.value
		return &v
	}
}
