// Package field provides a JSON field-presence wrapper for sparse updates.
//
// Partial update payloads need to distinguish "field absent" from "field set
// to null" from "field set to a value". A plain pointer collapses the first
// two, which breaks nullable fields such as a task's end date.
package field

import "encoding/json"

// Optional wraps a value with JSON presence tracking.
//
// The zero value reports the field as absent. A field decoded from an
// explicit JSON null reports present and null.
type Optional[T any] struct {
	value   T
	present bool
	null    bool
}

// Set returns a present Optional holding value.
func Set[T any](value T) Optional[T] {
	return Optional[T]{value: value, present: true}
}

// Null returns a present Optional holding an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// Present reports whether the field appeared in the payload.
func (o Optional[T]) Present() bool {
	return o.present
}

// IsNull reports whether the field was an explicit JSON null.
func (o Optional[T]) IsNull() bool {
	return o.present && o.null
}

// Value returns the decoded value and whether a non-null value is present.
func (o Optional[T]) Value() (T, bool) {
	if !o.present || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// UnmarshalJSON records presence and decodes non-null values.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.present = true
	if string(data) == "null" {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON encodes the held value, or null when absent or explicit null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
