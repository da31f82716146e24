package types

import (
	"bytes"
	"encoding/json"
)

// Optional tracks whether a JSON field was present in the payload. A present null
// decodes to the zero value of T, so Optional[*T] distinguishes absent, null and set.
type Optional[T any] struct {
	Present bool
	Value   T
}

// Some builds a present Optional.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Present: true, Value: value}
}

// None builds an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var zero T
	o.Present = true
	o.Value = zero
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return json.Unmarshal(trimmed, &o.Value)
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// OrElse returns the value when present and fallback otherwise.
func (o Optional[T]) OrElse(fallback T) T {
	if o.Present {
		return o.Value
	}
	return fallback
}
