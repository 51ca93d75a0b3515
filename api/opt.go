package api

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Opt carries an optional field. The zero value is absent, which is distinct
// from a present empty string, zero or false.
type Opt[T any] struct {
	v  T
	ok bool
}

// Some returns a present optional holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{v: v, ok: true}
}

// None returns an absent optional.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// FromPtr converts a nil-able pointer into an optional.
func FromPtr[T any](p *T) Opt[T] {
	if p == nil {
		return Opt[T]{}
	}
	return Some(*p)
}

// Get returns the held value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.v, o.ok
}

// IsSet reports whether the value is present.
func (o Opt[T]) IsSet() bool {
	return o.ok
}

// IsZero reports absence; encoding/json uses it for omitzero.
func (o Opt[T]) IsZero() bool {
	return !o.ok
}

// OrElse returns the held value or def when absent.
func (o Opt[T]) OrElse(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// Or returns o when present, otherwise other.
func (o Opt[T]) Or(other Opt[T]) Opt[T] {
	if o.ok {
		return o
	}
	return other
}

// Equal reports whether both values are absent or both hold deeply equal
// values.
func (o Opt[T]) Equal(other Opt[T]) bool {
	if o.ok != other.ok {
		return false
	}
	return !o.ok || reflect.DeepEqual(o.v, other.v)
}

// MarshalJSON encodes an absent value as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// UnmarshalJSON decodes null as absent.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Opt[T]{v: v, ok: true}
	return nil
}
