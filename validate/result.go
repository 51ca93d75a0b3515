package validate

import (
	"strings"

	"pkt.systems/zscale/api"
)

// Result is either Valid with a canonical value or Invalid with at least one
// field error. The zero Result is Invalid with a generic error.
type Result[T any] struct {
	value T
	errs  []api.FieldError
	valid bool
}

// Valid wraps a canonical value.
func Valid[T any](v T) Result[T] {
	return Result[T]{value: v, valid: true}
}

// Invalid builds a failed result. The signature requires at least one error.
func Invalid[T any](first api.FieldError, rest ...api.FieldError) Result[T] {
	errs := make([]api.FieldError, 0, 1+len(rest))
	errs = append(errs, first)
	errs = append(errs, rest...)
	return Result[T]{errs: errs}
}

// From returns Valid(v) when errs is empty and Invalid(errs) otherwise.
func From[T any](v T, errs []api.FieldError) Result[T] {
	if len(errs) == 0 {
		return Valid(v)
	}
	return Invalid[T](errs[0], errs[1:]...)
}

// OK reports whether the result is Valid.
func (r Result[T]) OK() bool { return r.valid }

// Value returns the canonical value and whether the result is Valid.
func (r Result[T]) Value() (T, bool) {
	if !r.valid {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Errors returns the collected violations in the order they were found.
func (r Result[T]) Errors() []api.FieldError {
	if r.valid {
		return nil
	}
	if len(r.errs) == 0 {
		return []api.FieldError{{Message: "invalid arguments"}}
	}
	out := make([]api.FieldError, len(r.errs))
	copy(out, r.errs)
	return out
}

// Err returns nil for a Valid result and *ValidationError otherwise.
func (r Result[T]) Err() error {
	if r.valid {
		return nil
	}
	return &ValidationError{Errors: r.Errors()}
}

// Unwrap returns the value and Err in the usual Go shape.
func (r Result[T]) Unwrap() (T, error) {
	v, _ := r.Value()
	return v, r.Err()
}

// ValidationError reports every violated rule of one call. It is produced
// before any request is sent, except for an update whose merged body fails
// the check after the current entity was read (AfterRead). Nothing is
// written in either case.
type ValidationError struct {
	Errors    []api.FieldError `json:"errors"`
	AfterRead bool             `json:"-"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "zscale: invalid arguments"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.String())
	}
	return "zscale: invalid arguments: " + strings.Join(parts, "; ")
}

// Fields returns the offending field names in order, without duplicates.
func (e *ValidationError) Fields() []string {
	if e == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(e.Errors))
	var out []string
	for _, fe := range e.Errors {
		if fe.Field == "" {
			continue
		}
		if _, ok := seen[fe.Field]; ok {
			continue
		}
		seen[fe.Field] = struct{}{}
		out = append(out, fe.Field)
	}
	return out
}

// Checker is implemented by every canonical input in package api.
type Checker interface {
	Check() []api.FieldError
}

// Recheck validates an already canonical value again. For values produced by
// this package it always returns Valid with the value unchanged.
func Recheck[T Checker](v T) Result[T] {
	return From(v, v.Check())
}

// collector accumulates field errors across several rules.
type collector struct {
	errs []api.FieldError
}

func (c *collector) add(field, msg string) {
	c.errs = append(c.errs, api.FieldError{Field: field, Message: msg})
}

func (c *collector) merge(errs []api.FieldError) {
	c.errs = append(c.errs, errs...)
}

// mergeRenamed appends errs, replacing the wire name from with to at the start
// of each path.
func (c *collector) mergeRenamed(errs []api.FieldError, from, to string) {
	for _, fe := range errs {
		if fe.Field == from {
			fe.Field = to
		} else if rest, ok := strings.CutPrefix(fe.Field, from+"."); ok {
			fe.Field = to + "." + rest
		}
		c.errs = append(c.errs, fe)
	}
}

func result[T any](v T, c *collector) Result[T] {
	return From(v, c.errs)
}
