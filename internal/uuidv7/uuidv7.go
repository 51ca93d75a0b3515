// Package uuidv7 mints time-ordered request ids.
package uuidv7

import "github.com/google/uuid"

// New returns a UUIDv7. It panics only if the system randomness source fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns New in its canonical text form.
func NewString() string {
	return New().String()
}
