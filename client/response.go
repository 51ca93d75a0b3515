package client

import "errors"

// Response is the outcome of one gateway call: exactly one of Success,
// ClientError or TransportError holds. Any other error (a validation
// failure raised before dispatch) is reported by Err alone.
type Response[T any] struct {
	value T
	err   error
}

// NewResponse wraps the (value, error) pair returned by a Client method.
func NewResponse[T any](v T, err error) Response[T] {
	if err != nil {
		var zero T
		return Response[T]{value: zero, err: err}
	}
	return Response[T]{value: v}
}

// Success returns the entity or page when the call succeeded.
func (r Response[T]) Success() (T, bool) {
	return r.value, r.err == nil
}

// ClientError returns the remote rejection, including schema mismatches.
func (r Response[T]) ClientError() (*ClientError, bool) {
	var ce *ClientError
	if errors.As(r.err, &ce) {
		return ce, true
	}
	return nil, false
}

// TransportError returns the connectivity failure.
func (r Response[T]) TransportError() (*TransportError, bool) {
	var te *TransportError
	if errors.As(r.err, &te) {
		return te, true
	}
	return nil, false
}

// Err returns the failure, or nil on success.
func (r Response[T]) Err() error { return r.err }
