package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"pkt.systems/zscale/api"
)

// ClientError is a non-2xx reply, or a 2xx reply whose body does not match
// the declared output schema (Mismatch is set).
type ClientError struct {
	// Op is the operation that failed.
	Op Op
	// Status is the HTTP status code returned by the service.
	Status int
	// Message is the service's own explanation, or a phrase naming the status.
	Message string
	// Body holds the raw response body for diagnostics.
	Body []byte
	// Mismatch is set when a 2xx body violated the response contract.
	Mismatch *SchemaMismatchError
}

func (e *ClientError) Error() string {
	if e.Mismatch != nil {
		return e.Mismatch.Error()
	}
	return fmt.Sprintf("zscale: %s: status %d: %s", e.Op, e.Status, e.Message)
}

// Unwrap exposes the schema mismatch, when there is one.
func (e *ClientError) Unwrap() error {
	if e.Mismatch == nil {
		return nil
	}
	return e.Mismatch
}

// SchemaMismatchError reports contract drift: the service answered with a
// shape the output schema does not accept.
type SchemaMismatchError struct {
	Op     Op
	Status int
	Err    *api.MismatchError
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("zscale: %s: unexpected response shape: %v", e.Op, e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// TransportError is a failure before an HTTP status was obtained, or a body
// that could not be read or parsed as JSON.
type TransportError struct {
	Op     Op
	Method string
	URL    string
	// Timeout is true when the per-call deadline expired.
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("zscale: %s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a TransportError caused by the deadline.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Timeout
}

// IsSchemaMismatch reports whether err carries contract drift.
func IsSchemaMismatch(err error) bool {
	var sm *SchemaMismatchError
	return errors.As(err, &sm)
}

func timedOut(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func decodeError(op Op, status int, data []byte) *ClientError {
	return &ClientError{
		Op:      op,
		Status:  status,
		Message: remoteMessage(status, data),
		Body:    data,
	}
}

// remoteMessage picks the most specific explanation in an error body:
// message, then errorMessages, then error, then the status phrase.
func remoteMessage(status int, data []byte) string {
	var body api.ErrorResponse
	if len(data) > 0 && json.Unmarshal(data, &body) == nil {
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
		var msgs []string
		for _, m := range body.ErrorMessages {
			if m = strings.TrimSpace(m); m != "" {
				msgs = append(msgs, m)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
	}
	return statusPhrase(status)
}

func statusPhrase(status int) string {
	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("HTTP %d %s", status, text)
	}
	return fmt.Sprintf("HTTP %d", status)
}
