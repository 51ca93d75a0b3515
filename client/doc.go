// Package client is the typed gateway to the Zephyr Scale Cloud REST API.
//
// Methods take canonical inputs produced by package validate, re-check them,
// and send exactly one HTTP request per step; updates are a GET followed by a
// PUT of the merged entity. Failures come back as one of three error types:
//
//   - *validate.ValidationError: nothing was sent.
//   - *ClientError: the service answered with a non-2xx status, or with a
//     2xx body that does not match the declared schema (Mismatch is set).
//   - *TransportError: no status was obtained, the deadline expired, or the
//     body could not be read as JSON.
//
// NewResponse folds a method's (value, error) pair into the Response union
// consumed by the formatter.
package client
