// Package format turns validator and gateway results into caller-facing
// outcomes.
//
// Run drives a call through the lifecycle Received, Validating, Rejected or
// Validated, Dispatching, then Succeeded, ClientFailed or TransportFailed, and
// finally Formatted. Each state is entered at most once. Successful values are
// rendered by a per-entity Renderer; failures get a text naming the offending
// fields, the HTTP status and a hint, or the connectivity cause, together with
// a Classification the tool layer reports as a structured error.
package format
