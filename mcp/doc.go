// Package mcp exposes the Zephyr Scale gateway as an MCP server.
//
// Every gateway operation is registered as one tool whose name matches the
// client operation (get_test_case, create_test_cycle_issue_link, ...). A tool
// call runs the shared lifecycle from internal/format: the arguments are
// validated, the request is dispatched through the typed client only when
// validation passed, and the outcome is rendered as text.
//
// # What this package does
//
//   - Serves MCP over stdio (default) or streamable HTTP (default path /mcp)
//   - Registers one tool per gateway operation with operational descriptions
//   - Publishes markdown documentation resources under resource://docs/
//   - Counts tool calls by terminal state through OpenTelemetry metrics
//
// # Results
//
// A successful call returns the rendered text as content and
// {"data": ..., "page": ...} as structured content; page is present for list
// tools only.
//
// A failed call returns isError=true and a JSON text body of the form
//
//	{"error": {"error_code": "...", "category": "...", "message": "...", ...}}
//
// Validation failures use error_code invalid_argument, list every offending
// field under fields and never reach the network. Remote failures carry
// http_status; connectivity failures do not.
//
// # Schema-level validation
//
// Tool input schemas mark every argument optional. Required arguments are
// enforced by the validate package so that a missing argument is reported in
// the same envelope as every other violation, instead of as a protocol error.
//
// # Offline tool listing
//
// BuildToolsListResponseJSON materializes the tools/list payload in-process
// without a listener or credentials; cmd/getmcptoolslist and
// `zscale mcp tools` print it.
package mcp
