package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/zscale/internal/format"
)

type toolErrorEnvelope struct {
	ErrorCode     string   `json:"error_code"`
	Category      string   `json:"category"`
	Message       string   `json:"message,omitempty"`
	Detail        string   `json:"detail,omitempty"`
	Hint          string   `json:"hint,omitempty"`
	Retryable     bool     `json:"retryable"`
	HTTPStatus    int      `json:"http_status,omitempty"`
	Fields        []string `json:"fields,omitempty"`
	CorrelationID string   `json:"correlation_id,omitempty"`
}

func withStructuredToolErrors[In, Out any](h mcpsdk.ToolHandlerFor[In, Out]) mcpsdk.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, Out, error) {
		res, out, err := h(ctx, req, input)
		if err == nil {
			return res, out, nil
		}
		var zero Out
		return nil, zero, toolError{Envelope: classifyToolError(err)}
	}
}

type toolError struct {
	Envelope toolErrorEnvelope
}

func (e toolError) Error() string {
	envelope := map[string]any{"error": e.Envelope}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return `{"error":{"error_code":"tool_error","category":"internal","detail":"failed to encode error envelope"}}`
	}
	return string(encoded)
}

func classifyToolError(err error) toolErrorEnvelope {
	var te toolError
	if errors.As(err, &te) {
		return te.Envelope
	}
	return envelopeFor(format.Classify(err), "")
}

func envelopeFor(c format.Classification, message string) toolErrorEnvelope {
	return toolErrorEnvelope{
		ErrorCode:  c.Code,
		Category:   c.Category,
		Message:    strings.TrimSpace(message),
		Detail:     strings.TrimSpace(c.Detail),
		Hint:       c.Hint,
		Retryable:  c.Retryable,
		HTTPStatus: c.HTTPStatus,
		Fields:     c.Fields,
	}
}

func outcomeError(o format.Outcome, cid string) toolError {
	env := envelopeFor(o.Class, o.Text)
	env.CorrelationID = cid
	return toolError{Envelope: env}
}
