package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pkt.systems/zscale/api"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/correlation"
	"pkt.systems/zscale/internal/format"
	"pkt.systems/zscale/validate"
)

// toolOutput is the structured content of every successful tool call.
type toolOutput struct {
	Data any                 `json:"data" jsonschema:"The entity, list page or creation receipt returned by Zephyr Scale"`
	Page *format.PageSummary `json:"page,omitempty" jsonschema:"Pagination summary, present for list tools"`
}

type toolKind uint8

const (
	toolRead toolKind = iota
	toolCreate
	toolUpdate
)

func toolAnnotations(kind toolKind) *mcpsdk.ToolAnnotations {
	openWorld := true
	switch kind {
	case toolRead:
		return &mcpsdk.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: &openWorld}
	case toolUpdate:
		destructive := false
		return &mcpsdk.ToolAnnotations{IdempotentHint: true, DestructiveHint: &destructive, OpenWorldHint: &openWorld}
	default:
		destructive := false
		return &mcpsdk.ToolAnnotations{DestructiveHint: &destructive, OpenWorldHint: &openWorld}
	}
}

func addTool[In any](srv *mcpsdk.Server, desc func(string) string, op client.Op, kind toolKind, h mcpsdk.ToolHandlerFor[In, toolOutput]) {
	mcpsdk.AddTool(srv, &mcpsdk.Tool{
		Name:        string(op),
		Description: desc(string(op)),
		Annotations: toolAnnotations(kind),
	}, withStructuredToolErrors(h))
}

func (s *server) registerTools(srv *mcpsdk.Server) {
	descriptions := buildToolDescriptions()
	desc := func(name string) string {
		description, ok := descriptions[name]
		if !ok {
			panic(fmt.Sprintf("missing MCP tool description for %q", name))
		}
		return description
	}

	addTool(srv, desc, client.OpHealthcheck, toolRead, s.handleHealthcheckTool)
	s.registerReferenceTools(srv, desc)
	s.registerTestCaseTools(srv, desc)
	s.registerCycleAndPlanTools(srv, desc)
}

// runTool drives one tool call through the formatter lifecycle and turns the
// outcome into an MCP result or a structured tool error.
func runTool[V, T any](ctx context.Context, s *server, op client.Op, validated func() validate.Result[V], dispatch func(context.Context, V) (T, error), render format.Renderer[T]) (*mcpsdk.CallToolResult, toolOutput, error) {
	ctx, cid := correlation.Ensure(ctx)
	ctx, span := s.tracer.Start(ctx, "zscale.mcp.tool",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("zscale.tool", string(op)),
			attribute.String("zscale.correlation_id", cid),
		),
	)
	defer span.End()

	start := time.Now()
	o := format.Run(ctx, string(op), validated, dispatch, render)
	elapsed := time.Since(start)
	s.metrics.record(ctx, o, elapsed)
	span.SetAttributes(attribute.String("zscale.state", o.State.String()))

	if !o.OK() {
		span.SetStatus(codes.Error, o.Class.Code)
		log := s.toolLog.With("tool", string(op), "cid", cid, "error_code", o.Class.Code)
		if o.State == format.Rejected {
			log.Info("mcp.tool.rejected", "fields", o.Class.Fields)
		} else {
			log.Warn("mcp.tool.failed", "state", o.State.String(), "http_status", o.Class.HTTPStatus, "elapsed", elapsed, "error", o.Err)
		}
		return nil, toolOutput{}, outcomeError(o, cid)
	}
	s.toolLog.Debug("mcp.tool.done", "tool", string(op), "cid", cid, "elapsed", elapsed)
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: o.Text}},
	}, toolOutput{Data: o.Data, Page: o.Page}, nil
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

type healthcheckToolInput struct{}

func (s *server) handleHealthcheckTool(ctx context.Context, _ *mcpsdk.CallToolRequest, _ healthcheckToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpHealthcheck,
		func() validate.Result[struct{}] { return validate.Valid(struct{}{}) },
		func(ctx context.Context, _ struct{}) (api.Health, error) {
			return s.gateway.Healthcheck(ctx)
		},
		format.Health,
	)
}
