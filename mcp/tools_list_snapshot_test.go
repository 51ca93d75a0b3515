package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"pkt.systems/zscale/client"
)

func TestBuildToolsListResponseJSON(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := BuildToolsListResponseJSON(ctx, Config{})
	if err != nil {
		t.Fatalf("build tools list json: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty tools list json")
	}

	var decoded ToolsListResponse
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded.JSONRPC != "2.0" {
		t.Fatalf("expected jsonrpc=2.0, got %q", decoded.JSONRPC)
	}
	if decoded.ID != 1 {
		t.Fatalf("expected id=1, got %d", decoded.ID)
	}
	if len(decoded.Result.Tools) != len(client.Ops()) {
		t.Fatalf("expected %d tools, got %d", len(client.Ops()), len(decoded.Result.Tools))
	}

	found := map[string]bool{}
	for _, tool := range decoded.Result.Tools {
		if tool == nil {
			continue
		}
		found[tool.Name] = true
	}
	for _, want := range []string{"healthcheck", "create_test_case", "create_test_plan_test_cycle_link"} {
		if !found[want] {
			t.Fatalf("missing tool %q in tools/list output", want)
		}
	}
}

func TestToolInputSchemasLeaveRequirednessToValidators(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := BuildToolsListResponseJSON(ctx, Config{})
	if err != nil {
		t.Fatalf("build tools list json: %v", err)
	}
	var decoded struct {
		Result struct {
			Tools []struct {
				Name        string         `json:"name"`
				InputSchema map[string]any `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	for _, tool := range decoded.Result.Tools {
		if req, ok := tool.InputSchema["required"].([]any); ok && len(req) > 0 {
			t.Fatalf("tool %s declares schema-required fields %v", tool.Name, req)
		}
		if tool.Name == "create_test_case_issue_link" {
			props, _ := tool.InputSchema["properties"].(map[string]any)
			issue, _ := props["issueId"].(map[string]any)
			if desc, _ := issue["description"].(string); !strings.Contains(desc, "not an issue key") {
				t.Fatalf("issueId description missing guidance: %#v", issue)
			}
		}
	}
}
