package mcp

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/zscale/client"
)

func TestToolErrorsExposeStructuredEnvelopeForValidationFailures(t *testing.T) {
	t.Parallel()

	s, up := newToolTestServer(t, client.Settings{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	cs := connectMCPClientSession(t, s)

	res := callTool(t, cs, "get_test_cases", map[string]any{
		"projectKey": "TEST",
		"maxResults": 5000,
		"startAt":    -1,
	})
	if !res.IsError {
		t.Fatalf("expected isError=true")
	}
	errObj := extractToolErrorObject(t, res)
	if got := toString(errObj["error_code"]); got != "invalid_argument" {
		t.Fatalf("expected error_code invalid_argument, got %q", got)
	}
	fields := toStrings(errObj["fields"])
	if !containsString(fields, "maxResults") || !containsString(fields, "startAt") {
		t.Fatalf("expected both offending fields, got %v", fields)
	}
	if _, ok := errObj["http_status"]; ok {
		t.Fatalf("validation failures carry no http_status: %#v", errObj)
	}
	if !strings.Contains(toString(errObj["message"]), "No request was sent.") {
		t.Fatalf("unexpected message %q", toString(errObj["message"]))
	}
	if n := len(up.requests()); n != 0 {
		t.Fatalf("expected no upstream request, got %d", n)
	}
}

func TestMissingRequiredArgumentsAreReportedTogether(t *testing.T) {
	t.Parallel()

	s, up := newToolTestServer(t, client.Settings{}, nil)
	cs := connectMCPClientSession(t, s)

	res := callTool(t, cs, "create_test_case", map[string]any{})
	if !res.IsError {
		t.Fatalf("expected isError=true")
	}
	errObj := extractToolErrorObject(t, res)
	fields := toStrings(errObj["fields"])
	if !containsString(fields, "name") {
		t.Fatalf("expected name among fields, got %v", fields)
	}
	if n := len(up.requests()); n != 0 {
		t.Fatalf("expected no upstream request, got %d", n)
	}
}

func TestIssueKeyInsteadOfIssueIDIsRejected(t *testing.T) {
	t.Parallel()

	s, up := newToolTestServer(t, client.Settings{}, nil)
	cs := connectMCPClientSession(t, s)

	res := callTool(t, cs, "create_test_case_issue_link", map[string]any{
		"testCaseKey": "TEST-T1",
		"issueId":     "TEST-123",
	})
	if !res.IsError {
		t.Fatalf("expected isError=true")
	}
	errObj := extractToolErrorObject(t, res)
	if got := toStrings(errObj["fields"]); len(got) != 1 || got[0] != "issueId" {
		t.Fatalf("expected issueId field, got %v", got)
	}
	if !strings.Contains(toString(errObj["message"]), "numeric Jira issue id") {
		t.Fatalf("expected issue id guidance, got %q", toString(errObj["message"]))
	}
	if n := len(up.requests()); n != 0 {
		t.Fatalf("expected no upstream request, got %d", n)
	}
}

func TestToolErrorsDistinguishNotFoundFromUnauthorized(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		status   int
		body     string
		code     string
		category string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"errorCode":404,"message":"Test case TEST-T9999 not found"}`, code: "not_found", category: "not_found"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"errorMessages":["Token expired"]}`, code: "unauthorized", category: "authentication"},
		{name: "remote failure", status: http.StatusBadGateway, body: `{"message":"upstream down"}`, code: "remote_failure", category: "remote"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s, up := newToolTestServer(t, client.Settings{}, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			cs := connectMCPClientSession(t, s)

			res := callTool(t, cs, "get_test_case", map[string]any{"testCaseKey": "TEST-T9999"})
			if !res.IsError {
				t.Fatalf("expected isError=true")
			}
			errObj := extractToolErrorObject(t, res)
			if got := toString(errObj["error_code"]); got != tc.code {
				t.Fatalf("expected error_code %q, got %q", tc.code, got)
			}
			if got := toString(errObj["category"]); got != tc.category {
				t.Fatalf("expected category %q, got %q", tc.category, got)
			}
			if status, _ := errObj["http_status"].(float64); int(status) != tc.status {
				t.Fatalf("expected http_status %d, got %#v", tc.status, errObj["http_status"])
			}
			if toString(errObj["hint"]) == "" || toString(errObj["correlation_id"]) == "" {
				t.Fatalf("expected hint and correlation id: %#v", errObj)
			}
			if n := len(up.requests()); n != 1 {
				t.Fatalf("expected exactly one upstream request, got %d", n)
			}
		})
	}
}

func TestToolErrorsReportSchemaMismatch(t *testing.T) {
	t.Parallel()

	s, _ := newToolTestServer(t, client.Settings{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"seven","name":"High"}`)
	})
	cs := connectMCPClientSession(t, s)

	res := callTool(t, cs, "get_priority", map[string]any{"priorityId": 7})
	if !res.IsError {
		t.Fatalf("expected isError=true")
	}
	errObj := extractToolErrorObject(t, res)
	if got := toString(errObj["error_code"]); got != "schema_mismatch" {
		t.Fatalf("expected schema_mismatch, got %q", got)
	}
	if got := toString(errObj["category"]); got != "contract" {
		t.Fatalf("expected contract category, got %q", got)
	}
}

func TestToolErrorsReportConnectivityWithoutStatus(t *testing.T) {
	t.Parallel()

	s, _ := newToolTestServer(t, client.Settings{}, func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Errorf("response writer cannot hijack")
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
	})
	cs := connectMCPClientSession(t, s)

	res := callTool(t, cs, "get_folder", map[string]any{"folderId": 3})
	if !res.IsError {
		t.Fatalf("expected isError=true")
	}
	errObj := extractToolErrorObject(t, res)
	if got := toString(errObj["error_code"]); got != "transport_failure" {
		t.Fatalf("expected transport_failure, got %q", got)
	}
	if _, ok := errObj["http_status"]; ok {
		t.Fatalf("connectivity failures carry no http_status: %#v", errObj)
	}
	if retry, _ := errObj["retryable"].(bool); !retry {
		t.Fatalf("connectivity failures are retryable: %#v", errObj)
	}
}

func extractToolErrorObject(t *testing.T, res *mcpsdk.CallToolResult) map[string]any {
	t.Helper()
	text := resultText(t, res)
	var content map[string]any
	if err := json.Unmarshal([]byte(text), &content); err != nil {
		t.Fatalf("expected json error envelope text, got %q: %v", text, err)
	}
	errRaw, ok := content["error"]
	if !ok {
		t.Fatalf("expected error object in content text, got %#v", content)
	}
	errObj, ok := errRaw.(map[string]any)
	if !ok {
		t.Fatalf("expected structured error object, got %T", errRaw)
	}
	return errObj
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

func toStrings(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, toString(item))
	}
	return out
}

func containsString(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
