package mcp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/pslog"
	"pkt.systems/zscale/client"
)

type upstreamRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type upstream struct {
	mu   sync.Mutex
	reqs []upstreamRequest
}

func (u *upstream) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.reqs = append(u.reqs, upstreamRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
}

func (u *upstream) requests() []upstreamRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]upstreamRequest(nil), u.reqs...)
}

// newToolTestServer builds an MCP server whose gateway talks to a stub
// Zephyr Scale API served by handler.
func newToolTestServer(t *testing.T, settings client.Settings, handler http.HandlerFunc) (*server, *upstream) {
	t.Helper()
	up := &upstream{}
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up.record(r)
		if handler == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(stub.Close)

	settings.BaseURL = stub.URL
	if settings.Token == "" {
		settings.Token = "secret-token"
	}
	source := client.StaticSource(settings)
	gateway, err := client.New(source, client.WithHTTPClient(stub.Client()))
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	cfg := Config{}
	applyDefaults(&cfg)
	return newServer(cfg, gateway, source, pslog.NoopLogger(), nil, nil), up
}

func connectMCPClientSession(t *testing.T, s *server) *mcpsdk.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	cs, closeFn, err := s.connectInMemory(ctx, "test-client")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(closeFn)
	return cs
}

func callTool(t *testing.T, cs *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call tool %s: %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcpsdk.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("expected content in result")
	}
	text, ok := res.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()
	cfg := Config{Transport: " HTTP "}
	applyDefaults(&cfg)
	if cfg.Transport != TransportHTTP {
		t.Fatalf("expected transport http, got %q", cfg.Transport)
	}
	if cfg.Listen != defaultListen || cfg.MCPPath != defaultMCPPath || cfg.ShutdownTimeout != defaultShutdownTimeout {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestValidateConfigRejectsUnknownTransport(t *testing.T) {
	t.Parallel()
	cfg := Config{Transport: "websocket"}
	applyDefaults(&cfg)
	err := validateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown transport") {
		t.Fatalf("expected unknown transport error, got %v", err)
	}
}

func TestNewServerRequiresGateway(t *testing.T) {
	t.Parallel()
	if _, err := NewServer(NewServerRequest{}); err == nil {
		t.Fatalf("expected error without gateway")
	}
}

func TestCleanHTTPPath(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"":           defaultMCPPath,
		"mcp":        "/mcp",
		"/a/../mcp/": "/mcp",
		" /zephyr ":  "/zephyr",
	}
	for in, want := range cases {
		if got := cleanHTTPPath(in); got != want {
			t.Fatalf("cleanHTTPPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHealthzEndpoint(t *testing.T) {
	t.Parallel()
	s, _ := newToolTestServer(t, client.Settings{}, nil)
	mux := s.buildMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST /healthz, got %d", rec.Code)
	}
}

func TestCreatePriorityToolSendsOneRequest(t *testing.T) {
	t.Parallel()
	s, up := newToolTestServer(t, client.Settings{}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id":42,"self":"https://example.test/priorities/42"}`)
	})
	cs := connectMCPClientSession(t, s)

	res := callTool(t, cs, "create_priority", map[string]any{"projectKey": "TEST", "name": "High"})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if got := resultText(t, res); !strings.HasPrefix(got, "Created priority with id 42.") {
		t.Fatalf("unexpected text %q", got)
	}
	structured, ok := res.StructuredContent.(map[string]any)
	if !ok {
		t.Fatalf("expected structured content object, got %T", res.StructuredContent)
	}
	data, _ := structured["data"].(map[string]any)
	if id, _ := data["id"].(float64); id != 42 {
		t.Fatalf("expected data.id 42, got %#v", structured)
	}

	reqs := up.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one upstream request, got %d", len(reqs))
	}
	if reqs[0].Method != http.MethodPost || reqs[0].Path != "/priorities" {
		t.Fatalf("unexpected request %s %s", reqs[0].Method, reqs[0].Path)
	}
	if !strings.Contains(reqs[0].Body, `"projectKey":"TEST"`) || !strings.Contains(reqs[0].Body, `"name":"High"`) {
		t.Fatalf("unexpected body %s", reqs[0].Body)
	}
}

func TestListToolReturnsPageSummary(t *testing.T) {
	t.Parallel()
	s, up := newToolTestServer(t, client.Settings{DefaultProjectKey: "TEST"}, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"startAt":0,"maxResults":1,"total":3,"isLast":false,"values":[{"id":7,"project":{"id":10},"name":"High","index":0,"default":true}]}`)
	})
	cs := connectMCPClientSession(t, s)

	res := callTool(t, cs, "get_priorities", map[string]any{"maxResults": 1})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, "3 priorities in total; showing 1-1:") || !strings.Contains(text, "call again with startAt=1") {
		t.Fatalf("unexpected text %q", text)
	}
	structured, _ := res.StructuredContent.(map[string]any)
	page, _ := structured["page"].(map[string]any)
	if page["hasMore"] != true || page["returned"] != float64(1) || page["total"] != float64(3) {
		t.Fatalf("unexpected page summary %#v", page)
	}
	if got := up.requests()[0].Query; got != "maxResults=1&projectKey=TEST&startAt=0" {
		t.Fatalf("unexpected query %q", got)
	}
}

func TestToolsListMatchesGatewayOperations(t *testing.T) {
	t.Parallel()
	s, _ := newToolTestServer(t, client.Settings{}, nil)
	cs := connectMCPClientSession(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	list, err := cs.ListTools(ctx, &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	got := make(map[string]*mcpsdk.Tool, len(list.Tools))
	for _, tool := range list.Tools {
		got[tool.Name] = tool
	}
	for _, op := range client.Ops() {
		tool, ok := got[string(op)]
		if !ok {
			t.Fatalf("tool %s not registered", op)
		}
		if tool.Annotations == nil {
			t.Fatalf("tool %s has no annotations", op)
		}
	}
	if len(got) != len(client.Ops()) {
		t.Fatalf("expected %d tools, got %d", len(client.Ops()), len(got))
	}
	if !got["get_test_case"].Annotations.ReadOnlyHint {
		t.Fatalf("get_test_case should be read-only")
	}
	if got["create_test_case"].Annotations.ReadOnlyHint {
		t.Fatalf("create_test_case must not be read-only")
	}
	if !got["update_test_case"].Annotations.IdempotentHint {
		t.Fatalf("update_test_case should be idempotent")
	}
}
