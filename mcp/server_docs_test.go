package mcp

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/pslog"
	"pkt.systems/zscale/client"
)

func TestDefaultServerInstructionsIncludeDefaultProject(t *testing.T) {
	t.Parallel()
	text := defaultServerInstructions(client.Settings{DefaultProjectKey: "TEST"})
	if !strings.Contains(text, "Default project: TEST") {
		t.Fatalf("expected default project in instructions: %q", text)
	}
	if !strings.Contains(text, "call healthcheck first") {
		t.Fatalf("expected discovery guidance in instructions: %q", text)
	}
	if !strings.Contains(text, docErrorsURI) {
		t.Fatalf("expected documentation resources in instructions: %q", text)
	}
}

func TestDefaultServerInstructionsWithoutDefaultProject(t *testing.T) {
	t.Parallel()
	text := defaultServerInstructions(client.Settings{})
	if !strings.Contains(text, "Default project: none configured") {
		t.Fatalf("expected missing default project note: %q", text)
	}
}

func TestKeysDocumentListsEveryKind(t *testing.T) {
	t.Parallel()
	s := &server{source: client.StaticSource{}}
	doc := s.resourceDocs()[docKeysURI]
	for _, want := range []string{"`testCaseKey` | PROJ-T123", "`testCycleKey` | PROJ-R123", "`testPlanKey` | PROJ-P123", "`folderId` | 123"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("keys document missing %q:\n%s", want, doc)
		}
	}
}

func TestErrorsDocumentListsEveryCode(t *testing.T) {
	t.Parallel()
	s := &server{source: client.StaticSource{}}
	doc := s.resourceDocs()[docErrorsURI]
	for _, code := range []string{"invalid_argument", "unauthorized", "not_found", "bad_request", "client_error", "remote_failure", "schema_mismatch", "transport_failure", "timeout", "tool_error"} {
		if !strings.Contains(doc, "`"+code+"`") {
			t.Fatalf("errors document missing %q", code)
		}
	}
}

func TestReadOverviewResource(t *testing.T) {
	t.Parallel()
	s, _ := newToolTestServer(t, client.Settings{DefaultProjectKey: "TEST"}, nil)
	cs := connectMCPClientSession(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := cs.ReadResource(ctx, &mcpsdk.ReadResourceParams{URI: docOverviewURI})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(res.Contents) != 1 || !strings.Contains(res.Contents[0].Text, "Default project: TEST") {
		t.Fatalf("unexpected overview contents: %#v", res.Contents)
	}
}

func TestHandleDocResourceNotFound(t *testing.T) {
	t.Parallel()
	s := &server{source: client.StaticSource{}}
	_, err := s.handleDocResource(context.Background(), &mcpsdk.ReadResourceRequest{
		Params: &mcpsdk.ReadResourceParams{URI: "resource://docs/missing.md"},
	})
	if err == nil {
		t.Fatalf("expected resource not found error")
	}
}

type reloadableSource struct {
	mu       sync.Mutex
	settings client.Settings
}

func (r *reloadableSource) Current() client.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

func (r *reloadableSource) set(s client.Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
}

func TestInstructionsFollowConfigReload(t *testing.T) {
	t.Parallel()
	src := &reloadableSource{settings: client.Settings{DefaultProjectKey: "ALPHA"}}
	gateway, err := client.New(src)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	s := newServer(Config{}, gateway, src, pslog.NoopLogger(), nil, nil)

	first := s.mcpServer()
	if s.mcpServer() != first {
		t.Fatalf("unchanged config must reuse the MCP server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	instructions := func() string {
		cs, closeFn, err := s.connectInMemory(ctx, "reload-test")
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		defer closeFn()
		return cs.InitializeResult().Instructions
	}
	if got := instructions(); !strings.Contains(got, "Default project: ALPHA") {
		t.Fatalf("unexpected instructions %q", got)
	}

	src.set(client.Settings{DefaultProjectKey: "BETA"})
	if got := instructions(); !strings.Contains(got, "Default project: BETA") {
		t.Fatalf("instructions not refreshed after reload: %q", got)
	}
	if s.mcpServer() == first {
		t.Fatalf("expected a rebuilt MCP server after the instructions changed")
	}
}

func TestNewServerFallsBackToStderrLogger(t *testing.T) {
	t.Parallel()
	gateway, err := client.New(client.StaticSource{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	s := newServer(Config{}, gateway, nil, nil, nil, nil)
	if s.logger == nil || s.toolLog == nil {
		t.Fatalf("expected a default logger")
	}
	if s.source == nil || s.tracerProvider == nil || s.meterProvider == nil {
		t.Fatalf("expected defaults for source and providers")
	}
}
