package main

import (
	"encoding/json"
	"testing"

	"pkt.systems/pslog"
	"pkt.systems/zscale/client"
)

func TestMCPCommandFlags(t *testing.T) {
	isolateEnv(t)
	root := newRootCommand(pslog.NoopLogger())
	mcpCmd, _, err := root.Find([]string{"mcp"})
	if err != nil {
		t.Fatalf("find mcp command: %v", err)
	}
	if flag := mcpCmd.Flags().Lookup("listen"); flag == nil {
		t.Fatalf("expected --listen on mcp command")
	} else if flag.Shorthand != "l" || flag.DefValue != "127.0.0.1:19342" {
		t.Fatalf("unexpected --listen flag: %#v", flag)
	}
	if flag := mcpCmd.Flags().Lookup("transport"); flag == nil || flag.DefValue != "stdio" {
		t.Fatalf("expected --transport defaulting to stdio")
	}
	if inherited := mcpCmd.InheritedFlags().Lookup("default-project-key"); inherited == nil || inherited.Shorthand != "p" {
		t.Fatalf("expected inherited --default-project-key/-p on mcp command")
	}
}

func TestMCPTransportFromEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ZSCALE_MCP_TRANSPORT", "http")
	t.Setenv("ZSCALE_MCP_LISTEN", "127.0.0.1:0")
	_, a := buildRootCommand(pslog.NoopLogger())
	cfg := a.mcpConfig()
	if cfg.Transport != "http" || cfg.Listen != "127.0.0.1:0" {
		t.Fatalf("unexpected mcp config: %+v", cfg)
	}
}

func TestMCPToolsCommandNeedsNoToken(t *testing.T) {
	isolateEnv(t)
	stdout, _, err := executeRootCommand(t, "mcp", "tools")
	if err != nil {
		t.Fatalf("mcp tools: %v", err)
	}
	var decoded struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(stdout), &decoded); err != nil {
		t.Fatalf("decode tools list: %v\n%s", err, stdout)
	}
	if got, want := len(decoded.Result.Tools), len(client.Ops()); got != want {
		t.Fatalf("expected %d tools, got %d", want, got)
	}
}

func TestMCPServeRequiresToken(t *testing.T) {
	isolateEnv(t)
	_, _, err := executeRootCommand(t, "mcp")
	if err == nil {
		t.Fatalf("expected missing token error")
	}
}
