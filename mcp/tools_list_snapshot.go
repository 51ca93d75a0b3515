package mcp

import (
	"context"
	"encoding/json"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/pslog"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/version"
)

// ToolsListResponse mirrors a canonical JSON-RPC tools/list result payload.
type ToolsListResponse struct {
	ID      int                 `json:"id"`
	JSONRPC string              `json:"jsonrpc"`
	Result  ToolsListResultBody `json:"result"`
}

// ToolsListResultBody is the JSON-RPC "result" object for tools/list.
type ToolsListResultBody struct {
	Tools      []*mcpsdk.Tool `json:"tools"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// BuildToolsListResponse builds a canonical tools/list payload in-process.
//
// This does not start a listener and never contacts Zephyr Scale. It only
// materializes the MCP tool registry.
func BuildToolsListResponse(ctx context.Context, cfg Config) (ToolsListResponse, error) {
	applyDefaults(&cfg)

	source := client.StaticSource{}
	gateway, err := client.New(source)
	if err != nil {
		return ToolsListResponse{}, err
	}
	s := newServer(cfg, gateway, source, pslog.NoopLogger(), nil, nil)

	cs, closeFn, err := s.connectInMemory(ctx, "zscale-mcp-tools-list")
	if err != nil {
		return ToolsListResponse{}, err
	}
	defer closeFn()

	var tools []*mcpsdk.Tool
	params := &mcpsdk.ListToolsParams{}
	for {
		list, err := cs.ListTools(ctx, params)
		if err != nil {
			return ToolsListResponse{}, err
		}
		tools = append(tools, list.Tools...)
		if list.NextCursor == "" {
			break
		}
		params.Cursor = list.NextCursor
	}

	return ToolsListResponse{
		ID:      1,
		JSONRPC: "2.0",
		Result:  ToolsListResultBody{Tools: tools},
	}, nil
}

// BuildToolsListResponseJSON returns pretty-printed tools/list JSON payload.
func BuildToolsListResponseJSON(ctx context.Context, cfg Config) ([]byte, error) {
	resp, err := BuildToolsListResponse(ctx, cfg)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// connectInMemory serves s over an in-memory transport pair and returns the
// connected client session.
func (s *server) connectInMemory(ctx context.Context, clientName string) (*mcpsdk.ClientSession, func(), error) {
	mcpClient := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    clientName,
		Version: version.Current(),
	}, nil)
	mcpSrv := s.mcpServer()

	t1, t2 := mcpsdk.NewInMemoryTransports()
	ss, err := mcpSrv.Connect(ctx, t1, nil)
	if err != nil {
		return nil, nil, err
	}
	cs, err := mcpClient.Connect(ctx, t2, nil)
	if err != nil {
		_ = ss.Close()
		return nil, nil, err
	}
	return cs, func() {
		_ = cs.Close()
		_ = ss.Close()
	}, nil
}
