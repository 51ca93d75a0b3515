package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	zscalemcp "pkt.systems/zscale/mcp"
)

const (
	mcpTransportKey = "mcp.transport"
	mcpListenKey    = "mcp.listen"
	mcpPathKey      = "mcp.path"
)

func newMCPCommand(a *app) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the Zephyr Scale tools over MCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			configFile, err := a.prepare()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			rt, err := a.openGateway(ctx)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = rt.Close(shutdownCtx)
			}()
			if configFile != "" {
				a.watchConfig(rt.store)
			}
			svc, err := zscalemcp.NewServer(zscalemcp.NewServerRequest{
				Config:         a.mcpConfig(),
				Gateway:        rt.gateway,
				Source:         rt.store,
				Logger:         a.logger,
				TracerProvider: rt.telemetry.TracerProvider(),
				MeterProvider:  rt.telemetry.MeterProvider(),
			})
			if err != nil {
				return err
			}
			return svc.Run(ctx)
		},
	}

	flags := serveCmd.Flags()
	flags.String("transport", zscalemcp.TransportStdio, "MCP transport (stdio|http)")
	flags.StringP("listen", "l", "127.0.0.1:19342", "listen address for the http transport")
	flags.String("mcp-path", "/mcp", "HTTP path of the MCP streamable endpoint")

	mustBindFlag(a.v, mcpTransportKey, "ZSCALE_MCP_TRANSPORT", flags.Lookup("transport"))
	mustBindFlag(a.v, mcpListenKey, "ZSCALE_MCP_LISTEN", flags.Lookup("listen"))
	mustBindFlag(a.v, mcpPathKey, "ZSCALE_MCP_PATH", flags.Lookup("mcp-path"))

	serveCmd.AddCommand(newMCPToolsCommand())
	return serveCmd
}

func (a *app) mcpConfig() zscalemcp.Config {
	return zscalemcp.Config{
		Transport: strings.TrimSpace(a.v.GetString(mcpTransportKey)),
		Listen:    strings.TrimSpace(a.v.GetString(mcpListenKey)),
		MCPPath:   strings.TrimSpace(a.v.GetString(mcpPathKey)),
	}
}

func newMCPToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the MCP tools/list response as JSON (no network access)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out, err := zscalemcp.BuildToolsListResponseJSON(ctx, zscalemcp.Config{})
			if err != nil {
				return fmt.Errorf("build tools list: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
