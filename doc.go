// Package zscale holds the process-level pieces of the Zephyr Scale gateway:
// the validated configuration snapshot and its hot-swappable Store, and the
// optional OpenTelemetry setup shared by the CLI and the MCP server.
//
// Typical embedding:
//
//	store, err := zscale.NewStore(zscale.Config{
//	    APIToken:          os.Getenv(zscale.EnvAPIToken),
//	    DefaultProjectKey: "PROJ",
//	})
//	if err != nil { log.Fatal(err) }
//	gw, err := client.New(store)
//	if err != nil { log.Fatal(err) }
//	page, err := gw.ListTestCases(ctx, api.ListQuery{Page: api.DefaultPageRequest()})
//
// Store implements client.Source, so a configuration reload applied with
// Store.Swap is seen by the next gateway call without rebuilding the client.
// An invalid reload is rejected and the previous snapshot stays in effect.
//
// The gateway itself lives in package client, entity types in api, input
// checks in validate, result rendering in format, and the MCP tool surface in
// mcp.
package zscale
