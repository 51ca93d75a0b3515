package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/format"
	"pkt.systems/zscale/validate"
)

const (
	docOverviewURI = "resource://docs/overview.md"
	docKeysURI     = "resource://docs/keys.md"
	docErrorsURI   = "resource://docs/errors.md"
)

func projectDefaultLine(settings client.Settings) string {
	if key := strings.TrimSpace(settings.DefaultProjectKey); key != "" {
		return fmt.Sprintf("Default project: %s (used when `projectKey` is omitted)", key)
	}
	return "Default project: none configured; pass `projectKey` on create tools"
}

func defaultServerInstructions(settings client.Settings) string {
	return strings.TrimSpace(fmt.Sprintf(`
Zephyr Scale MCP gateway operating manual:
- %s
- Discovery workflow: call healthcheck first, then get_priorities, get_statuses and get_folders to learn the ids and names the project uses.
- Keys: test cases are PROJ-T<n>, test cycles PROJ-R<n>, test plans PROJ-P<n>. Folders, statuses and priorities use numeric ids.
- Jira links: `+"`issueId`"+` is the numeric Jira issue id, never the issue key. Resolve keys with a Jira tool first.
- Validation happens before any request. An `+"`invalid_argument`"+` error lists every offending field and nothing was sent.
- Pagination: list tools return `+"`page.hasMore`"+`; continue with `+"`startAt`"+` = previous startAt + returned.
- Updates read the current entity, merge the fields you pass and write it back; omitted fields keep their value.
- Creates are not idempotent. After a connectivity failure, list or get before retrying.
- Documentation resources: %s, %s, %s
`, projectDefaultLine(settings), docOverviewURI, docKeysURI, docErrorsURI))
}

func (s *server) registerResources(srv *mcpsdk.Server) {
	for _, uri := range s.resourceURIs() {
		srv.AddResource(&mcpsdk.Resource{
			URI:         uri,
			Name:        uri,
			Title:       uri,
			Description: "Zephyr Scale gateway documentation",
			MIMEType:    "text/markdown",
		}, s.handleDocResource)
	}
}

func (s *server) resourceURIs() []string {
	docs := s.resourceDocs()
	uris := make([]string, 0, len(docs))
	for uri := range docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

func keyTable() string {
	var b strings.Builder
	b.WriteString("| Entity | Argument | Format |\n|---|---|---|\n")
	for _, kind := range validate.Kinds() {
		fmt.Fprintf(&b, "| %s | `%s` | %s |\n", kind.Noun(), kind.Field(), kind.Example())
	}
	return strings.TrimRight(b.String(), "\n")
}

func errorTable() string {
	rows := [][2]string{
		{format.CodeInvalidArgument, "Arguments failed validation; `fields` names every offender. Nothing was sent."},
		{format.CodeUnauthorized, "HTTP 401 or 403. The API token is missing, expired or lacks project access."},
		{format.CodeNotFound, "HTTP 404. The key or id does not exist in the project."},
		{format.CodeBadRequest, "HTTP 400 or 422. The service rejected the values, for example an unknown status name."},
		{format.CodeClientError, "Any other 4xx. 429 is retryable."},
		{format.CodeRemoteFailure, "HTTP 5xx. Retryable."},
		{format.CodeSchemaMismatch, "The reply did not match the expected shape; the API contract may have changed."},
		{format.CodeTransportFailure, "The API could not be reached. No HTTP status. Retryable."},
		{format.CodeTimeout, "The API did not answer in time. Retryable."},
		{format.CodeToolError, "Unexpected gateway failure."},
	}
	var b strings.Builder
	b.WriteString("| error_code | Meaning |\n|---|---|\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "| `%s` | %s |\n", row[0], row[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *server) resourceDocs() map[string]string {
	settings := s.source.Current()
	return map[string]string{
		docOverviewURI: strings.TrimSpace(fmt.Sprintf(`
# Zephyr Scale Gateway Overview

%s.
Base URL: %s

Recommended sequence:
1. healthcheck to confirm connectivity and credentials.
2. get_priorities, get_statuses and get_folders to learn the project's reference data.
3. create_test_case, then create_test_steps or create_test_script for its content.
4. create_test_cycle for a run and create_test_plan_test_cycle_link to attach it to a plan.
5. Link requirements with the create_*_issue_link tools using numeric Jira issue ids.

Every tool returns readable text plus structured content `+"`{data, page}`"+`.
Read %s for key formats and %s for error handling.
`, projectDefaultLine(settings), settings.BaseURL, docKeysURI, docErrorsURI)),
		docKeysURI: "# Keys and Ids\n\n" + keyTable() + "\n\n" + strings.TrimSpace(`
Keys are case sensitive: the project part is upper case, followed by the kind letter and a number.
Jira issue links need the numeric issue id (for example 10100). Passing an issue key such as PROJ-123
is rejected before any request.
Test plan web links require a description; test case and test cycle web links do not.
`),
		docErrorsURI: "# Errors\n\n" + strings.TrimSpace(`
Failed calls return `+"`isError: true`"+` with a JSON body `+"`{\"error\": {...}}`"+` carrying
error_code, category, message, detail, hint, retryable, http_status (remote failures only),
fields (validation failures) and correlation_id.
`) + "\n\n" + errorTable(),
	}
}

func (s *server) handleDocResource(_ context.Context, req *mcpsdk.ReadResourceRequest) (*mcpsdk.ReadResourceResult, error) {
	uri := ""
	if req != nil && req.Params != nil {
		uri = strings.TrimSpace(req.Params.URI)
	}
	docs := s.resourceDocs()
	content, ok := docs[uri]
	if !ok {
		return nil, mcpsdk.ResourceNotFoundError(uri)
	}
	return &mcpsdk.ReadResourceResult{
		Contents: []*mcpsdk.ResourceContents{{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     content,
		}},
	}, nil
}
