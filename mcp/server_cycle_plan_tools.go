package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/zscale/api"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/format"
	"pkt.systems/zscale/validate"
)

func (s *server) registerCycleAndPlanTools(srv *mcpsdk.Server, desc func(string) string) {
	addTool(srv, desc, client.OpListTestCycles, toolRead, s.handleListTestCyclesTool)
	addTool(srv, desc, client.OpGetTestCycle, toolRead, s.handleGetTestCycleTool)
	addTool(srv, desc, client.OpCreateTestCycle, toolCreate, s.handleCreateTestCycleTool)
	addTool(srv, desc, client.OpUpdateTestCycle, toolUpdate, s.handleUpdateTestCycleTool)
	addTool(srv, desc, client.OpGetTestCycleLinks, toolRead, s.handleGetTestCycleLinksTool)
	addTool(srv, desc, client.OpCreateTestCycleIssueLink, toolCreate, s.handleCreateTestCycleIssueLinkTool)
	addTool(srv, desc, client.OpCreateTestCycleWebLink, toolCreate, s.handleCreateTestCycleWebLinkTool)

	addTool(srv, desc, client.OpListTestPlans, toolRead, s.handleListTestPlansTool)
	addTool(srv, desc, client.OpGetTestPlan, toolRead, s.handleGetTestPlanTool)
	addTool(srv, desc, client.OpCreateTestPlan, toolCreate, s.handleCreateTestPlanTool)
	addTool(srv, desc, client.OpCreateTestPlanIssueLink, toolCreate, s.handleCreateTestPlanIssueLinkTool)
	addTool(srv, desc, client.OpCreateTestPlanWebLink, toolCreate, s.handleCreateTestPlanWebLinkTool)
	addTool(srv, desc, client.OpCreateTestPlanCycleLink, toolCreate, s.handleCreateTestPlanCycleLinkTool)
}

type listTestCyclesToolInput struct {
	ProjectKey           string `json:"projectKey,omitempty" jsonschema:"Jira project key such as PROJ; defaults to the configured project"`
	FolderID             *int64 `json:"folderId,omitempty" jsonschema:"Optional folder id filter"`
	JiraProjectVersionID *int64 `json:"jiraProjectVersionId,omitempty" jsonschema:"Optional Jira project version id filter"`
	StartAt              *int64 `json:"startAt,omitempty" jsonschema:"Zero-based index of the first result (default 0)"`
	MaxResults           *int64 `json:"maxResults,omitempty" jsonschema:"Page size between 1 and 1000 (default 50)"`
}

func (s *server) handleListTestCyclesTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input listTestCyclesToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpListTestCycles,
		func() validate.Result[api.ListQuery] {
			return validate.ListTestCycles(validate.ListArgs{
				ProjectKey:           input.ProjectKey,
				FolderID:             input.FolderID,
				JiraProjectVersionID: input.JiraProjectVersionID,
				StartAt:              input.StartAt,
				MaxResults:           input.MaxResults,
			})
		},
		s.gateway.ListTestCycles,
		format.TestCycles,
	)
}

type testCycleKeyToolInput struct {
	TestCycleKey string `json:"testCycleKey,omitempty" jsonschema:"Required. Test cycle key such as PROJ-R12"`
}

func (s *server) handleGetTestCycleTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCycleKeyToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetTestCycle,
		func() validate.Result[string] { return validate.Key(validate.KindTestCycle, input.TestCycleKey) },
		s.gateway.GetTestCycle,
		format.TestCycle,
	)
}

type createTestCycleToolInput struct {
	ProjectKey         string         `json:"projectKey,omitempty" jsonschema:"Jira project key; required unless a default project is configured"`
	Name               string         `json:"name,omitempty" jsonschema:"Required. Test cycle name"`
	Description        *string        `json:"description,omitempty" jsonschema:"Cycle description"`
	PlannedStartDate   *string        `json:"plannedStartDate,omitempty" jsonschema:"Planned start as ISO-8601, for example 2024-05-01T09:00:00Z"`
	PlannedEndDate     *string        `json:"plannedEndDate,omitempty" jsonschema:"Planned end as ISO-8601; not before the start"`
	JiraProjectVersion *int64         `json:"jiraProjectVersion,omitempty" jsonschema:"Jira project version id"`
	StatusName         *string        `json:"statusName,omitempty" jsonschema:"Status name; the project default when omitted"`
	FolderID           *int64         `json:"folderId,omitempty" jsonschema:"Folder id of a TEST_CYCLE folder"`
	OwnerID            *string        `json:"ownerId,omitempty" jsonschema:"Atlassian account id of the owner"`
	CustomFields       map[string]any `json:"customFields,omitempty" jsonschema:"Custom field values keyed by field name"`
}

func (s *server) handleCreateTestCycleTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input createTestCycleToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestCycle,
		func() validate.Result[api.CreateTestCycleInput] {
			return validate.CreateTestCycle(validate.CreateTestCycleArgs{
				ProjectKey:         input.ProjectKey,
				Name:               input.Name,
				Description:        input.Description,
				PlannedStartDate:   input.PlannedStartDate,
				PlannedEndDate:     input.PlannedEndDate,
				JiraProjectVersion: input.JiraProjectVersion,
				StatusName:         input.StatusName,
				FolderID:           input.FolderID,
				OwnerID:            input.OwnerID,
				CustomFields:       input.CustomFields,
			})
		},
		s.gateway.CreateTestCycle,
		format.Created("test cycle"),
	)
}

type updateTestCycleToolInput struct {
	TestCycleKey       string         `json:"testCycleKey,omitempty" jsonschema:"Required. Test cycle key such as PROJ-R12"`
	Name               *string        `json:"name,omitempty" jsonschema:"New name"`
	Description        *string        `json:"description,omitempty" jsonschema:"New description"`
	PlannedStartDate   *string        `json:"plannedStartDate,omitempty" jsonschema:"New planned start as ISO-8601"`
	PlannedEndDate     *string        `json:"plannedEndDate,omitempty" jsonschema:"New planned end as ISO-8601"`
	JiraProjectVersion *int64         `json:"jiraProjectVersion,omitempty" jsonschema:"New Jira project version id"`
	StatusID           *int64         `json:"statusId,omitempty" jsonschema:"New status id"`
	FolderID           *int64         `json:"folderId,omitempty" jsonschema:"New folder id"`
	OwnerID            *string        `json:"ownerId,omitempty" jsonschema:"New owner account id"`
	CustomFields       map[string]any `json:"customFields,omitempty" jsonschema:"Custom field values merged into the existing ones"`
}

func (s *server) handleUpdateTestCycleTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input updateTestCycleToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpUpdateTestCycle,
		func() validate.Result[api.TestCycleUpdate] {
			return validate.UpdateTestCycle(validate.UpdateTestCycleArgs{
				Key:                input.TestCycleKey,
				Name:               input.Name,
				Description:        input.Description,
				PlannedStartDate:   input.PlannedStartDate,
				PlannedEndDate:     input.PlannedEndDate,
				JiraProjectVersion: input.JiraProjectVersion,
				StatusID:           input.StatusID,
				FolderID:           input.FolderID,
				OwnerID:            input.OwnerID,
				CustomFields:       input.CustomFields,
			})
		},
		s.gateway.UpdateTestCycle,
		format.TestCycle,
	)
}

func (s *server) handleGetTestCycleLinksTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCycleKeyToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetTestCycleLinks,
		func() validate.Result[string] { return validate.Key(validate.KindTestCycle, input.TestCycleKey) },
		s.gateway.GetTestCycleLinks,
		format.Links,
	)
}

type testCycleIssueLinkToolInput struct {
	TestCycleKey string `json:"testCycleKey,omitempty" jsonschema:"Required. Test cycle key such as PROJ-R12"`
	IssueID      any    `json:"issueId,omitempty" jsonschema:"Required. Numeric Jira issue id as a number or a string of digits; not an issue key"`
}

func (s *server) handleCreateTestCycleIssueLinkTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCycleIssueLinkToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestCycleIssueLink,
		func() validate.Result[validate.LinkRequest] {
			return validate.Link(validate.KindTestCycle, validate.LinkIssue, validate.LinkArgs{
				Key:     input.TestCycleKey,
				IssueID: input.IssueID,
			})
		},
		s.gateway.CreateLink,
		format.Created("issue link"),
	)
}

type testCycleWebLinkToolInput struct {
	TestCycleKey string  `json:"testCycleKey,omitempty" jsonschema:"Required. Test cycle key such as PROJ-R12"`
	URL          string  `json:"url,omitempty" jsonschema:"Required. Absolute http or https URL"`
	Description  *string `json:"description,omitempty" jsonschema:"Optional link description"`
}

func (s *server) handleCreateTestCycleWebLinkTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCycleWebLinkToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestCycleWebLink,
		func() validate.Result[validate.LinkRequest] {
			return validate.Link(validate.KindTestCycle, validate.LinkWeb, validate.LinkArgs{
				Key:         input.TestCycleKey,
				URL:         input.URL,
				Description: input.Description,
			})
		},
		s.gateway.CreateLink,
		format.Created("web link"),
	)
}

func (s *server) handleListTestPlansTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input projectPageToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpListTestPlans,
		func() validate.Result[api.ListQuery] {
			return validate.ListTestPlans(validate.ListArgs{
				ProjectKey: input.ProjectKey,
				StartAt:    input.StartAt,
				MaxResults: input.MaxResults,
			})
		},
		s.gateway.ListTestPlans,
		format.TestPlans,
	)
}

type testPlanKeyToolInput struct {
	TestPlanKey string `json:"testPlanKey,omitempty" jsonschema:"Required. Test plan key such as PROJ-P3"`
}

func (s *server) handleGetTestPlanTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testPlanKeyToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetTestPlan,
		func() validate.Result[string] { return validate.Key(validate.KindTestPlan, input.TestPlanKey) },
		s.gateway.GetTestPlan,
		format.TestPlan,
	)
}

type createTestPlanToolInput struct {
	ProjectKey   string         `json:"projectKey,omitempty" jsonschema:"Jira project key; required unless a default project is configured"`
	Name         string         `json:"name,omitempty" jsonschema:"Required. Test plan name"`
	Objective    *string        `json:"objective,omitempty" jsonschema:"What the plan covers"`
	FolderID     *int64         `json:"folderId,omitempty" jsonschema:"Folder id of a TEST_PLAN folder"`
	StatusName   *string        `json:"statusName,omitempty" jsonschema:"Status name; the project default when omitted"`
	OwnerID      *string        `json:"ownerId,omitempty" jsonschema:"Atlassian account id of the owner"`
	Labels       []string       `json:"labels,omitempty" jsonschema:"Labels; each must be non-blank"`
	CustomFields map[string]any `json:"customFields,omitempty" jsonschema:"Custom field values keyed by field name"`
}

func (s *server) handleCreateTestPlanTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input createTestPlanToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestPlan,
		func() validate.Result[api.CreateTestPlanInput] {
			return validate.CreateTestPlan(validate.CreateTestPlanArgs{
				ProjectKey:   input.ProjectKey,
				Name:         input.Name,
				Objective:    input.Objective,
				FolderID:     input.FolderID,
				StatusName:   input.StatusName,
				OwnerID:      input.OwnerID,
				Labels:       input.Labels,
				CustomFields: input.CustomFields,
			})
		},
		s.gateway.CreateTestPlan,
		format.Created("test plan"),
	)
}

type testPlanIssueLinkToolInput struct {
	TestPlanKey string `json:"testPlanKey,omitempty" jsonschema:"Required. Test plan key such as PROJ-P3"`
	IssueID     any    `json:"issueId,omitempty" jsonschema:"Required. Numeric Jira issue id as a number or a string of digits; not an issue key"`
}

func (s *server) handleCreateTestPlanIssueLinkTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testPlanIssueLinkToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestPlanIssueLink,
		func() validate.Result[validate.LinkRequest] {
			return validate.Link(validate.KindTestPlan, validate.LinkIssue, validate.LinkArgs{
				Key:     input.TestPlanKey,
				IssueID: input.IssueID,
			})
		},
		s.gateway.CreateLink,
		format.Created("issue link"),
	)
}

type testPlanWebLinkToolInput struct {
	TestPlanKey string  `json:"testPlanKey,omitempty" jsonschema:"Required. Test plan key such as PROJ-P3"`
	URL         string  `json:"url,omitempty" jsonschema:"Required. Absolute http or https URL"`
	Description *string `json:"description,omitempty" jsonschema:"Required for test plan web links"`
}

func (s *server) handleCreateTestPlanWebLinkTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testPlanWebLinkToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestPlanWebLink,
		func() validate.Result[validate.LinkRequest] {
			return validate.Link(validate.KindTestPlan, validate.LinkWeb, validate.LinkArgs{
				Key:         input.TestPlanKey,
				URL:         input.URL,
				Description: input.Description,
			})
		},
		s.gateway.CreateLink,
		format.Created("web link"),
	)
}

type testPlanCycleLinkToolInput struct {
	TestPlanKey      string `json:"testPlanKey,omitempty" jsonschema:"Required. Test plan key such as PROJ-P3"`
	TestCycleIDOrKey string `json:"testCycleIdOrKey,omitempty" jsonschema:"Required. Numeric test cycle id or a key such as PROJ-R12"`
}

func (s *server) handleCreateTestPlanCycleLinkTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testPlanCycleLinkToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestPlanCycleLink,
		func() validate.Result[validate.LinkRequest] {
			return validate.Link(validate.KindTestPlan, validate.LinkTestCycle, validate.LinkArgs{
				Key:              input.TestPlanKey,
				TestCycleIDOrKey: input.TestCycleIDOrKey,
			})
		},
		s.gateway.CreateLink,
		format.Created("test cycle link"),
	)
}
