package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/zscale/api"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/format"
	"pkt.systems/zscale/validate"
)

func (s *server) registerTestCaseTools(srv *mcpsdk.Server, desc func(string) string) {
	addTool(srv, desc, client.OpListTestCases, toolRead, s.handleListTestCasesTool)
	addTool(srv, desc, client.OpGetTestCase, toolRead, s.handleGetTestCaseTool)
	addTool(srv, desc, client.OpCreateTestCase, toolCreate, s.handleCreateTestCaseTool)
	addTool(srv, desc, client.OpUpdateTestCase, toolUpdate, s.handleUpdateTestCaseTool)
	addTool(srv, desc, client.OpListTestCaseVersions, toolRead, s.handleListTestCaseVersionsTool)
	addTool(srv, desc, client.OpGetTestCaseVersion, toolRead, s.handleGetTestCaseVersionTool)
	addTool(srv, desc, client.OpGetTestCaseLinks, toolRead, s.handleGetTestCaseLinksTool)
	addTool(srv, desc, client.OpCreateTestCaseIssueLink, toolCreate, s.handleCreateTestCaseIssueLinkTool)
	addTool(srv, desc, client.OpCreateTestCaseWebLink, toolCreate, s.handleCreateTestCaseWebLinkTool)
	addTool(srv, desc, client.OpListTestSteps, toolRead, s.handleListTestStepsTool)
	addTool(srv, desc, client.OpCreateTestSteps, toolCreate, s.handleCreateTestStepsTool)
	addTool(srv, desc, client.OpGetTestScript, toolRead, s.handleGetTestScriptTool)
	addTool(srv, desc, client.OpCreateTestScript, toolCreate, s.handleCreateTestScriptTool)
}

type listTestCasesToolInput struct {
	ProjectKey string `json:"projectKey,omitempty" jsonschema:"Jira project key such as PROJ; defaults to the configured project"`
	FolderID   *int64 `json:"folderId,omitempty" jsonschema:"Optional folder id filter"`
	StartAt    *int64 `json:"startAt,omitempty" jsonschema:"Zero-based index of the first result (default 0)"`
	MaxResults *int64 `json:"maxResults,omitempty" jsonschema:"Page size between 1 and 1000 (default 50)"`
}

func (s *server) handleListTestCasesTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input listTestCasesToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpListTestCases,
		func() validate.Result[api.ListQuery] {
			return validate.ListTestCases(validate.ListArgs{
				ProjectKey: input.ProjectKey,
				FolderID:   input.FolderID,
				StartAt:    input.StartAt,
				MaxResults: input.MaxResults,
			})
		},
		s.gateway.ListTestCases,
		format.TestCases,
	)
}

type testCaseKeyToolInput struct {
	TestCaseKey string `json:"testCaseKey,omitempty" jsonschema:"Required. Test case key such as PROJ-T123"`
}

func (s *server) handleGetTestCaseTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCaseKeyToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetTestCase,
		func() validate.Result[string] { return validate.Key(validate.KindTestCase, input.TestCaseKey) },
		s.gateway.GetTestCase,
		format.TestCase,
	)
}

type createTestCaseToolInput struct {
	ProjectKey    string         `json:"projectKey,omitempty" jsonschema:"Jira project key; required unless a default project is configured"`
	Name          string         `json:"name,omitempty" jsonschema:"Required. Test case name"`
	Objective     *string        `json:"objective,omitempty" jsonschema:"What the test verifies"`
	Precondition  *string        `json:"precondition,omitempty" jsonschema:"State required before running the test"`
	EstimatedTime *int64         `json:"estimatedTime,omitempty" jsonschema:"Estimated duration in milliseconds (>= 0)"`
	ComponentID   *int64         `json:"componentId,omitempty" jsonschema:"Jira component id"`
	PriorityName  *string        `json:"priorityName,omitempty" jsonschema:"Priority name such as High; the project default when omitted"`
	StatusName    *string        `json:"statusName,omitempty" jsonschema:"Status name such as Draft; the project default when omitted"`
	FolderID      *int64         `json:"folderId,omitempty" jsonschema:"Folder id of a TEST_CASE folder"`
	OwnerID       *string        `json:"ownerId,omitempty" jsonschema:"Atlassian account id of the owner"`
	Labels        []string       `json:"labels,omitempty" jsonschema:"Labels; each must be non-blank"`
	CustomFields  map[string]any `json:"customFields,omitempty" jsonschema:"Custom field values keyed by field name"`
}

func (s *server) handleCreateTestCaseTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input createTestCaseToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestCase,
		func() validate.Result[api.CreateTestCaseInput] {
			return validate.CreateTestCase(validate.CreateTestCaseArgs{
				ProjectKey:    input.ProjectKey,
				Name:          input.Name,
				Objective:     input.Objective,
				Precondition:  input.Precondition,
				EstimatedTime: input.EstimatedTime,
				ComponentID:   input.ComponentID,
				PriorityName:  input.PriorityName,
				StatusName:    input.StatusName,
				FolderID:      input.FolderID,
				OwnerID:       input.OwnerID,
				Labels:        input.Labels,
				CustomFields:  input.CustomFields,
			})
		},
		s.gateway.CreateTestCase,
		format.Created("test case"),
	)
}

type updateTestCaseToolInput struct {
	TestCaseKey   string         `json:"testCaseKey,omitempty" jsonschema:"Required. Test case key such as PROJ-T123"`
	Name          *string        `json:"name,omitempty" jsonschema:"New name"`
	Objective     *string        `json:"objective,omitempty" jsonschema:"New objective"`
	Precondition  *string        `json:"precondition,omitempty" jsonschema:"New precondition"`
	EstimatedTime *int64         `json:"estimatedTime,omitempty" jsonschema:"New estimated duration in milliseconds"`
	ComponentID   *int64         `json:"componentId,omitempty" jsonschema:"New Jira component id"`
	PriorityID    *int64         `json:"priorityId,omitempty" jsonschema:"New priority id"`
	StatusID      *int64         `json:"statusId,omitempty" jsonschema:"New status id"`
	FolderID      *int64         `json:"folderId,omitempty" jsonschema:"New folder id"`
	OwnerID       *string        `json:"ownerId,omitempty" jsonschema:"New owner account id"`
	Labels        []string       `json:"labels,omitempty" jsonschema:"Replacement label list"`
	CustomFields  map[string]any `json:"customFields,omitempty" jsonschema:"Custom field values merged into the existing ones"`
}

func (s *server) handleUpdateTestCaseTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input updateTestCaseToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpUpdateTestCase,
		func() validate.Result[api.TestCaseUpdate] {
			return validate.UpdateTestCase(validate.UpdateTestCaseArgs{
				Key:           input.TestCaseKey,
				Name:          input.Name,
				Objective:     input.Objective,
				Precondition:  input.Precondition,
				EstimatedTime: input.EstimatedTime,
				ComponentID:   input.ComponentID,
				PriorityID:    input.PriorityID,
				StatusID:      input.StatusID,
				FolderID:      input.FolderID,
				OwnerID:       input.OwnerID,
				Labels:        input.Labels,
				CustomFields:  input.CustomFields,
			})
		},
		s.gateway.UpdateTestCase,
		format.TestCase,
	)
}

type testCasePageToolInput struct {
	TestCaseKey string `json:"testCaseKey,omitempty" jsonschema:"Required. Test case key such as PROJ-T123"`
	StartAt     *int64 `json:"startAt,omitempty" jsonschema:"Zero-based index of the first result (default 0)"`
	MaxResults  *int64 `json:"maxResults,omitempty" jsonschema:"Page size between 1 and 1000 (default 50)"`
}

func (s *server) handleListTestCaseVersionsTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCasePageToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpListTestCaseVersions,
		func() validate.Result[api.KeyedPage] {
			return validate.ListTestCaseVersions(validate.KeyedListArgs{
				Key:        input.TestCaseKey,
				StartAt:    input.StartAt,
				MaxResults: input.MaxResults,
			})
		},
		s.gateway.ListTestCaseVersions,
		format.Versions,
	)
}

type testCaseVersionToolInput struct {
	TestCaseKey string `json:"testCaseKey,omitempty" jsonschema:"Required. Test case key such as PROJ-T123"`
	Version     *int64 `json:"version,omitempty" jsonschema:"Required. Version number, 1 or greater"`
}

func (s *server) handleGetTestCaseVersionTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCaseVersionToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetTestCaseVersion,
		func() validate.Result[validate.VersionRequest] {
			return validate.TestCaseVersion(input.TestCaseKey, deref(input.Version))
		},
		s.gateway.GetTestCaseVersion,
		format.TestCase,
	)
}

func (s *server) handleGetTestCaseLinksTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCaseKeyToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetTestCaseLinks,
		func() validate.Result[string] { return validate.Key(validate.KindTestCase, input.TestCaseKey) },
		s.gateway.GetTestCaseLinks,
		format.Links,
	)
}

type testCaseIssueLinkToolInput struct {
	TestCaseKey string `json:"testCaseKey,omitempty" jsonschema:"Required. Test case key such as PROJ-T123"`
	IssueID     any    `json:"issueId,omitempty" jsonschema:"Required. Numeric Jira issue id as a number or a string of digits; not an issue key"`
}

func (s *server) handleCreateTestCaseIssueLinkTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCaseIssueLinkToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestCaseIssueLink,
		func() validate.Result[validate.LinkRequest] {
			return validate.Link(validate.KindTestCase, validate.LinkIssue, validate.LinkArgs{
				Key:     input.TestCaseKey,
				IssueID: input.IssueID,
			})
		},
		s.gateway.CreateLink,
		format.Created("issue link"),
	)
}

type testCaseWebLinkToolInput struct {
	TestCaseKey string  `json:"testCaseKey,omitempty" jsonschema:"Required. Test case key such as PROJ-T123"`
	URL         string  `json:"url,omitempty" jsonschema:"Required. Absolute http or https URL"`
	Description *string `json:"description,omitempty" jsonschema:"Optional link description"`
}

func (s *server) handleCreateTestCaseWebLinkTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCaseWebLinkToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestCaseWebLink,
		func() validate.Result[validate.LinkRequest] {
			return validate.Link(validate.KindTestCase, validate.LinkWeb, validate.LinkArgs{
				Key:         input.TestCaseKey,
				URL:         input.URL,
				Description: input.Description,
			})
		},
		s.gateway.CreateLink,
		format.Created("web link"),
	)
}

func (s *server) handleListTestStepsTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCasePageToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpListTestSteps,
		func() validate.Result[api.KeyedPage] {
			return validate.ListTestSteps(validate.KeyedListArgs{
				Key:        input.TestCaseKey,
				StartAt:    input.StartAt,
				MaxResults: input.MaxResults,
			})
		},
		s.gateway.ListTestSteps,
		format.TestSteps,
	)
}

type inlineStepToolInput struct {
	Description    *string        `json:"description,omitempty" jsonschema:"What the tester does"`
	TestData       *string        `json:"testData,omitempty" jsonschema:"Data used by the step"`
	ExpectedResult *string        `json:"expectedResult,omitempty" jsonschema:"What the tester should observe"`
	CustomFields   map[string]any `json:"customFields,omitempty" jsonschema:"Custom field values of the step"`
}

type stepParameterToolInput struct {
	Name  string `json:"name,omitempty" jsonschema:"Parameter name"`
	Type  string `json:"type,omitempty" jsonschema:"Parameter type: MANUAL_INPUT or DEFAULT_VALUE"`
	Value string `json:"value,omitempty" jsonschema:"Parameter value"`
}

type callStepToolInput struct {
	TestCaseKey string                   `json:"testCaseKey,omitempty" jsonschema:"Key of the called test case"`
	Parameters  []stepParameterToolInput `json:"parameters,omitempty" jsonschema:"Parameters passed to the called test case"`
}

type stepToolInput struct {
	Inline   *inlineStepToolInput `json:"inline,omitempty" jsonschema:"An inline step; set this or testCase"`
	TestCase *callStepToolInput   `json:"testCase,omitempty" jsonschema:"A call to another test case; set this or inline"`
}

type createTestStepsToolInput struct {
	TestCaseKey string          `json:"testCaseKey,omitempty" jsonschema:"Required. Test case key such as PROJ-T123"`
	Mode        string          `json:"mode,omitempty" jsonschema:"APPEND (default) or OVERWRITE"`
	Items       []stepToolInput `json:"items,omitempty" jsonschema:"Required. Between 1 and 100 steps"`
}

func (in createTestStepsToolInput) args() validate.TestStepsArgs {
	a := validate.TestStepsArgs{Key: in.TestCaseKey, Mode: in.Mode}
	if in.Items == nil {
		return a
	}
	a.Items = make([]validate.StepArgs, len(in.Items))
	for i, item := range in.Items {
		if item.Inline != nil {
			a.Items[i].Inline = &validate.InlineStepArgs{
				Description:    item.Inline.Description,
				TestData:       item.Inline.TestData,
				ExpectedResult: item.Inline.ExpectedResult,
				CustomFields:   item.Inline.CustomFields,
			}
		}
		if item.TestCase != nil {
			call := &validate.CallStepArgs{TestCaseKey: item.TestCase.TestCaseKey}
			for _, p := range item.TestCase.Parameters {
				call.Parameters = append(call.Parameters, validate.StepParameterArgs{Name: p.Name, Type: p.Type, Value: p.Value})
			}
			a.Items[i].TestCase = call
		}
	}
	return a
}

func (s *server) handleCreateTestStepsTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input createTestStepsToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestSteps,
		func() validate.Result[validate.StepsRequest] { return validate.TestSteps(input.args()) },
		s.gateway.CreateTestSteps,
		format.Created("test steps"),
	)
}

func (s *server) handleGetTestScriptTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input testCaseKeyToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetTestScript,
		func() validate.Result[string] { return validate.Key(validate.KindTestCase, input.TestCaseKey) },
		s.gateway.GetTestScript,
		format.TestScript,
	)
}

type createTestScriptToolInput struct {
	TestCaseKey string `json:"testCaseKey,omitempty" jsonschema:"Required. Test case key such as PROJ-T123"`
	Type        string `json:"type,omitempty" jsonschema:"Required. plain or bdd"`
	Text        string `json:"text,omitempty" jsonschema:"Required. Script text; Gherkin for bdd"`
}

func (s *server) handleCreateTestScriptTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input createTestScriptToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateTestScript,
		func() validate.Result[validate.ScriptRequest] {
			return validate.TestScript(validate.TestScriptArgs{
				Key:  input.TestCaseKey,
				Type: input.Type,
				Text: input.Text,
			})
		},
		s.gateway.CreateTestScript,
		format.Created("test script"),
	)
}
