package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"pkt.systems/zscale/api"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/format"
	"pkt.systems/zscale/validate"
)

func (s *server) registerReferenceTools(srv *mcpsdk.Server, desc func(string) string) {
	addTool(srv, desc, client.OpListPriorities, toolRead, s.handleListPrioritiesTool)
	addTool(srv, desc, client.OpGetPriority, toolRead, s.handleGetPriorityTool)
	addTool(srv, desc, client.OpCreatePriority, toolCreate, s.handleCreatePriorityTool)
	addTool(srv, desc, client.OpUpdatePriority, toolUpdate, s.handleUpdatePriorityTool)

	addTool(srv, desc, client.OpListStatuses, toolRead, s.handleListStatusesTool)
	addTool(srv, desc, client.OpGetStatus, toolRead, s.handleGetStatusTool)
	addTool(srv, desc, client.OpCreateStatus, toolCreate, s.handleCreateStatusTool)
	addTool(srv, desc, client.OpUpdateStatus, toolUpdate, s.handleUpdateStatusTool)

	addTool(srv, desc, client.OpListFolders, toolRead, s.handleListFoldersTool)
	addTool(srv, desc, client.OpGetFolder, toolRead, s.handleGetFolderTool)
	addTool(srv, desc, client.OpCreateFolder, toolCreate, s.handleCreateFolderTool)
}

type projectPageToolInput struct {
	ProjectKey string `json:"projectKey,omitempty" jsonschema:"Jira project key such as PROJ; defaults to the configured project"`
	StartAt    *int64 `json:"startAt,omitempty" jsonschema:"Zero-based index of the first result (default 0)"`
	MaxResults *int64 `json:"maxResults,omitempty" jsonschema:"Page size between 1 and 1000 (default 50)"`
}

func (s *server) handleListPrioritiesTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input projectPageToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpListPriorities,
		func() validate.Result[api.ListQuery] {
			return validate.ListPriorities(validate.ListArgs{
				ProjectKey: input.ProjectKey,
				StartAt:    input.StartAt,
				MaxResults: input.MaxResults,
			})
		},
		s.gateway.ListPriorities,
		format.Priorities,
	)
}

type priorityIDToolInput struct {
	PriorityID *int64 `json:"priorityId,omitempty" jsonschema:"Required. Numeric priority id"`
}

func (s *server) handleGetPriorityTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input priorityIDToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetPriority,
		func() validate.Result[int64] { return validate.ID(validate.KindPriority, deref(input.PriorityID)) },
		s.gateway.GetPriority,
		format.Priority,
	)
}

type createPriorityToolInput struct {
	ProjectKey  string  `json:"projectKey,omitempty" jsonschema:"Jira project key; required unless a default project is configured"`
	Name        string  `json:"name,omitempty" jsonschema:"Required. Priority name, 1 to 255 characters"`
	Description *string `json:"description,omitempty" jsonschema:"Optional description, up to 255 characters"`
	Color       *string `json:"color,omitempty" jsonschema:"Optional color as #RGB or #RRGGBB"`
}

func (s *server) handleCreatePriorityTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input createPriorityToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreatePriority,
		func() validate.Result[api.CreatePriorityInput] {
			return validate.CreatePriority(validate.CreatePriorityArgs{
				ProjectKey:  input.ProjectKey,
				Name:        input.Name,
				Description: input.Description,
				Color:       input.Color,
			})
		},
		s.gateway.CreatePriority,
		format.Created("priority"),
	)
}

type updatePriorityToolInput struct {
	PriorityID  *int64  `json:"priorityId,omitempty" jsonschema:"Required. Numeric priority id"`
	Name        *string `json:"name,omitempty" jsonschema:"New name"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	Index       *int64  `json:"index,omitempty" jsonschema:"New zero-based position"`
	Color       *string `json:"color,omitempty" jsonschema:"New color as #RGB or #RRGGBB"`
	Default     *bool   `json:"default,omitempty" jsonschema:"Make this the default priority"`
}

func (s *server) handleUpdatePriorityTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input updatePriorityToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpUpdatePriority,
		func() validate.Result[api.PriorityUpdate] {
			return validate.UpdatePriority(validate.UpdatePriorityArgs{
				ID:          deref(input.PriorityID),
				Name:        input.Name,
				Description: input.Description,
				Index:       input.Index,
				Color:       input.Color,
				Default:     input.Default,
			})
		},
		s.gateway.UpdatePriority,
		format.Priority,
	)
}

type listStatusesToolInput struct {
	ProjectKey string `json:"projectKey,omitempty" jsonschema:"Jira project key such as PROJ; defaults to the configured project"`
	StatusType string `json:"statusType,omitempty" jsonschema:"Optional filter: TEST_CASE, TEST_PLAN, TEST_CYCLE or TEST_EXECUTION"`
	StartAt    *int64 `json:"startAt,omitempty" jsonschema:"Zero-based index of the first result (default 0)"`
	MaxResults *int64 `json:"maxResults,omitempty" jsonschema:"Page size between 1 and 1000 (default 50)"`
}

func (s *server) handleListStatusesTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input listStatusesToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpListStatuses,
		func() validate.Result[api.ListQuery] {
			return validate.ListStatuses(validate.ListArgs{
				ProjectKey: input.ProjectKey,
				StatusType: input.StatusType,
				StartAt:    input.StartAt,
				MaxResults: input.MaxResults,
			})
		},
		s.gateway.ListStatuses,
		format.Statuses,
	)
}

type statusIDToolInput struct {
	StatusID *int64 `json:"statusId,omitempty" jsonschema:"Required. Numeric status id"`
}

func (s *server) handleGetStatusTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input statusIDToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetStatus,
		func() validate.Result[int64] { return validate.ID(validate.KindStatus, deref(input.StatusID)) },
		s.gateway.GetStatus,
		format.Status,
	)
}

type createStatusToolInput struct {
	ProjectKey  string  `json:"projectKey,omitempty" jsonschema:"Jira project key; required unless a default project is configured"`
	Name        string  `json:"name,omitempty" jsonschema:"Required. Status name, 1 to 255 characters"`
	Type        string  `json:"type,omitempty" jsonschema:"Required. TEST_CASE, TEST_PLAN, TEST_CYCLE or TEST_EXECUTION"`
	Description *string `json:"description,omitempty" jsonschema:"Optional description, up to 255 characters"`
	Color       *string `json:"color,omitempty" jsonschema:"Optional color as #RGB or #RRGGBB"`
}

func (s *server) handleCreateStatusTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input createStatusToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateStatus,
		func() validate.Result[api.CreateStatusInput] {
			return validate.CreateStatus(validate.CreateStatusArgs{
				ProjectKey:  input.ProjectKey,
				Name:        input.Name,
				Type:        input.Type,
				Description: input.Description,
				Color:       input.Color,
			})
		},
		s.gateway.CreateStatus,
		format.Created("status"),
	)
}

type updateStatusToolInput struct {
	StatusID    *int64  `json:"statusId,omitempty" jsonschema:"Required. Numeric status id"`
	Name        *string `json:"name,omitempty" jsonschema:"New name"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	Index       *int64  `json:"index,omitempty" jsonschema:"New zero-based position"`
	Color       *string `json:"color,omitempty" jsonschema:"New color as #RGB or #RRGGBB"`
	Archived    *bool   `json:"archived,omitempty" jsonschema:"Archive or restore the status"`
	Default     *bool   `json:"default,omitempty" jsonschema:"Make this the default status"`
}

func (s *server) handleUpdateStatusTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input updateStatusToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpUpdateStatus,
		func() validate.Result[api.StatusUpdate] {
			return validate.UpdateStatus(validate.UpdateStatusArgs{
				ID:          deref(input.StatusID),
				Name:        input.Name,
				Description: input.Description,
				Index:       input.Index,
				Color:       input.Color,
				Archived:    input.Archived,
				Default:     input.Default,
			})
		},
		s.gateway.UpdateStatus,
		format.Status,
	)
}

type listFoldersToolInput struct {
	ProjectKey string `json:"projectKey,omitempty" jsonschema:"Jira project key such as PROJ; defaults to the configured project"`
	FolderType string `json:"folderType,omitempty" jsonschema:"Optional filter: TEST_CASE, TEST_PLAN or TEST_CYCLE"`
	StartAt    *int64 `json:"startAt,omitempty" jsonschema:"Zero-based index of the first result (default 0)"`
	MaxResults *int64 `json:"maxResults,omitempty" jsonschema:"Page size between 1 and 1000 (default 50)"`
}

func (s *server) handleListFoldersTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input listFoldersToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpListFolders,
		func() validate.Result[api.ListQuery] {
			return validate.ListFolders(validate.ListArgs{
				ProjectKey: input.ProjectKey,
				FolderType: input.FolderType,
				StartAt:    input.StartAt,
				MaxResults: input.MaxResults,
			})
		},
		s.gateway.ListFolders,
		format.Folders,
	)
}

type folderIDToolInput struct {
	FolderID *int64 `json:"folderId,omitempty" jsonschema:"Required. Numeric folder id"`
}

func (s *server) handleGetFolderTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input folderIDToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpGetFolder,
		func() validate.Result[int64] { return validate.ID(validate.KindFolder, deref(input.FolderID)) },
		s.gateway.GetFolder,
		format.Folder,
	)
}

type createFolderToolInput struct {
	ProjectKey string `json:"projectKey,omitempty" jsonschema:"Jira project key; required unless a default project is configured"`
	Name       string `json:"name,omitempty" jsonschema:"Required. Folder name"`
	FolderType string `json:"folderType,omitempty" jsonschema:"Required. TEST_CASE, TEST_PLAN or TEST_CYCLE"`
	ParentID   *int64 `json:"parentId,omitempty" jsonschema:"Optional parent folder id; omit for a root folder"`
}

func (s *server) handleCreateFolderTool(ctx context.Context, _ *mcpsdk.CallToolRequest, input createFolderToolInput) (*mcpsdk.CallToolResult, toolOutput, error) {
	return runTool(ctx, s, client.OpCreateFolder,
		func() validate.Result[api.CreateFolderInput] {
			return validate.CreateFolder(validate.CreateFolderArgs{
				ProjectKey: input.ProjectKey,
				Name:       input.Name,
				FolderType: input.FolderType,
				ParentID:   input.ParentID,
			})
		},
		s.gateway.CreateFolder,
		format.Created("folder"),
	)
}
