package mcp

import (
	"strings"

	"pkt.systems/zscale/client"
)

var mcpToolNames = toolNames()

func toolNames() []string {
	ops := client.Ops()
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op))
	}
	return names
}

type toolContract struct {
	Top      []string
	Purpose  string
	UseWhen  string
	Requires string
	Effects  string
	Retry    string
	Next     string
}

func formatToolDescription(spec toolContract) string {
	lines := make([]string, 0, len(spec.Top)+6)
	for _, line := range spec.Top {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	lines = append(lines, []string{
		"Purpose: " + spec.Purpose,
		"Use when: " + spec.UseWhen,
		"Requires: " + spec.Requires,
		"Effects: " + spec.Effects,
		"Retry: " + spec.Retry,
	}...)
	if strings.Contains(spec.Next, "\n") {
		lines = append(lines, "Next:\n"+spec.Next)
	} else {
		lines = append(lines, "Next: "+spec.Next)
	}
	return strings.Join(lines, "\n")
}

const (
	keysLine       = "KEYS: test cases are PROJ-T<n>, test cycles PROJ-R<n>, test plans PROJ-P<n>; folders, statuses and priorities use numeric ids."
	projectLine    = "PROJECT: `projectKey` is required unless ZEPHYR_SCALE_DEFAULT_PROJECT_KEY is configured."
	issueIDLine    = "ISSUE IDS: `issueId` is the numeric Jira issue id (for example 10100), not an issue key such as PROJ-123."
	partialLine    = "PARTIAL: omitted fields keep their current value; at least one field must change."
	readRetry      = "Safe to retry; this is a read operation."
	createRetry    = "Not idempotent. A retry after a connectivity failure may create a duplicate; list or get first to check whether the earlier attempt succeeded."
	updateRetry    = "Safe to retry with the same arguments; the tool reads the current entity, merges the change and writes the full entity back."
	pagingRequires = "`startAt` (default 0) and `maxResults` (default 50, between 1 and 1000) select the page."
	listProject    = "`projectKey` is optional and falls back to the configured default project."
	listEffects    = "Returns one page of entities plus a pagination summary (`returned`, `total`, `startAt`, `maxResults`, `hasMore`)."
	pageNext       = "If `hasMore` is true, call again with `startAt` set to the previous `startAt` plus `returned`."
)

func nextSteps(steps ...string) string {
	lines := make([]string, 0, len(steps))
	for _, step := range steps {
		lines = append(lines, "- "+strings.TrimSpace(step))
	}
	return strings.Join(lines, "\n")
}

func buildToolDescriptions() map[string]string {
	return map[string]string{
		string(client.OpHealthcheck): formatToolDescription(toolContract{
			Purpose:  "Check that the Zephyr Scale API is reachable with the configured token.",
			UseWhen:  "Before a workflow, or to tell a connectivity problem apart from a bad request.",
			Requires: "No arguments.",
			Effects:  "Returns status UP, the HTTP status and the probed base URL.",
			Retry:    readRetry,
			Next:     "On success, continue with the list tools; on failure, check the base URL and token.",
		}),

		string(client.OpListPriorities): formatToolDescription(toolContract{
			Purpose:  "List test case priorities of a project.",
			UseWhen:  "You need a priority name or id for creating or updating test cases.",
			Requires: listProject + " " + pagingRequires,
			Effects:  listEffects,
			Retry:    readRetry,
			Next:     pageNext,
		}),
		string(client.OpGetPriority): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read one priority.",
			UseWhen:  "You know the numeric priority id.",
			Requires: "`priorityId` is required and must be a positive integer.",
			Effects:  "Returns the priority with name, index, color and default flag.",
			Retry:    readRetry,
			Next:     "Use `update_priority` to change it.",
		}),
		string(client.OpCreatePriority): formatToolDescription(toolContract{
			Top:      []string{projectLine},
			Purpose:  "Create a test case priority.",
			UseWhen:  "The project lacks a priority you need.",
			Requires: "`name` is required (1-255 characters). Optional `description` (up to 255 characters) and `color` (#RGB or #RRGGBB).",
			Effects:  "Creates the priority and returns its id.",
			Retry:    createRetry,
			Next:     "Call `get_priority` with the returned id to read it back.",
		}),
		string(client.OpUpdatePriority): formatToolDescription(toolContract{
			Top:      []string{partialLine},
			Purpose:  "Change a priority.",
			UseWhen:  "A priority's name, description, index, color or default flag must change.",
			Requires: "`priorityId` is required. Optional `name`, `description`, `index` (>= 0), `color`, `default`.",
			Effects:  "Writes the merged priority and returns it.",
			Retry:    updateRetry,
			Next:     "Verify with `get_priority`.",
		}),

		string(client.OpListStatuses): formatToolDescription(toolContract{
			Purpose:  "List workflow statuses of a project.",
			UseWhen:  "You need a status name or id for test cases, cycles, plans or executions.",
			Requires: listProject + " Optional `statusType` is one of TEST_CASE, TEST_PLAN, TEST_CYCLE, TEST_EXECUTION. " + pagingRequires,
			Effects:  listEffects,
			Retry:    readRetry,
			Next:     pageNext,
		}),
		string(client.OpGetStatus): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read one status.",
			UseWhen:  "You know the numeric status id.",
			Requires: "`statusId` is required and must be a positive integer.",
			Effects:  "Returns the status with name, index, color, archived and default flags.",
			Retry:    readRetry,
			Next:     "Use `update_status` to change it.",
		}),
		string(client.OpCreateStatus): formatToolDescription(toolContract{
			Top:      []string{projectLine},
			Purpose:  "Create a workflow status.",
			UseWhen:  "The project lacks a status you need.",
			Requires: "`name` and `type` (TEST_CASE, TEST_PLAN, TEST_CYCLE or TEST_EXECUTION) are required. Optional `description` and `color`.",
			Effects:  "Creates the status and returns its id.",
			Retry:    createRetry,
			Next:     "Call `get_status` with the returned id to read it back.",
		}),
		string(client.OpUpdateStatus): formatToolDescription(toolContract{
			Top:      []string{partialLine},
			Purpose:  "Change a status.",
			UseWhen:  "A status must be renamed, reordered, recolored, archived or made default.",
			Requires: "`statusId` is required. Optional `name`, `description`, `index`, `color`, `archived`, `default`.",
			Effects:  "Writes the merged status and returns it.",
			Retry:    updateRetry,
			Next:     "Verify with `get_status`.",
		}),

		string(client.OpListFolders): formatToolDescription(toolContract{
			Purpose:  "List folders of a project.",
			UseWhen:  "You need a folder id to file test cases, cycles or plans.",
			Requires: listProject + " Optional `folderType` is one of TEST_CASE, TEST_PLAN, TEST_CYCLE. " + pagingRequires,
			Effects:  listEffects,
			Retry:    readRetry,
			Next:     pageNext,
		}),
		string(client.OpGetFolder): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read one folder.",
			UseWhen:  "You know the numeric folder id.",
			Requires: "`folderId` is required and must be a positive integer.",
			Effects:  "Returns the folder with its type, parent and index.",
			Retry:    readRetry,
			Next:     "Use the id as `folderId` when creating entities.",
		}),
		string(client.OpCreateFolder): formatToolDescription(toolContract{
			Top:      []string{projectLine},
			Purpose:  "Create a folder.",
			UseWhen:  "Test cases, cycles or plans need a new folder.",
			Requires: "`name` and `folderType` (TEST_CASE, TEST_PLAN or TEST_CYCLE) are required. Optional `parentId` nests the folder.",
			Effects:  "Creates the folder and returns its id.",
			Retry:    createRetry,
			Next:     "Use the returned id as `folderId`.",
		}),

		string(client.OpListTestCases): formatToolDescription(toolContract{
			Purpose:  "List test cases of a project.",
			UseWhen:  "You need to find test cases, optionally within one folder.",
			Requires: listProject + " Optional `folderId`. " + pagingRequires,
			Effects:  listEffects,
			Retry:    readRetry,
			Next:     pageNext,
		}),
		string(client.OpGetTestCase): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read one test case.",
			UseWhen:  "You know the test case key.",
			Requires: "`testCaseKey` is required, for example PROJ-T123.",
			Effects:  "Returns the test case with priority, status, folder, owner, labels, custom fields and links.",
			Retry:    readRetry,
			Next:     nextSteps("Use `get_test_steps` or `get_test_script` for its content.", "Use `update_test_case` to change it."),
		}),
		string(client.OpCreateTestCase): formatToolDescription(toolContract{
			Top:      []string{projectLine},
			Purpose:  "Create a test case.",
			UseWhen:  "A new test case must be recorded.",
			Requires: "`name` is required. Optional `objective`, `precondition`, `estimatedTime` (ms, >= 0), `componentId`, `priorityName`, `statusName`, `folderId`, `ownerId`, `labels`, `customFields`.",
			Effects:  "Creates the test case and returns its id and key.",
			Retry:    createRetry,
			Next:     nextSteps("Add steps with `create_test_steps` or a script with `create_test_script`.", "Link requirements with `create_test_case_issue_link`."),
		}),
		string(client.OpUpdateTestCase): formatToolDescription(toolContract{
			Top:      []string{keysLine, partialLine},
			Purpose:  "Change a test case.",
			UseWhen:  "Fields of an existing test case must change.",
			Requires: "`testCaseKey` is required. Optional `name`, `objective`, `precondition`, `estimatedTime`, `componentId`, `priorityId`, `statusId`, `folderId`, `ownerId`, `labels`, `customFields` (merged into the existing custom fields).",
			Effects:  "Writes the merged test case and returns it.",
			Retry:    updateRetry,
			Next:     "Verify with `get_test_case`.",
		}),
		string(client.OpListTestCaseVersions): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "List the historical versions of a test case.",
			UseWhen:  "You need to inspect how a test case changed.",
			Requires: "`testCaseKey` is required. " + pagingRequires,
			Effects:  listEffects,
			Retry:    readRetry,
			Next:     "Read one version with `get_test_case_version`.",
		}),
		string(client.OpGetTestCaseVersion): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read a test case as it was at one version.",
			UseWhen:  "You need an earlier state of a test case.",
			Requires: "`testCaseKey` and `version` (>= 1) are required.",
			Effects:  "Returns the test case at that version.",
			Retry:    readRetry,
			Next:     "Compare with `get_test_case`.",
		}),
		string(client.OpGetTestCaseLinks): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read the issue and web links of a test case.",
			UseWhen:  "You need to know which Jira issues a test case covers.",
			Requires: "`testCaseKey` is required.",
			Effects:  "Returns the links grouped by kind.",
			Retry:    readRetry,
			Next:     "Add links with `create_test_case_issue_link` or `create_test_case_web_link`.",
		}),
		string(client.OpCreateTestCaseIssueLink): formatToolDescription(toolContract{
			Top:      []string{keysLine, issueIDLine},
			Purpose:  "Link a test case to a Jira issue.",
			UseWhen:  "A test case covers a requirement or bug tracked in Jira.",
			Requires: "`testCaseKey` and `issueId` are required. `issueId` may be a number or a string of digits.",
			Effects:  "Creates the link and returns its id.",
			Retry:    createRetry,
			Next:     "Verify with `get_test_case_links`.",
		}),
		string(client.OpCreateTestCaseWebLink): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Link a test case to a web page.",
			UseWhen:  "A test case refers to external documentation.",
			Requires: "`testCaseKey` and `url` (http or https) are required. `description` is optional.",
			Effects:  "Creates the link and returns its id.",
			Retry:    createRetry,
			Next:     "Verify with `get_test_case_links`.",
		}),
		string(client.OpListTestSteps): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "List the steps of a test case.",
			UseWhen:  "You need the step-by-step content of a test case.",
			Requires: "`testCaseKey` is required. " + pagingRequires,
			Effects:  listEffects + " Each step is either inline or a call to another test case.",
			Retry:    readRetry,
			Next:     pageNext,
		}),
		string(client.OpCreateTestSteps): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Write steps to a test case.",
			UseWhen:  "A test case needs step-by-step instructions.",
			Requires: "`testCaseKey` and `items` (1-100 steps) are required. `mode` is APPEND (default) or OVERWRITE. Each item sets exactly one of `inline` (description, testData, expectedResult, customFields) or `testCase` (testCaseKey, parameters).",
			Effects:  "Appends the steps, or replaces all steps when mode is OVERWRITE.",
			Retry:    "APPEND is not idempotent; a retry may duplicate steps. OVERWRITE is safe to retry.",
			Next:     "Verify with `get_test_steps`.",
		}),
		string(client.OpGetTestScript): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read the script of a test case.",
			UseWhen:  "The test case uses a plain-text or BDD script instead of steps.",
			Requires: "`testCaseKey` is required.",
			Effects:  "Returns the script type and text.",
			Retry:    readRetry,
			Next:     "Replace it with `create_test_script`.",
		}),
		string(client.OpCreateTestScript): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Set the script of a test case.",
			UseWhen:  "A test case should carry a plain-text or BDD (Gherkin) script.",
			Requires: "`testCaseKey`, `type` (plain or bdd) and non-blank `text` are required.",
			Effects:  "Stores the script, replacing any previous one.",
			Retry:    "Safe to retry with the same arguments.",
			Next:     "Verify with `get_test_script`.",
		}),

		string(client.OpListTestCycles): formatToolDescription(toolContract{
			Purpose:  "List test cycles of a project.",
			UseWhen:  "You need to find test runs, optionally by folder or Jira version.",
			Requires: listProject + " Optional `folderId` and `jiraProjectVersionId`. " + pagingRequires,
			Effects:  listEffects,
			Retry:    readRetry,
			Next:     pageNext,
		}),
		string(client.OpGetTestCycle): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read one test cycle.",
			UseWhen:  "You know the test cycle key.",
			Requires: "`testCycleKey` is required, for example PROJ-R12.",
			Effects:  "Returns the test cycle with status, folder, planned dates, owner and links.",
			Retry:    readRetry,
			Next:     "Use `update_test_cycle` to change it.",
		}),
		string(client.OpCreateTestCycle): formatToolDescription(toolContract{
			Top:      []string{projectLine},
			Purpose:  "Create a test cycle.",
			UseWhen:  "A new test run must be planned.",
			Requires: "`name` is required. Optional `description`, `plannedStartDate`, `plannedEndDate` (ISO-8601, start not after end), `jiraProjectVersion`, `statusName`, `folderId`, `ownerId`, `customFields`.",
			Effects:  "Creates the test cycle and returns its id and key.",
			Retry:    createRetry,
			Next:     "Link it to a plan with `create_test_plan_test_cycle_link`.",
		}),
		string(client.OpUpdateTestCycle): formatToolDescription(toolContract{
			Top:      []string{keysLine, partialLine},
			Purpose:  "Change a test cycle.",
			UseWhen:  "Fields of an existing test cycle must change.",
			Requires: "`testCycleKey` is required. Optional `name`, `description`, `plannedStartDate`, `plannedEndDate`, `jiraProjectVersion`, `statusId`, `folderId`, `ownerId`, `customFields`.",
			Effects:  "Writes the merged test cycle and returns it.",
			Retry:    updateRetry,
			Next:     "Verify with `get_test_cycle`.",
		}),
		string(client.OpGetTestCycleLinks): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read the links of a test cycle.",
			UseWhen:  "You need the Jira issues, web pages or test plans a cycle is linked to.",
			Requires: "`testCycleKey` is required.",
			Effects:  "Returns the links grouped by kind.",
			Retry:    readRetry,
			Next:     "Add links with `create_test_cycle_issue_link` or `create_test_cycle_web_link`.",
		}),
		string(client.OpCreateTestCycleIssueLink): formatToolDescription(toolContract{
			Top:      []string{keysLine, issueIDLine},
			Purpose:  "Link a test cycle to a Jira issue.",
			UseWhen:  "A test run belongs to a Jira issue such as a release or story.",
			Requires: "`testCycleKey` and `issueId` are required.",
			Effects:  "Creates the link and returns its id.",
			Retry:    createRetry,
			Next:     "Verify with `get_test_cycle_links`.",
		}),
		string(client.OpCreateTestCycleWebLink): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Link a test cycle to a web page.",
			UseWhen:  "A test run refers to an external report or document.",
			Requires: "`testCycleKey` and `url` are required. `description` is optional.",
			Effects:  "Creates the link and returns its id.",
			Retry:    createRetry,
			Next:     "Verify with `get_test_cycle_links`.",
		}),

		string(client.OpListTestPlans): formatToolDescription(toolContract{
			Purpose:  "List test plans of a project.",
			UseWhen:  "You need to find test plans.",
			Requires: listProject + " " + pagingRequires,
			Effects:  listEffects,
			Retry:    readRetry,
			Next:     pageNext,
		}),
		string(client.OpGetTestPlan): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Read one test plan.",
			UseWhen:  "You know the test plan key.",
			Requires: "`testPlanKey` is required, for example PROJ-P3.",
			Effects:  "Returns the test plan with status, folder, owner, labels and links.",
			Retry:    readRetry,
			Next:     "Link cycles with `create_test_plan_test_cycle_link`.",
		}),
		string(client.OpCreateTestPlan): formatToolDescription(toolContract{
			Top:      []string{projectLine},
			Purpose:  "Create a test plan.",
			UseWhen:  "A release or feature needs a test plan.",
			Requires: "`name` is required. Optional `objective`, `folderId`, `statusName`, `ownerId`, `labels`, `customFields`.",
			Effects:  "Creates the test plan and returns its id and key.",
			Retry:    createRetry,
			Next:     "Link cycles with `create_test_plan_test_cycle_link`.",
		}),
		string(client.OpCreateTestPlanIssueLink): formatToolDescription(toolContract{
			Top:      []string{keysLine, issueIDLine},
			Purpose:  "Link a test plan to a Jira issue.",
			UseWhen:  "A test plan covers a Jira epic, story or release.",
			Requires: "`testPlanKey` and `issueId` are required.",
			Effects:  "Creates the link and returns its id.",
			Retry:    createRetry,
			Next:     "Verify with `get_test_plan`.",
		}),
		string(client.OpCreateTestPlanWebLink): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Link a test plan to a web page.",
			UseWhen:  "A test plan refers to an external document.",
			Requires: "`testPlanKey`, `url` and `description` are all required; test plan web links must be described.",
			Effects:  "Creates the link and returns its id.",
			Retry:    createRetry,
			Next:     "Verify with `get_test_plan`.",
		}),
		string(client.OpCreateTestPlanCycleLink): formatToolDescription(toolContract{
			Top:      []string{keysLine},
			Purpose:  "Link a test cycle to a test plan.",
			UseWhen:  "A test run executes part of a plan.",
			Requires: "`testPlanKey` and `testCycleIdOrKey` (numeric id or PROJ-R<n>) are required.",
			Effects:  "Creates the link and returns its id.",
			Retry:    createRetry,
			Next:     "Verify with `get_test_cycle_links` on the cycle.",
		}),
	}
}
