package client

import (
	"net/http"
	"net/url"
	"strings"
)

// Op names one gateway operation. The values double as MCP tool names.
type Op string

// Operations.
const (
	OpHealthcheck Op = "healthcheck"

	OpListPriorities Op = "get_priorities"
	OpGetPriority    Op = "get_priority"
	OpCreatePriority Op = "create_priority"
	OpUpdatePriority Op = "update_priority"

	OpListStatuses Op = "get_statuses"
	OpGetStatus    Op = "get_status"
	OpCreateStatus Op = "create_status"
	OpUpdateStatus Op = "update_status"

	OpListFolders  Op = "get_folders"
	OpGetFolder    Op = "get_folder"
	OpCreateFolder Op = "create_folder"

	OpListTestCases            Op = "get_test_cases"
	OpGetTestCase              Op = "get_test_case"
	OpCreateTestCase           Op = "create_test_case"
	OpUpdateTestCase           Op = "update_test_case"
	OpListTestCaseVersions     Op = "get_test_case_versions"
	OpGetTestCaseVersion       Op = "get_test_case_version"
	OpGetTestCaseLinks         Op = "get_test_case_links"
	OpCreateTestCaseIssueLink  Op = "create_test_case_issue_link"
	OpCreateTestCaseWebLink    Op = "create_test_case_web_link"
	OpListTestSteps            Op = "get_test_steps"
	OpCreateTestSteps          Op = "create_test_steps"
	OpGetTestScript            Op = "get_test_script"
	OpCreateTestScript         Op = "create_test_script"
	OpListTestCycles           Op = "get_test_cycles"
	OpGetTestCycle             Op = "get_test_cycle"
	OpCreateTestCycle          Op = "create_test_cycle"
	OpUpdateTestCycle          Op = "update_test_cycle"
	OpGetTestCycleLinks        Op = "get_test_cycle_links"
	OpCreateTestCycleIssueLink Op = "create_test_cycle_issue_link"
	OpCreateTestCycleWebLink   Op = "create_test_cycle_web_link"
	OpListTestPlans            Op = "get_test_plans"
	OpGetTestPlan              Op = "get_test_plan"
	OpCreateTestPlan           Op = "create_test_plan"
	OpCreateTestPlanIssueLink  Op = "create_test_plan_issue_link"
	OpCreateTestPlanWebLink    Op = "create_test_plan_web_link"
	OpCreateTestPlanCycleLink  Op = "create_test_plan_test_cycle_link"
	opUpdatePriorityPut        Op = "update_priority.put"
	opUpdateStatusPut          Op = "update_status.put"
	opUpdateTestCasePut        Op = "update_test_case.put"
	opUpdateTestCyclePut       Op = "update_test_cycle.put"
)

// Route is the HTTP method and path template of an operation. Placeholders
// in braces are filled in order and path-escaped.
type Route struct {
	Method string
	Path   string
}

var routes = map[Op]Route{
	OpHealthcheck: {http.MethodGet, "/healthcheck"},

	OpListPriorities:    {http.MethodGet, "/priorities"},
	OpGetPriority:       {http.MethodGet, "/priorities/{id}"},
	OpCreatePriority:    {http.MethodPost, "/priorities"},
	OpUpdatePriority:    {http.MethodGet, "/priorities/{id}"},
	opUpdatePriorityPut: {http.MethodPut, "/priorities/{id}"},

	OpListStatuses:    {http.MethodGet, "/statuses"},
	OpGetStatus:       {http.MethodGet, "/statuses/{id}"},
	OpCreateStatus:    {http.MethodPost, "/statuses"},
	OpUpdateStatus:    {http.MethodGet, "/statuses/{id}"},
	opUpdateStatusPut: {http.MethodPut, "/statuses/{id}"},

	OpListFolders:  {http.MethodGet, "/folders"},
	OpGetFolder:    {http.MethodGet, "/folders/{id}"},
	OpCreateFolder: {http.MethodPost, "/folders"},

	OpListTestCases:           {http.MethodGet, "/testcases"},
	OpGetTestCase:             {http.MethodGet, "/testcases/{key}"},
	OpCreateTestCase:          {http.MethodPost, "/testcases"},
	OpUpdateTestCase:          {http.MethodGet, "/testcases/{key}"},
	opUpdateTestCasePut:       {http.MethodPut, "/testcases/{key}"},
	OpListTestCaseVersions:    {http.MethodGet, "/testcases/{key}/versions"},
	OpGetTestCaseVersion:      {http.MethodGet, "/testcases/{key}/versions/{version}"},
	OpGetTestCaseLinks:        {http.MethodGet, "/testcases/{key}/links"},
	OpCreateTestCaseIssueLink: {http.MethodPost, "/testcases/{key}/links/issues"},
	OpCreateTestCaseWebLink:   {http.MethodPost, "/testcases/{key}/links/weblinks"},
	OpListTestSteps:           {http.MethodGet, "/testcases/{key}/teststeps"},
	OpCreateTestSteps:         {http.MethodPost, "/testcases/{key}/teststeps"},
	OpGetTestScript:           {http.MethodGet, "/testcases/{key}/testscript"},
	OpCreateTestScript:        {http.MethodPost, "/testcases/{key}/testscript"},

	OpListTestCycles:           {http.MethodGet, "/testcycles"},
	OpGetTestCycle:             {http.MethodGet, "/testcycles/{key}"},
	OpCreateTestCycle:          {http.MethodPost, "/testcycles"},
	OpUpdateTestCycle:          {http.MethodGet, "/testcycles/{key}"},
	opUpdateTestCyclePut:       {http.MethodPut, "/testcycles/{key}"},
	OpGetTestCycleLinks:        {http.MethodGet, "/testcycles/{key}/links"},
	OpCreateTestCycleIssueLink: {http.MethodPost, "/testcycles/{key}/links/issues"},
	OpCreateTestCycleWebLink:   {http.MethodPost, "/testcycles/{key}/links/weblinks"},

	OpListTestPlans:           {http.MethodGet, "/testplans"},
	OpGetTestPlan:             {http.MethodGet, "/testplans/{key}"},
	OpCreateTestPlan:          {http.MethodPost, "/testplans"},
	OpCreateTestPlanIssueLink: {http.MethodPost, "/testplans/{key}/links/issues"},
	OpCreateTestPlanWebLink:   {http.MethodPost, "/testplans/{key}/links/weblinks"},
	OpCreateTestPlanCycleLink: {http.MethodPost, "/testplans/{key}/links/testcycles"},
}

// RouteOf returns the route of op. Update operations report the GET that
// starts the read-merge-write sequence.
func RouteOf(op Op) (Route, bool) {
	r, ok := routes[op]
	return r, ok
}

// Ops returns every public operation in declaration order.
func Ops() []Op {
	return []Op{
		OpHealthcheck,
		OpListPriorities, OpGetPriority, OpCreatePriority, OpUpdatePriority,
		OpListStatuses, OpGetStatus, OpCreateStatus, OpUpdateStatus,
		OpListFolders, OpGetFolder, OpCreateFolder,
		OpListTestCases, OpGetTestCase, OpCreateTestCase, OpUpdateTestCase,
		OpListTestCaseVersions, OpGetTestCaseVersion, OpGetTestCaseLinks,
		OpCreateTestCaseIssueLink, OpCreateTestCaseWebLink,
		OpListTestSteps, OpCreateTestSteps, OpGetTestScript, OpCreateTestScript,
		OpListTestCycles, OpGetTestCycle, OpCreateTestCycle, OpUpdateTestCycle,
		OpGetTestCycleLinks, OpCreateTestCycleIssueLink, OpCreateTestCycleWebLink,
		OpListTestPlans, OpGetTestPlan, OpCreateTestPlan,
		OpCreateTestPlanIssueLink, OpCreateTestPlanWebLink, OpCreateTestPlanCycleLink,
	}
}

// expand fills the placeholders of path with params in order.
func expand(path string, params ...string) string {
	if len(params) == 0 {
		return path
	}
	var b strings.Builder
	b.Grow(len(path) + 16)
	rest := path
	for _, p := range params {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(p))
		rest = rest[open+end+1:]
	}
	b.WriteString(rest)
	return b.String()
}
