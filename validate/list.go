package validate

import (
	"fmt"
	"strings"

	"pkt.systems/zscale/api"
)

// Pagination checks offset pagination arguments. Nil selects the default;
// present values are never clamped.
func Pagination(startAt, maxResults *int64) Result[api.PageRequest] {
	var c collector
	req := checkPage(&c, startAt, maxResults)
	return result(req, &c)
}

func checkPage(c *collector, startAt, maxResults *int64) api.PageRequest {
	req := api.DefaultPageRequest()
	if startAt != nil {
		req.StartAt = *startAt
		switch {
		case req.StartAt < 0:
			c.add("startAt", fmt.Sprintf("must be at least 0 (got %d)", req.StartAt))
		case req.StartAt > api.MaxStartAt:
			c.add("startAt", fmt.Sprintf("must be at most %d (got %d)", api.MaxStartAt, req.StartAt))
		}
	}
	if maxResults != nil {
		req.MaxResults = *maxResults
		switch {
		case req.MaxResults < api.MinMaxResults:
			c.add("maxResults", fmt.Sprintf("must be at least %d (got %d)", api.MinMaxResults, req.MaxResults))
		case req.MaxResults > api.MaxMaxResults:
			c.add("maxResults", fmt.Sprintf("must be at most %d, the largest page the service returns (got %d)", api.MaxMaxResults, req.MaxResults))
		}
	}
	return req
}

// ListArgs are the arguments of every list operation. Each operation accepts
// only the filters it documents.
type ListArgs struct {
	ProjectKey           string
	StatusType           string
	FolderType           string
	FolderID             *int64
	JiraProjectVersionID *int64
	StartAt              *int64
	MaxResults           *int64
}

const (
	filterStatusType           = "statusType"
	filterFolderType           = "folderType"
	filterFolderID             = "folderId"
	filterJiraProjectVersionID = "jiraProjectVersionId"
)

// ListPriorities validates GET /priorities arguments.
func ListPriorities(a ListArgs) Result[api.ListQuery] {
	return listQuery("get_priorities", a)
}

// ListStatuses validates GET /statuses arguments.
func ListStatuses(a ListArgs) Result[api.ListQuery] {
	return listQuery("get_statuses", a, filterStatusType)
}

// ListFolders validates GET /folders arguments.
func ListFolders(a ListArgs) Result[api.ListQuery] {
	return listQuery("get_folders", a, filterFolderType)
}

// ListTestCases validates GET /testcases arguments.
func ListTestCases(a ListArgs) Result[api.ListQuery] {
	return listQuery("get_test_cases", a, filterFolderID)
}

// ListTestCycles validates GET /testcycles arguments.
func ListTestCycles(a ListArgs) Result[api.ListQuery] {
	return listQuery("get_test_cycles", a, filterFolderID, filterJiraProjectVersionID)
}

// ListTestPlans validates GET /testplans arguments.
func ListTestPlans(a ListArgs) Result[api.ListQuery] {
	return listQuery("get_test_plans", a)
}

func listQuery(op string, a ListArgs, filters ...string) Result[api.ListQuery] {
	var c collector
	allowed := func(name string) bool {
		for _, f := range filters {
			if f == name {
				return true
			}
		}
		c.add(name, "is not supported by "+op)
		return false
	}
	q := api.ListQuery{ProjectKey: strings.TrimSpace(a.ProjectKey)}
	checkProjectKey(&c, "projectKey", q.ProjectKey)
	if a.StatusType != "" && allowed(filterStatusType) {
		q.StatusType = a.StatusType
		checkEnum(&c, filterStatusType, a.StatusType, api.StatusTypes, false)
	}
	if a.FolderType != "" && allowed(filterFolderType) {
		q.FolderType = a.FolderType
		checkEnum(&c, filterFolderType, a.FolderType, api.FolderTypes, false)
	}
	if a.FolderID != nil && allowed(filterFolderID) {
		q.FolderID = api.Some(*a.FolderID)
		checkPositive(&c, filterFolderID, *a.FolderID)
	}
	if a.JiraProjectVersionID != nil && allowed(filterJiraProjectVersionID) {
		q.JiraProjectVersionID = api.Some(*a.JiraProjectVersionID)
		checkPositive(&c, filterJiraProjectVersionID, *a.JiraProjectVersionID)
	}
	q.Page = checkPage(&c, a.StartAt, a.MaxResults)
	return result(q, &c)
}

// KeyedListArgs address a paginated sub-collection of one test case.
type KeyedListArgs struct {
	Key        string
	StartAt    *int64
	MaxResults *int64
}

// ListTestCaseVersions validates GET /testcases/{key}/versions arguments.
func ListTestCaseVersions(a KeyedListArgs) Result[api.KeyedPage] {
	return keyedList(KindTestCase, a)
}

// ListTestSteps validates GET /testcases/{key}/teststeps arguments.
func ListTestSteps(a KeyedListArgs) Result[api.KeyedPage] {
	return keyedList(KindTestCase, a)
}

func keyedList(kind Kind, a KeyedListArgs) Result[api.KeyedPage] {
	var c collector
	out := api.KeyedPage{Key: checkKey(&c, kind, kind.Field(), a.Key)}
	out.Page = checkPage(&c, a.StartAt, a.MaxResults)
	return result(out, &c)
}

func checkPositive(c *collector, field string, v int64) {
	if v < 1 {
		c.add(field, fmt.Sprintf("must be at least 1 (got %d)", v))
	}
}

func checkNonNegative(c *collector, field string, v int64) {
	if v < 0 {
		c.add(field, fmt.Sprintf("must be at least 0 (got %d)", v))
	}
}
