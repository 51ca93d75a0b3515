package client

import (
	"context"
	"strconv"

	"pkt.systems/zscale/api"
	"pkt.systems/zscale/validate"
)

// Healthcheck probes GET /healthcheck. The service answers 200 with an empty
// body, so only the status is inspected.
func (c *Client) Healthcheck(ctx context.Context) (api.Health, error) {
	s := c.settings()
	status, err := c.do(ctx, s, request{op: OpHealthcheck}, nil)
	if err != nil {
		return api.Health{}, err
	}
	return api.Health{Status: "UP", HTTPStatus: status, BaseURL: s.BaseURL}, nil
}

func idParam(v int64) string { return strconv.FormatInt(v, 10) }

// listRequest resolves the project key of q and re-checks it.
func (c *Client) listRequest(s Settings, op Op, q api.ListQuery, schema *api.Schema) (request, error) {
	key, err := c.projectKey(s, q.ProjectKey, false)
	if err != nil {
		return request{}, err
	}
	q.ProjectKey = key
	if err := validate.Recheck(q).Err(); err != nil {
		return request{}, err
	}
	return request{op: op, query: q.Values(), schema: schema}, nil
}

func keyedPageRequest(op Op, kind validate.Kind, p api.KeyedPage, schema *api.Schema) (request, error) {
	key, err := validate.Key(kind, p.Key).Unwrap()
	if err != nil {
		return request{}, err
	}
	p.Key = key
	if err := validate.Recheck(p).Err(); err != nil {
		return request{}, err
	}
	q := api.ListQuery{Page: p.Page}
	return request{op: op, params: []string{p.Key}, query: q.Values(), schema: schema}, nil
}

// ListPriorities returns one page of priorities.
func (c *Client) ListPriorities(ctx context.Context, q api.ListQuery) (api.Page[api.Priority], error) {
	s := c.settings()
	r, err := c.listRequest(s, OpListPriorities, q, api.PriorityPageSchema())
	if err != nil {
		return api.Page[api.Priority]{}, err
	}
	return list[api.Priority](ctx, c, s, r)
}

// GetPriority returns one priority.
func (c *Client) GetPriority(ctx context.Context, priorityID int64) (api.Priority, error) {
	if err := validate.ID(validate.KindPriority, priorityID).Err(); err != nil {
		return api.Priority{}, err
	}
	return get[api.Priority](ctx, c, c.settings(), request{op: OpGetPriority, params: []string{idParam(priorityID)}, schema: api.PrioritySchema()})
}

// CreatePriority creates a priority in the given or default project.
func (c *Client) CreatePriority(ctx context.Context, in api.CreatePriorityInput) (api.CreatedResource, error) {
	s := c.settings()
	key, err := c.projectKey(s, in.ProjectKey, true)
	if err != nil {
		return api.CreatedResource{}, err
	}
	in.ProjectKey = key
	if err := validate.Recheck(in).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	return c.create(ctx, s, request{op: OpCreatePriority, body: in})
}

// UpdatePriority reads the priority, applies u and writes the result back.
// It returns the merged priority.
func (c *Client) UpdatePriority(ctx context.Context, u api.PriorityUpdate) (api.Priority, error) {
	return update[api.PriorityUpdate, api.UpdatePriorityInput, api.Priority](ctx, c, u,
		request{op: OpUpdatePriority, params: []string{idParam(u.ID)}, schema: api.PrioritySchema()}, opUpdatePriorityPut)
}

// ListStatuses returns one page of statuses.
func (c *Client) ListStatuses(ctx context.Context, q api.ListQuery) (api.Page[api.Status], error) {
	s := c.settings()
	r, err := c.listRequest(s, OpListStatuses, q, api.StatusPageSchema())
	if err != nil {
		return api.Page[api.Status]{}, err
	}
	return list[api.Status](ctx, c, s, r)
}

// GetStatus returns one status.
func (c *Client) GetStatus(ctx context.Context, statusID int64) (api.Status, error) {
	if err := validate.ID(validate.KindStatus, statusID).Err(); err != nil {
		return api.Status{}, err
	}
	return get[api.Status](ctx, c, c.settings(), request{op: OpGetStatus, params: []string{idParam(statusID)}, schema: api.StatusSchema()})
}

// CreateStatus creates a status in the given or default project.
func (c *Client) CreateStatus(ctx context.Context, in api.CreateStatusInput) (api.CreatedResource, error) {
	s := c.settings()
	key, err := c.projectKey(s, in.ProjectKey, true)
	if err != nil {
		return api.CreatedResource{}, err
	}
	in.ProjectKey = key
	if err := validate.Recheck(in).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	return c.create(ctx, s, request{op: OpCreateStatus, body: in})
}

// UpdateStatus reads the status, applies u and writes the result back.
func (c *Client) UpdateStatus(ctx context.Context, u api.StatusUpdate) (api.Status, error) {
	return update[api.StatusUpdate, api.UpdateStatusInput, api.Status](ctx, c, u,
		request{op: OpUpdateStatus, params: []string{idParam(u.ID)}, schema: api.StatusSchema()}, opUpdateStatusPut)
}

// ListFolders returns one page of folders.
func (c *Client) ListFolders(ctx context.Context, q api.ListQuery) (api.Page[api.Folder], error) {
	s := c.settings()
	r, err := c.listRequest(s, OpListFolders, q, api.FolderPageSchema())
	if err != nil {
		return api.Page[api.Folder]{}, err
	}
	return list[api.Folder](ctx, c, s, r)
}

// GetFolder returns one folder.
func (c *Client) GetFolder(ctx context.Context, folderID int64) (api.Folder, error) {
	if err := validate.ID(validate.KindFolder, folderID).Err(); err != nil {
		return api.Folder{}, err
	}
	return get[api.Folder](ctx, c, c.settings(), request{op: OpGetFolder, params: []string{idParam(folderID)}, schema: api.FolderSchema()})
}

// CreateFolder creates a folder in the given or default project.
func (c *Client) CreateFolder(ctx context.Context, in api.CreateFolderInput) (api.CreatedResource, error) {
	s := c.settings()
	key, err := c.projectKey(s, in.ProjectKey, true)
	if err != nil {
		return api.CreatedResource{}, err
	}
	in.ProjectKey = key
	if err := validate.Recheck(in).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	return c.create(ctx, s, request{op: OpCreateFolder, body: in})
}

// ListTestCases returns one page of test cases.
func (c *Client) ListTestCases(ctx context.Context, q api.ListQuery) (api.Page[api.TestCase], error) {
	s := c.settings()
	r, err := c.listRequest(s, OpListTestCases, q, api.TestCasePageSchema())
	if err != nil {
		return api.Page[api.TestCase]{}, err
	}
	return list[api.TestCase](ctx, c, s, r)
}

// GetTestCase returns the latest version of a test case.
func (c *Client) GetTestCase(ctx context.Context, key string) (api.TestCase, error) {
	key, err := validate.Key(validate.KindTestCase, key).Unwrap()
	if err != nil {
		return api.TestCase{}, err
	}
	return get[api.TestCase](ctx, c, c.settings(), request{op: OpGetTestCase, params: []string{key}, schema: api.TestCaseSchema()})
}

// CreateTestCase creates a test case in the given or default project.
func (c *Client) CreateTestCase(ctx context.Context, in api.CreateTestCaseInput) (api.CreatedResource, error) {
	s := c.settings()
	key, err := c.projectKey(s, in.ProjectKey, true)
	if err != nil {
		return api.CreatedResource{}, err
	}
	in.ProjectKey = key
	if err := validate.Recheck(in).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	return c.create(ctx, s, request{op: OpCreateTestCase, body: in})
}

// UpdateTestCase reads the test case, applies u and writes the result back.
// Custom fields in u are merged into the current ones.
func (c *Client) UpdateTestCase(ctx context.Context, u api.TestCaseUpdate) (api.TestCase, error) {
	return update[api.TestCaseUpdate, api.UpdateTestCaseInput, api.TestCase](ctx, c, u,
		request{op: OpUpdateTestCase, params: []string{u.Key}, schema: api.TestCaseSchema()}, opUpdateTestCasePut)
}

// ListTestCaseVersions returns one page of historical versions.
func (c *Client) ListTestCaseVersions(ctx context.Context, p api.KeyedPage) (api.Page[api.VersionRef], error) {
	r, err := keyedPageRequest(OpListTestCaseVersions, validate.KindTestCase, p, api.VersionPageSchema())
	if err != nil {
		return api.Page[api.VersionRef]{}, err
	}
	return list[api.VersionRef](ctx, c, c.settings(), r)
}

// GetTestCaseVersion returns a test case as it was at one version.
func (c *Client) GetTestCaseVersion(ctx context.Context, v validate.VersionRequest) (api.TestCase, error) {
	if err := validate.Recheck(v).Err(); err != nil {
		return api.TestCase{}, err
	}
	return get[api.TestCase](ctx, c, c.settings(), request{
		op:     OpGetTestCaseVersion,
		params: []string{v.Key, idParam(v.Version)},
		schema: api.TestCaseSchema(),
	})
}

// GetTestCaseLinks returns the issue and web links of a test case.
func (c *Client) GetTestCaseLinks(ctx context.Context, key string) (api.Links, error) {
	return c.links(ctx, OpGetTestCaseLinks, validate.KindTestCase, key)
}

// ListTestSteps returns one page of a test case's steps.
func (c *Client) ListTestSteps(ctx context.Context, p api.KeyedPage) (api.Page[api.TestStep], error) {
	r, err := keyedPageRequest(OpListTestSteps, validate.KindTestCase, p, api.TestStepPageSchema())
	if err != nil {
		return api.Page[api.TestStep]{}, err
	}
	return list[api.TestStep](ctx, c, c.settings(), r)
}

// CreateTestSteps appends to or replaces the steps of a test case.
func (c *Client) CreateTestSteps(ctx context.Context, req validate.StepsRequest) (api.CreatedResource, error) {
	if err := validate.Recheck(req).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	return c.create(ctx, c.settings(), request{op: OpCreateTestSteps, params: []string{req.Key}, body: req.Input})
}

// GetTestScript returns the plain or BDD script of a test case.
func (c *Client) GetTestScript(ctx context.Context, key string) (api.TestScript, error) {
	key, err := validate.Key(validate.KindTestCase, key).Unwrap()
	if err != nil {
		return api.TestScript{}, err
	}
	return get[api.TestScript](ctx, c, c.settings(), request{op: OpGetTestScript, params: []string{key}, schema: api.TestScriptSchema()})
}

// CreateTestScript sets the script of a test case.
func (c *Client) CreateTestScript(ctx context.Context, req validate.ScriptRequest) (api.CreatedResource, error) {
	if err := validate.Recheck(req).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	return c.create(ctx, c.settings(), request{op: OpCreateTestScript, params: []string{req.Key}, body: req.Input})
}

// ListTestCycles returns one page of test cycles.
func (c *Client) ListTestCycles(ctx context.Context, q api.ListQuery) (api.Page[api.TestCycle], error) {
	s := c.settings()
	r, err := c.listRequest(s, OpListTestCycles, q, api.TestCyclePageSchema())
	if err != nil {
		return api.Page[api.TestCycle]{}, err
	}
	return list[api.TestCycle](ctx, c, s, r)
}

// GetTestCycle returns one test cycle.
func (c *Client) GetTestCycle(ctx context.Context, key string) (api.TestCycle, error) {
	key, err := validate.Key(validate.KindTestCycle, key).Unwrap()
	if err != nil {
		return api.TestCycle{}, err
	}
	return get[api.TestCycle](ctx, c, c.settings(), request{op: OpGetTestCycle, params: []string{key}, schema: api.TestCycleSchema()})
}

// CreateTestCycle creates a test cycle in the given or default project.
func (c *Client) CreateTestCycle(ctx context.Context, in api.CreateTestCycleInput) (api.CreatedResource, error) {
	s := c.settings()
	key, err := c.projectKey(s, in.ProjectKey, true)
	if err != nil {
		return api.CreatedResource{}, err
	}
	in.ProjectKey = key
	if err := validate.Recheck(in).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	return c.create(ctx, s, request{op: OpCreateTestCycle, body: in})
}

// UpdateTestCycle reads the test cycle, applies u and writes the result back.
func (c *Client) UpdateTestCycle(ctx context.Context, u api.TestCycleUpdate) (api.TestCycle, error) {
	return update[api.TestCycleUpdate, api.UpdateTestCycleInput, api.TestCycle](ctx, c, u,
		request{op: OpUpdateTestCycle, params: []string{u.Key}, schema: api.TestCycleSchema()}, opUpdateTestCyclePut)
}

// GetTestCycleLinks returns the issue and web links of a test cycle.
func (c *Client) GetTestCycleLinks(ctx context.Context, key string) (api.Links, error) {
	return c.links(ctx, OpGetTestCycleLinks, validate.KindTestCycle, key)
}

// ListTestPlans returns one page of test plans.
func (c *Client) ListTestPlans(ctx context.Context, q api.ListQuery) (api.Page[api.TestPlan], error) {
	s := c.settings()
	r, err := c.listRequest(s, OpListTestPlans, q, api.TestPlanPageSchema())
	if err != nil {
		return api.Page[api.TestPlan]{}, err
	}
	return list[api.TestPlan](ctx, c, s, r)
}

// GetTestPlan returns one test plan.
func (c *Client) GetTestPlan(ctx context.Context, key string) (api.TestPlan, error) {
	key, err := validate.Key(validate.KindTestPlan, key).Unwrap()
	if err != nil {
		return api.TestPlan{}, err
	}
	return get[api.TestPlan](ctx, c, c.settings(), request{op: OpGetTestPlan, params: []string{key}, schema: api.TestPlanSchema()})
}

// CreateTestPlan creates a test plan in the given or default project.
func (c *Client) CreateTestPlan(ctx context.Context, in api.CreateTestPlanInput) (api.CreatedResource, error) {
	s := c.settings()
	key, err := c.projectKey(s, in.ProjectKey, true)
	if err != nil {
		return api.CreatedResource{}, err
	}
	in.ProjectKey = key
	if err := validate.Recheck(in).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	return c.create(ctx, s, request{op: OpCreateTestPlan, body: in})
}

var linkOps = map[validate.Kind]map[validate.LinkKind]Op{
	validate.KindTestCase: {
		validate.LinkIssue: OpCreateTestCaseIssueLink,
		validate.LinkWeb:   OpCreateTestCaseWebLink,
	},
	validate.KindTestCycle: {
		validate.LinkIssue: OpCreateTestCycleIssueLink,
		validate.LinkWeb:   OpCreateTestCycleWebLink,
	},
	validate.KindTestPlan: {
		validate.LinkIssue:     OpCreateTestPlanIssueLink,
		validate.LinkWeb:       OpCreateTestPlanWebLink,
		validate.LinkTestCycle: OpCreateTestPlanCycleLink,
	},
}

// LinkOp returns the operation that creates a link of kind on entity.
func LinkOp(entity validate.Kind, kind validate.LinkKind) (Op, bool) {
	op, ok := linkOps[entity][kind]
	return op, ok
}

// CreateLink creates the link described by req.
func (c *Client) CreateLink(ctx context.Context, req validate.LinkRequest) (api.CreatedResource, error) {
	if err := validate.Recheck(req).Err(); err != nil {
		return api.CreatedResource{}, err
	}
	op, ok := LinkOp(req.Entity, req.Kind)
	if !ok {
		return api.CreatedResource{}, &validate.ValidationError{Errors: []api.FieldError{{Field: "kind", Message: "unsupported link kind"}}}
	}
	return c.create(ctx, c.settings(), request{op: op, params: []string{req.Key}, body: req.Body()})
}

func (c *Client) links(ctx context.Context, op Op, kind validate.Kind, key string) (api.Links, error) {
	key, err := validate.Key(kind, key).Unwrap()
	if err != nil {
		return api.Links{}, err
	}
	return get[api.Links](ctx, c, c.settings(), request{op: op, params: []string{key}, schema: api.LinksSchema()})
}

func (c *Client) create(ctx context.Context, s Settings, r request) (api.CreatedResource, error) {
	r.schema = api.CreatedResourceSchema()
	return get[api.CreatedResource](ctx, c, s, r)
}

// update reads the entity, applies u and writes the full body back. Both
// steps share one deadline. It returns the merged entity.
func update[U, B validate.Checker, E interface {
	Apply(U) E
	UpdateInput() B
}](ctx context.Context, c *Client, u U, read request, writeOp Op) (E, error) {
	var zero E
	if err := validate.Recheck(u).Err(); err != nil {
		return zero, err
	}
	s := c.settings()
	ctx, cancel := c.bound(ctx, s.Timeout)
	defer cancel()
	current, err := get[E](ctx, c, s, read)
	if err != nil {
		return zero, err
	}
	merged := current.Apply(u)
	body := merged.UpdateInput()
	if err := c.recheckMerged(ctx, read.op, current.UpdateInput(), body); err != nil {
		return zero, err
	}
	if _, err := c.do(ctx, s, request{op: writeOp, params: read.params, body: body}, nil); err != nil {
		return zero, err
	}
	return merged, nil
}

// recheckMerged checks the merged PUT body. Violations already present in
// the stored entity's own body are values the service handed out; they are
// written back unchanged and logged. Only violations introduced by the merge
// fail the call.
func (c *Client) recheckMerged(ctx context.Context, op Op, stored, merged validate.Checker) error {
	known := make(map[api.FieldError]struct{})
	for _, fe := range stored.Check() {
		known[fe] = struct{}{}
	}
	var fresh []api.FieldError
	var carried []string
	for _, fe := range merged.Check() {
		if _, ok := known[fe]; ok {
			carried = append(carried, fe.String())
			continue
		}
		fresh = append(fresh, fe)
	}
	if len(carried) > 0 {
		c.logWarnCtx(ctx, "client.update.stored_values_kept", "op", op, "problems", carried)
	}
	if len(fresh) > 0 {
		return &validate.ValidationError{Errors: fresh, AfterRead: true}
	}
	return nil
}
