package api

import (
	"maps"
	"regexp"
	"slices"
)

// Key patterns of keyed entities.
var (
	TestCaseKeyPattern  = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-T[0-9]+$`)
	TestCycleKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-R[0-9]+$`)
	TestPlanKeyPattern  = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-P[0-9]+$`)
)

// TestCase models a test case as returned by GET /testcases/{key}.
type TestCase struct {
	// ID is the numeric test case id.
	ID int64 `json:"id"`
	// Key is the human-readable key, for example PROJ-T12.
	Key string `json:"key"`
	// Name is the test case title.
	Name string `json:"name"`
	// Project references the owning project.
	Project Ref `json:"project"`
	// CreatedOn is the ISO-8601 creation timestamp.
	CreatedOn Opt[string] `json:"createdOn,omitzero"`
	// Objective describes what the test verifies.
	Objective Opt[string] `json:"objective,omitzero"`
	// Precondition describes the required starting state.
	Precondition Opt[string] `json:"precondition,omitzero"`
	// EstimatedTime is the expected duration in milliseconds.
	EstimatedTime Opt[int64] `json:"estimatedTime,omitzero"`
	// Labels are free-form tags.
	Labels Opt[[]string] `json:"labels,omitzero"`
	// Component references a Jira component.
	Component Opt[Ref] `json:"component,omitzero"`
	// Priority references the assigned priority.
	Priority Ref `json:"priority"`
	// Status references the assigned status.
	Status Ref `json:"status"`
	// Folder references the containing folder.
	Folder Opt[Ref] `json:"folder,omitzero"`
	// Owner is the responsible Jira user.
	Owner Opt[Owner] `json:"owner,omitzero"`
	// TestScript points at the script resource.
	TestScript Opt[SelfRef] `json:"testScript,omitzero"`
	// CustomFields carries project-defined fields verbatim.
	CustomFields Opt[map[string]any] `json:"customFields,omitzero"`
	// Links embeds issue and web links.
	Links Opt[Links] `json:"links,omitzero"`
}

// CreateTestCaseInput models POST /testcases.
type CreateTestCaseInput struct {
	ProjectKey    string              `json:"projectKey,omitempty"`
	Name          string              `json:"name"`
	Objective     Opt[string]         `json:"objective,omitzero"`
	Precondition  Opt[string]         `json:"precondition,omitzero"`
	EstimatedTime Opt[int64]          `json:"estimatedTime,omitzero"`
	ComponentID   Opt[int64]          `json:"componentId,omitzero"`
	PriorityName  Opt[string]         `json:"priorityName,omitzero"`
	StatusName    Opt[string]         `json:"statusName,omitzero"`
	FolderID      Opt[int64]          `json:"folderId,omitzero"`
	OwnerID       Opt[string]         `json:"ownerId,omitzero"`
	Labels        Opt[[]string]       `json:"labels,omitzero"`
	CustomFields  Opt[map[string]any] `json:"customFields,omitzero"`
}

// TestCaseUpdate is a validated partial change to one test case.
type TestCaseUpdate struct {
	Key           string              `json:"key"`
	Name          Opt[string]         `json:"name,omitzero"`
	Objective     Opt[string]         `json:"objective,omitzero"`
	Precondition  Opt[string]         `json:"precondition,omitzero"`
	EstimatedTime Opt[int64]          `json:"estimatedTime,omitzero"`
	ComponentID   Opt[int64]          `json:"componentId,omitzero"`
	PriorityID    Opt[int64]          `json:"priorityId,omitzero"`
	StatusID      Opt[int64]          `json:"statusId,omitzero"`
	FolderID      Opt[int64]          `json:"folderId,omitzero"`
	OwnerID       Opt[string]         `json:"ownerId,omitzero"`
	Labels        Opt[[]string]       `json:"labels,omitzero"`
	CustomFields  Opt[map[string]any] `json:"customFields,omitzero"`
}

// UpdateTestCaseInput models the full body of PUT /testcases/{key}.
type UpdateTestCaseInput struct {
	ID            int64               `json:"id"`
	Key           string              `json:"key"`
	Name          string              `json:"name"`
	Project       IDRef               `json:"project"`
	Priority      IDRef               `json:"priority"`
	Status        IDRef               `json:"status"`
	Objective     Opt[string]         `json:"objective,omitzero"`
	Precondition  Opt[string]         `json:"precondition,omitzero"`
	EstimatedTime Opt[int64]          `json:"estimatedTime,omitzero"`
	Labels        Opt[[]string]       `json:"labels,omitzero"`
	Component     Opt[IDRef]          `json:"component,omitzero"`
	Folder        Opt[IDRef]          `json:"folder,omitzero"`
	Owner         Opt[AccountRef]     `json:"owner,omitzero"`
	CustomFields  Opt[map[string]any] `json:"customFields,omitzero"`
}

// VersionRef points at one historical version of a test case.
type VersionRef struct {
	ID   int64       `json:"id"`
	Self Opt[string] `json:"self,omitzero"`
}

var (
	testCaseSchema = Output("TestCase",
		Integer("id").Required(),
		String("key").Required(),
		String("name").Required(),
		Object("project", refSchema).Required(),
		String("createdOn"),
		String("objective"),
		String("precondition"),
		Integer("estimatedTime"),
		StringList("labels"),
		Object("component", refSchema),
		Object("priority", refSchema).Required(),
		Object("status", refSchema).Required(),
		Object("folder", refSchema),
		Object("owner", ownerSchema),
		Object("testScript", selfRefSchema),
		Map("customFields"),
		Object("links", linksSchema),
	)
	testCasePageSchema = PageOf(testCaseSchema)

	versionRefSchema = Output("VersionRef",
		Integer("id").Required(),
		String("self"),
	)
	versionPageSchema = PageOf(versionRefSchema)

	createTestCaseInputSchema = Input("CreateTestCaseInput",
		projectKeyField("projectKey"),
		nameField(),
		String("objective"),
		String("precondition"),
		Integer("estimatedTime").AtLeast(0),
		Integer("componentId").AtLeast(0),
		String("priorityName").NotBlank().Length(1, MaxNameLength),
		String("statusName").NotBlank().Length(1, MaxNameLength),
		Integer("folderId").AtLeast(1),
		String("ownerId").NotBlank(),
		StringList("labels").NotBlank(),
		Map("customFields"),
	)
	testCaseUpdateSchema = Input("TestCaseUpdate",
		String("key").Required().Pattern(TestCaseKeyPattern, "a test case key like PROJ-T123"),
		String("name").NotBlank().Length(1, MaxNameLength),
		String("objective"),
		String("precondition"),
		Integer("estimatedTime").AtLeast(0),
		Integer("componentId").AtLeast(0),
		Integer("priorityId").AtLeast(1),
		Integer("statusId").AtLeast(1),
		Integer("folderId").AtLeast(1),
		String("ownerId").NotBlank(),
		StringList("labels").NotBlank(),
		Map("customFields"),
	)
	updateTestCaseInputSchema = Input("UpdateTestCaseInput",
		Integer("id").Required().AtLeast(1),
		String("key").Required().Pattern(TestCaseKeyPattern, "a test case key like PROJ-T123"),
		nameField(),
		Object("project", idRefInputSchema).Required(),
		Object("priority", idRefInputSchema).Required(),
		Object("status", idRefInputSchema).Required(),
		String("objective"),
		String("precondition"),
		Integer("estimatedTime").AtLeast(0),
		StringList("labels").NotBlank(),
		Object("component", Input("ComponentRef", Integer("id").Required().AtLeast(0))),
		Object("folder", idRefInputSchema),
		Object("owner", accountRefInputSchema),
		Map("customFields"),
	)
)

// TestCaseSchema describes a single test case response.
func TestCaseSchema() *Schema { return testCaseSchema }

// TestCasePageSchema describes GET /testcases.
func TestCasePageSchema() *Schema { return testCasePageSchema }

// VersionPageSchema describes GET /testcases/{key}/versions.
func VersionPageSchema() *Schema { return versionPageSchema }

func (in CreateTestCaseInput) Check() []FieldError { return createTestCaseInputSchema.CheckValue(in) }

func (u TestCaseUpdate) Check() []FieldError { return testCaseUpdateSchema.CheckValue(u) }

func (in UpdateTestCaseInput) Check() []FieldError { return updateTestCaseInputSchema.CheckValue(in) }

// Empty reports whether the update changes nothing.
func (u TestCaseUpdate) Empty() bool {
	return !u.Name.IsSet() && !u.Objective.IsSet() && !u.Precondition.IsSet() && !u.EstimatedTime.IsSet() &&
		!u.ComponentID.IsSet() && !u.PriorityID.IsSet() && !u.StatusID.IsSet() && !u.FolderID.IsSet() &&
		!u.OwnerID.IsSet() && !u.Labels.IsSet() && !u.CustomFields.IsSet()
}

// Apply returns a copy of tc with the members present in u replaced. Custom
// fields are merged key by key into a new map.
func (tc TestCase) Apply(u TestCaseUpdate) TestCase {
	out := tc
	out.Name = u.Name.OrElse(tc.Name)
	out.Objective = u.Objective.Or(tc.Objective)
	out.Precondition = u.Precondition.Or(tc.Precondition)
	out.EstimatedTime = u.EstimatedTime.Or(tc.EstimatedTime)
	if id, ok := u.ComponentID.Get(); ok {
		out.Component = Some(Ref{ID: id})
	}
	if id, ok := u.PriorityID.Get(); ok {
		out.Priority = Ref{ID: id}
	}
	if id, ok := u.StatusID.Get(); ok {
		out.Status = Ref{ID: id}
	}
	if id, ok := u.FolderID.Get(); ok {
		out.Folder = Some(Ref{ID: id})
	}
	if account, ok := u.OwnerID.Get(); ok {
		out.Owner = Some(Owner{AccountID: account})
	}
	if labels, ok := u.Labels.Get(); ok {
		out.Labels = Some(slices.Clone(labels))
	}
	out.CustomFields = mergeCustomFields(tc.CustomFields, u.CustomFields)
	return out
}

// UpdateInput renders tc as a PUT body.
func (tc TestCase) UpdateInput() UpdateTestCaseInput {
	in := UpdateTestCaseInput{
		ID:            tc.ID,
		Key:           tc.Key,
		Name:          tc.Name,
		Project:       IDRef{ID: tc.Project.ID},
		Priority:      IDRef{ID: tc.Priority.ID},
		Status:        IDRef{ID: tc.Status.ID},
		Objective:     tc.Objective,
		Precondition:  tc.Precondition,
		EstimatedTime: tc.EstimatedTime,
		Labels:        tc.Labels,
		CustomFields:  tc.CustomFields,
	}
	if c, ok := tc.Component.Get(); ok {
		in.Component = Some(IDRef{ID: c.ID})
	}
	if f, ok := tc.Folder.Get(); ok {
		in.Folder = Some(IDRef{ID: f.ID})
	}
	if o, ok := tc.Owner.Get(); ok {
		in.Owner = Some(AccountRef{AccountID: o.AccountID})
	}
	return in
}

func mergeCustomFields(current, patch Opt[map[string]any]) Opt[map[string]any] {
	add, ok := patch.Get()
	if !ok {
		return current
	}
	base, _ := current.Get()
	merged := make(map[string]any, len(base)+len(add))
	maps.Copy(merged, base)
	maps.Copy(merged, add)
	return Some(merged)
}
