package api

import "time"

// TestCycle models a test cycle (test run) as returned by GET /testcycles/{key}.
type TestCycle struct {
	ID                 int64               `json:"id"`
	Key                string              `json:"key"`
	Name               string              `json:"name"`
	Project            Ref                 `json:"project"`
	JiraProjectVersion Opt[Ref]            `json:"jiraProjectVersion,omitzero"`
	Status             Ref                 `json:"status"`
	Folder             Opt[Ref]            `json:"folder,omitzero"`
	Description        Opt[string]         `json:"description,omitzero"`
	PlannedStartDate   Opt[string]         `json:"plannedStartDate,omitzero"`
	PlannedEndDate     Opt[string]         `json:"plannedEndDate,omitzero"`
	Owner              Opt[Owner]          `json:"owner,omitzero"`
	CustomFields       Opt[map[string]any] `json:"customFields,omitzero"`
	Links              Opt[Links]          `json:"links,omitzero"`
}

// CreateTestCycleInput models POST /testcycles.
type CreateTestCycleInput struct {
	ProjectKey         string              `json:"projectKey,omitempty"`
	Name               string              `json:"name"`
	Description        Opt[string]         `json:"description,omitzero"`
	PlannedStartDate   Opt[string]         `json:"plannedStartDate,omitzero"`
	PlannedEndDate     Opt[string]         `json:"plannedEndDate,omitzero"`
	JiraProjectVersion Opt[int64]          `json:"jiraProjectVersion,omitzero"`
	StatusName         Opt[string]         `json:"statusName,omitzero"`
	FolderID           Opt[int64]          `json:"folderId,omitzero"`
	OwnerID            Opt[string]         `json:"ownerId,omitzero"`
	CustomFields       Opt[map[string]any] `json:"customFields,omitzero"`
}

// TestCycleUpdate is a validated partial change to one test cycle.
type TestCycleUpdate struct {
	Key                string              `json:"key"`
	Name               Opt[string]         `json:"name,omitzero"`
	Description        Opt[string]         `json:"description,omitzero"`
	PlannedStartDate   Opt[string]         `json:"plannedStartDate,omitzero"`
	PlannedEndDate     Opt[string]         `json:"plannedEndDate,omitzero"`
	JiraProjectVersion Opt[int64]          `json:"jiraProjectVersion,omitzero"`
	StatusID           Opt[int64]          `json:"statusId,omitzero"`
	FolderID           Opt[int64]          `json:"folderId,omitzero"`
	OwnerID            Opt[string]         `json:"ownerId,omitzero"`
	CustomFields       Opt[map[string]any] `json:"customFields,omitzero"`
}

// UpdateTestCycleInput models the full body of PUT /testcycles/{key}.
type UpdateTestCycleInput struct {
	ID                 int64               `json:"id"`
	Key                string              `json:"key"`
	Name               string              `json:"name"`
	Project            IDRef               `json:"project"`
	Status             IDRef               `json:"status"`
	JiraProjectVersion Opt[IDRef]          `json:"jiraProjectVersion,omitzero"`
	Folder             Opt[IDRef]          `json:"folder,omitzero"`
	Description        Opt[string]         `json:"description,omitzero"`
	PlannedStartDate   Opt[string]         `json:"plannedStartDate,omitzero"`
	PlannedEndDate     Opt[string]         `json:"plannedEndDate,omitzero"`
	Owner              Opt[AccountRef]     `json:"owner,omitzero"`
	CustomFields       Opt[map[string]any] `json:"customFields,omitzero"`
}

const testCycleKeyHint = "a test cycle key like PROJ-R123"

var (
	testCycleSchema = Output("TestCycle",
		Integer("id").Required(),
		String("key").Required(),
		String("name").Required(),
		Object("project", refSchema).Required(),
		Object("jiraProjectVersion", refSchema),
		Object("status", refSchema).Required(),
		Object("folder", refSchema),
		String("description"),
		String("plannedStartDate"),
		String("plannedEndDate"),
		Object("owner", ownerSchema),
		Map("customFields"),
		Object("links", linksSchema),
	)
	testCyclePageSchema = PageOf(testCycleSchema)

	createTestCycleInputSchema = Input("CreateTestCycleInput",
		projectKeyField("projectKey"),
		nameField(),
		String("description"),
		String("plannedStartDate"),
		String("plannedEndDate"),
		Integer("jiraProjectVersion").AtLeast(1),
		String("statusName").NotBlank().Length(1, MaxNameLength),
		Integer("folderId").AtLeast(1),
		String("ownerId").NotBlank(),
		Map("customFields"),
	)
	testCycleUpdateSchema = Input("TestCycleUpdate",
		String("key").Required().Pattern(TestCycleKeyPattern, testCycleKeyHint),
		String("name").NotBlank().Length(1, MaxNameLength),
		String("description"),
		String("plannedStartDate"),
		String("plannedEndDate"),
		Integer("jiraProjectVersion").AtLeast(1),
		Integer("statusId").AtLeast(1),
		Integer("folderId").AtLeast(1),
		String("ownerId").NotBlank(),
		Map("customFields"),
	)
	updateTestCycleInputSchema = Input("UpdateTestCycleInput",
		Integer("id").Required().AtLeast(1),
		String("key").Required().Pattern(TestCycleKeyPattern, testCycleKeyHint),
		nameField(),
		Object("project", idRefInputSchema).Required(),
		Object("status", idRefInputSchema).Required(),
		Object("jiraProjectVersion", idRefInputSchema),
		Object("folder", idRefInputSchema),
		String("description"),
		String("plannedStartDate"),
		String("plannedEndDate"),
		Object("owner", accountRefInputSchema),
		Map("customFields"),
	)
)

// TestCycleSchema describes a single test cycle response.
func TestCycleSchema() *Schema { return testCycleSchema }

// TestCyclePageSchema describes GET /testcycles.
func TestCyclePageSchema() *Schema { return testCyclePageSchema }

func (in CreateTestCycleInput) Check() []FieldError {
	errs := createTestCycleInputSchema.CheckValue(in)
	return checkPlannedWindow(in.PlannedStartDate, in.PlannedEndDate, errs)
}

func (u TestCycleUpdate) Check() []FieldError {
	errs := testCycleUpdateSchema.CheckValue(u)
	return checkPlannedWindow(u.PlannedStartDate, u.PlannedEndDate, errs)
}

func (in UpdateTestCycleInput) Check() []FieldError {
	errs := updateTestCycleInputSchema.CheckValue(in)
	return checkPlannedWindow(in.PlannedStartDate, in.PlannedEndDate, errs)
}

// Empty reports whether the update changes nothing.
func (u TestCycleUpdate) Empty() bool {
	return !u.Name.IsSet() && !u.Description.IsSet() && !u.PlannedStartDate.IsSet() && !u.PlannedEndDate.IsSet() &&
		!u.JiraProjectVersion.IsSet() && !u.StatusID.IsSet() && !u.FolderID.IsSet() && !u.OwnerID.IsSet() &&
		!u.CustomFields.IsSet()
}

// Apply returns a copy of tc with the members present in u replaced.
func (tc TestCycle) Apply(u TestCycleUpdate) TestCycle {
	out := tc
	out.Name = u.Name.OrElse(tc.Name)
	out.Description = u.Description.Or(tc.Description)
	out.PlannedStartDate = u.PlannedStartDate.Or(tc.PlannedStartDate)
	out.PlannedEndDate = u.PlannedEndDate.Or(tc.PlannedEndDate)
	if id, ok := u.JiraProjectVersion.Get(); ok {
		out.JiraProjectVersion = Some(Ref{ID: id})
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
	out.CustomFields = mergeCustomFields(tc.CustomFields, u.CustomFields)
	return out
}

// UpdateInput renders tc as a PUT body.
func (tc TestCycle) UpdateInput() UpdateTestCycleInput {
	in := UpdateTestCycleInput{
		ID:               tc.ID,
		Key:              tc.Key,
		Name:             tc.Name,
		Project:          IDRef{ID: tc.Project.ID},
		Status:           IDRef{ID: tc.Status.ID},
		Description:      tc.Description,
		PlannedStartDate: tc.PlannedStartDate,
		PlannedEndDate:   tc.PlannedEndDate,
		CustomFields:     tc.CustomFields,
	}
	if v, ok := tc.JiraProjectVersion.Get(); ok {
		in.JiraProjectVersion = Some(IDRef{ID: v.ID})
	}
	if f, ok := tc.Folder.Get(); ok {
		in.Folder = Some(IDRef{ID: f.ID})
	}
	if o, ok := tc.Owner.Get(); ok {
		in.Owner = Some(AccountRef{AccountID: o.AccountID})
	}
	return in
}

// checkPlannedWindow requires RFC 3339 timestamps and an end that does not
// precede the start.
func checkPlannedWindow(start, end Opt[string], errs []FieldError) []FieldError {
	parse := func(field string, v Opt[string]) (time.Time, bool) {
		s, ok := v.Get()
		if !ok {
			return time.Time{}, false
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			errs = append(errs, FieldError{Field: field, Message: "must be an RFC 3339 timestamp like 2024-05-01T09:00:00Z (got " + quote(s) + ")"})
			return time.Time{}, false
		}
		return t, true
	}
	from, okFrom := parse("plannedStartDate", start)
	to, okTo := parse("plannedEndDate", end)
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, FieldError{Field: "plannedEndDate", Message: "must not be before plannedStartDate"})
	}
	return errs
}
