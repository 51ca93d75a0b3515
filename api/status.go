package api

// Status types accepted by the statuses endpoints.
const (
	StatusTypeTestCase      = "TEST_CASE"
	StatusTypeTestPlan      = "TEST_PLAN"
	StatusTypeTestCycle     = "TEST_CYCLE"
	StatusTypeTestExecution = "TEST_EXECUTION"
)

// StatusTypes lists every status type in documentation order.
var StatusTypes = []string{StatusTypeTestCase, StatusTypeTestPlan, StatusTypeTestCycle, StatusTypeTestExecution}

// Status models a workflow status of a test case, plan, cycle or execution.
type Status struct {
	// ID is the numeric status id.
	ID int64 `json:"id"`
	// Project references the owning Jira project.
	Project Ref `json:"project"`
	// Name is the display name.
	Name string `json:"name"`
	// Description is optional free text.
	Description Opt[string] `json:"description,omitzero"`
	// Index is the zero-based display position.
	Index int64 `json:"index"`
	// Color is a hex color such as #00FF00.
	Color Opt[string] `json:"color,omitzero"`
	// Archived hides the status from new assignments.
	Archived bool `json:"archived"`
	// Default marks the status assigned to new entities.
	Default bool `json:"default"`
}

// CreateStatusInput models POST /statuses.
type CreateStatusInput struct {
	ProjectKey  string      `json:"projectKey,omitempty"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Description Opt[string] `json:"description,omitzero"`
	Color       Opt[string] `json:"color,omitzero"`
}

// StatusUpdate is a validated partial change to one status.
type StatusUpdate struct {
	ID          int64       `json:"id"`
	Name        Opt[string] `json:"name,omitzero"`
	Description Opt[string] `json:"description,omitzero"`
	Index       Opt[int64]  `json:"index,omitzero"`
	Color       Opt[string] `json:"color,omitzero"`
	Archived    Opt[bool]   `json:"archived,omitzero"`
	Default     Opt[bool]   `json:"default,omitzero"`
}

// UpdateStatusInput models the full body of PUT /statuses/{id}.
type UpdateStatusInput struct {
	ID          int64       `json:"id"`
	Project     IDRef       `json:"project"`
	Name        string      `json:"name"`
	Description Opt[string] `json:"description,omitzero"`
	Index       int64       `json:"index"`
	Color       Opt[string] `json:"color,omitzero"`
	Archived    bool        `json:"archived"`
	Default     bool        `json:"default"`
}

var (
	statusSchema = Output("Status",
		Integer("id").Required(),
		Object("project", refSchema).Required(),
		String("name").Required(),
		String("description"),
		Integer("index").Required(),
		String("color"),
		Boolean("archived").Required(),
		Boolean("default").Required(),
	)
	statusPageSchema = PageOf(statusSchema)

	createStatusInputSchema = Input("CreateStatusInput",
		projectKeyField("projectKey"),
		nameField(),
		Enum("type", StatusTypes...).Required(),
		descriptionField("description"),
		colorField(),
	)
	statusUpdateSchema = Input("StatusUpdate",
		Integer("id").Required().AtLeast(1),
		String("name").NotBlank().Length(1, MaxNameLength),
		descriptionField("description"),
		Integer("index").AtLeast(0),
		colorField(),
		Boolean("archived"),
		Boolean("default"),
	)
	updateStatusInputSchema = Input("UpdateStatusInput",
		Integer("id").Required().AtLeast(1),
		Object("project", idRefInputSchema).Required(),
		nameField(),
		descriptionField("description"),
		Integer("index").Required().AtLeast(0),
		colorField(),
		Boolean("archived").Required(),
		Boolean("default").Required(),
	)
)

// StatusSchema describes a single status response.
func StatusSchema() *Schema { return statusSchema }

// StatusPageSchema describes GET /statuses.
func StatusPageSchema() *Schema { return statusPageSchema }

func (in CreateStatusInput) Check() []FieldError { return createStatusInputSchema.CheckValue(in) }

func (u StatusUpdate) Check() []FieldError { return statusUpdateSchema.CheckValue(u) }

func (in UpdateStatusInput) Check() []FieldError { return updateStatusInputSchema.CheckValue(in) }

// Empty reports whether the update changes nothing.
func (u StatusUpdate) Empty() bool {
	return !u.Name.IsSet() && !u.Description.IsSet() && !u.Index.IsSet() && !u.Color.IsSet() &&
		!u.Archived.IsSet() && !u.Default.IsSet()
}

// Apply returns a copy of s with the members present in u replaced.
func (s Status) Apply(u StatusUpdate) Status {
	out := s
	out.Name = u.Name.OrElse(s.Name)
	out.Description = u.Description.Or(s.Description)
	out.Index = u.Index.OrElse(s.Index)
	out.Color = u.Color.Or(s.Color)
	out.Archived = u.Archived.OrElse(s.Archived)
	out.Default = u.Default.OrElse(s.Default)
	return out
}

// UpdateInput renders s as a PUT body.
func (s Status) UpdateInput() UpdateStatusInput {
	return UpdateStatusInput{
		ID:          s.ID,
		Project:     IDRef{ID: s.Project.ID},
		Name:        s.Name,
		Description: s.Description,
		Index:       s.Index,
		Color:       s.Color,
		Archived:    s.Archived,
		Default:     s.Default,
	}
}
