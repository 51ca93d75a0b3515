package api

// Priority models a test case priority.
type Priority struct {
	// ID is the numeric priority id.
	ID int64 `json:"id"`
	// Project references the owning Jira project.
	Project Ref `json:"project"`
	// Name is the display name, unique per project.
	Name string `json:"name"`
	// Description is optional free text.
	Description Opt[string] `json:"description,omitzero"`
	// Index is the zero-based display position.
	Index int64 `json:"index"`
	// Color is a hex color such as #FF0000.
	Color Opt[string] `json:"color,omitzero"`
	// Default marks the priority assigned to new test cases.
	Default bool `json:"default"`
}

// CreatePriorityInput models POST /priorities.
type CreatePriorityInput struct {
	// ProjectKey is resolved against the configured default when empty.
	ProjectKey  string      `json:"projectKey,omitempty"`
	Name        string      `json:"name"`
	Description Opt[string] `json:"description,omitzero"`
	Color       Opt[string] `json:"color,omitzero"`
}

// PriorityUpdate is a validated partial change to one priority. Absent
// members keep their current value.
type PriorityUpdate struct {
	ID          int64       `json:"id"`
	Name        Opt[string] `json:"name,omitzero"`
	Description Opt[string] `json:"description,omitzero"`
	Index       Opt[int64]  `json:"index,omitzero"`
	Color       Opt[string] `json:"color,omitzero"`
	Default     Opt[bool]   `json:"default,omitzero"`
}

// UpdatePriorityInput models the full body of PUT /priorities/{id}.
type UpdatePriorityInput struct {
	ID          int64       `json:"id"`
	Project     IDRef       `json:"project"`
	Name        string      `json:"name"`
	Description Opt[string] `json:"description,omitzero"`
	Index       int64       `json:"index"`
	Color       Opt[string] `json:"color,omitzero"`
	Default     bool        `json:"default"`
}

var (
	prioritySchema = Output("Priority",
		Integer("id").Required(),
		Object("project", refSchema).Required(),
		String("name").Required(),
		String("description"),
		Integer("index").Required(),
		String("color"),
		Boolean("default").Required(),
	)
	priorityPageSchema = PageOf(prioritySchema)

	createPriorityInputSchema = Input("CreatePriorityInput",
		projectKeyField("projectKey"),
		nameField(),
		descriptionField("description"),
		colorField(),
	)
	priorityUpdateSchema = Input("PriorityUpdate",
		Integer("id").Required().AtLeast(1),
		String("name").NotBlank().Length(1, MaxNameLength),
		descriptionField("description"),
		Integer("index").AtLeast(0),
		colorField(),
		Boolean("default"),
	)
	updatePriorityInputSchema = Input("UpdatePriorityInput",
		Integer("id").Required().AtLeast(1),
		Object("project", idRefInputSchema).Required(),
		nameField(),
		descriptionField("description"),
		Integer("index").Required().AtLeast(0),
		colorField(),
		Boolean("default").Required(),
	)
)

// PrioritySchema describes a single priority response.
func PrioritySchema() *Schema { return prioritySchema }

// PriorityPageSchema describes GET /priorities.
func PriorityPageSchema() *Schema { return priorityPageSchema }

// Check validates the create body.
func (in CreatePriorityInput) Check() []FieldError { return createPriorityInputSchema.CheckValue(in) }

// Check validates the partial change.
func (u PriorityUpdate) Check() []FieldError { return priorityUpdateSchema.CheckValue(u) }

// Check validates the PUT body.
func (in UpdatePriorityInput) Check() []FieldError { return updatePriorityInputSchema.CheckValue(in) }

// Empty reports whether the update changes nothing.
func (u PriorityUpdate) Empty() bool {
	return !u.Name.IsSet() && !u.Description.IsSet() && !u.Index.IsSet() && !u.Color.IsSet() && !u.Default.IsSet()
}

// Apply returns a copy of p with the members present in u replaced.
func (p Priority) Apply(u PriorityUpdate) Priority {
	out := p
	out.Name = u.Name.OrElse(p.Name)
	out.Description = u.Description.Or(p.Description)
	out.Index = u.Index.OrElse(p.Index)
	out.Color = u.Color.Or(p.Color)
	out.Default = u.Default.OrElse(p.Default)
	return out
}

// UpdateInput renders p as a PUT body.
func (p Priority) UpdateInput() UpdatePriorityInput {
	return UpdatePriorityInput{
		ID:          p.ID,
		Project:     IDRef{ID: p.Project.ID},
		Name:        p.Name,
		Description: p.Description,
		Index:       p.Index,
		Color:       p.Color,
		Default:     p.Default,
	}
}
