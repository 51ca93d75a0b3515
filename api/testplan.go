package api

// TestPlan models a test plan as returned by GET /testplans/{key}.
type TestPlan struct {
	ID           int64               `json:"id"`
	Key          string              `json:"key"`
	Name         string              `json:"name"`
	Project      Ref                 `json:"project"`
	Status       Ref                 `json:"status"`
	Folder       Opt[Ref]            `json:"folder,omitzero"`
	Objective    Opt[string]         `json:"objective,omitzero"`
	Owner        Opt[Owner]          `json:"owner,omitzero"`
	Labels       Opt[[]string]       `json:"labels,omitzero"`
	CustomFields Opt[map[string]any] `json:"customFields,omitzero"`
	Links        Opt[Links]          `json:"links,omitzero"`
}

// CreateTestPlanInput models POST /testplans.
type CreateTestPlanInput struct {
	ProjectKey   string              `json:"projectKey,omitempty"`
	Name         string              `json:"name"`
	Objective    Opt[string]         `json:"objective,omitzero"`
	FolderID     Opt[int64]          `json:"folderId,omitzero"`
	StatusName   Opt[string]         `json:"statusName,omitzero"`
	OwnerID      Opt[string]         `json:"ownerId,omitzero"`
	Labels       Opt[[]string]       `json:"labels,omitzero"`
	CustomFields Opt[map[string]any] `json:"customFields,omitzero"`
}

var (
	testPlanSchema = Output("TestPlan",
		Integer("id").Required(),
		String("key").Required(),
		String("name").Required(),
		Object("project", refSchema).Required(),
		Object("status", refSchema).Required(),
		Object("folder", refSchema),
		String("objective"),
		Object("owner", ownerSchema),
		StringList("labels"),
		Map("customFields"),
		Object("links", linksSchema),
	)
	testPlanPageSchema = PageOf(testPlanSchema)

	createTestPlanInputSchema = Input("CreateTestPlanInput",
		projectKeyField("projectKey"),
		nameField(),
		String("objective"),
		Integer("folderId").AtLeast(1),
		String("statusName").NotBlank().Length(1, MaxNameLength),
		String("ownerId").NotBlank(),
		StringList("labels").NotBlank(),
		Map("customFields"),
	)
)

// TestPlanSchema describes a single test plan response.
func TestPlanSchema() *Schema { return testPlanSchema }

// TestPlanPageSchema describes GET /testplans.
func TestPlanPageSchema() *Schema { return testPlanPageSchema }

func (in CreateTestPlanInput) Check() []FieldError { return createTestPlanInputSchema.CheckValue(in) }
