package api

// Folder types accepted by the folders endpoints.
const (
	FolderTypeTestCase  = "TEST_CASE"
	FolderTypeTestPlan  = "TEST_PLAN"
	FolderTypeTestCycle = "TEST_CYCLE"
)

// FolderTypes lists every folder type.
var FolderTypes = []string{FolderTypeTestCase, FolderTypeTestPlan, FolderTypeTestCycle}

// Folder groups test cases, plans or cycles in a tree.
type Folder struct {
	// ID is the numeric folder id.
	ID int64 `json:"id"`
	// ParentID is absent for root folders.
	ParentID Opt[int64] `json:"parentId,omitzero"`
	// Name is the folder name.
	Name string `json:"name"`
	// Index is the position among siblings.
	Index int64 `json:"index"`
	// FolderType is the kind of entity the folder holds.
	FolderType string `json:"folderType"`
	// Project references the owning project when the service includes it.
	Project Opt[Ref] `json:"project,omitzero"`
}

// CreateFolderInput models POST /folders.
type CreateFolderInput struct {
	ParentID   Opt[int64] `json:"parentId,omitzero"`
	Name       string     `json:"name"`
	ProjectKey string     `json:"projectKey,omitempty"`
	FolderType string     `json:"folderType"`
}

var (
	folderSchema = Output("Folder",
		Integer("id").Required(),
		Integer("parentId"),
		String("name").Required(),
		Integer("index").Required(),
		String("folderType").Required(),
		Object("project", refSchema),
	)
	folderPageSchema = PageOf(folderSchema)

	createFolderInputSchema = Input("CreateFolderInput",
		Integer("parentId").AtLeast(1),
		nameField(),
		projectKeyField("projectKey"),
		Enum("folderType", FolderTypes...).Required(),
	)
)

// FolderSchema describes a single folder response.
func FolderSchema() *Schema { return folderSchema }

// FolderPageSchema describes GET /folders.
func FolderPageSchema() *Schema { return folderPageSchema }

func (in CreateFolderInput) Check() []FieldError { return createFolderInputSchema.CheckValue(in) }
