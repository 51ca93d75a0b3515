package validate

import (
	"maps"
	"slices"
	"strings"

	"pkt.systems/zscale/api"
)

// clean trims surrounding whitespace and drops NUL bytes.
func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

func optString(p *string) api.Opt[string] {
	if p == nil {
		return api.None[string]()
	}
	return api.Some(clean(*p))
}

func optText(p *string) api.Opt[string] {
	if p == nil {
		return api.None[string]()
	}
	return api.Some(strings.ReplaceAll(*p, "\x00", ""))
}

func optLabels(labels []string) api.Opt[[]string] {
	if labels == nil {
		return api.None[[]string]()
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = clean(l)
	}
	return api.Some(out)
}

func optFields(fields map[string]any) api.Opt[map[string]any] {
	if fields == nil {
		return api.None[map[string]any]()
	}
	return api.Some(maps.Clone(fields))
}

// dropFields removes errors already reported under another name.
func dropFields(errs []api.FieldError, names ...string) []api.FieldError {
	return slices.DeleteFunc(slices.Clone(errs), func(fe api.FieldError) bool {
		return slices.Contains(names, fe.Field)
	})
}

func requireChange(c *collector, empty bool, fields ...string) {
	if empty {
		c.add("", "nothing to update: provide at least one of "+strings.Join(fields, ", "))
	}
}

// CreatePriorityArgs are the arguments of create_priority.
type CreatePriorityArgs struct {
	ProjectKey  string
	Name        string
	Description *string
	Color       *string
}

// CreatePriority validates and normalizes create_priority arguments.
func CreatePriority(a CreatePriorityArgs) Result[api.CreatePriorityInput] {
	in := api.CreatePriorityInput{
		ProjectKey:  clean(a.ProjectKey),
		Name:        clean(a.Name),
		Description: optText(a.Description),
		Color:       optString(a.Color),
	}
	return From(in, in.Check())
}

// UpdatePriorityArgs are the arguments of update_priority.
type UpdatePriorityArgs struct {
	ID          int64
	Name        *string
	Description *string
	Index       *int64
	Color       *string
	Default     *bool
}

// UpdatePriority validates update_priority arguments into a change set.
func UpdatePriority(a UpdatePriorityArgs) Result[api.PriorityUpdate] {
	var c collector
	checkID(&c, KindPriority, "priorityId", a.ID)
	u := api.PriorityUpdate{
		ID:          a.ID,
		Name:        optString(a.Name),
		Description: optText(a.Description),
		Index:       api.FromPtr(a.Index),
		Color:       optString(a.Color),
		Default:     api.FromPtr(a.Default),
	}
	c.merge(dropFields(u.Check(), "id"))
	requireChange(&c, u.Empty(), "name", "description", "index", "color", "default")
	return result(u, &c)
}

// CreateStatusArgs are the arguments of create_status.
type CreateStatusArgs struct {
	ProjectKey  string
	Name        string
	Type        string
	Description *string
	Color       *string
}

// CreateStatus validates and normalizes create_status arguments.
func CreateStatus(a CreateStatusArgs) Result[api.CreateStatusInput] {
	in := api.CreateStatusInput{
		ProjectKey:  clean(a.ProjectKey),
		Name:        clean(a.Name),
		Type:        clean(a.Type),
		Description: optText(a.Description),
		Color:       optString(a.Color),
	}
	return From(in, in.Check())
}

// UpdateStatusArgs are the arguments of update_status.
type UpdateStatusArgs struct {
	ID          int64
	Name        *string
	Description *string
	Index       *int64
	Color       *string
	Archived    *bool
	Default     *bool
}

// UpdateStatus validates update_status arguments into a change set.
func UpdateStatus(a UpdateStatusArgs) Result[api.StatusUpdate] {
	var c collector
	checkID(&c, KindStatus, "statusId", a.ID)
	u := api.StatusUpdate{
		ID:          a.ID,
		Name:        optString(a.Name),
		Description: optText(a.Description),
		Index:       api.FromPtr(a.Index),
		Color:       optString(a.Color),
		Archived:    api.FromPtr(a.Archived),
		Default:     api.FromPtr(a.Default),
	}
	c.merge(dropFields(u.Check(), "id"))
	requireChange(&c, u.Empty(), "name", "description", "index", "color", "archived", "default")
	return result(u, &c)
}

// CreateFolderArgs are the arguments of create_folder.
type CreateFolderArgs struct {
	ProjectKey string
	Name       string
	FolderType string
	ParentID   *int64
}

// CreateFolder validates and normalizes create_folder arguments.
func CreateFolder(a CreateFolderArgs) Result[api.CreateFolderInput] {
	in := api.CreateFolderInput{
		ProjectKey: clean(a.ProjectKey),
		Name:       clean(a.Name),
		FolderType: clean(a.FolderType),
		ParentID:   api.FromPtr(a.ParentID),
	}
	return From(in, in.Check())
}

// CreateTestCaseArgs are the arguments of create_test_case.
type CreateTestCaseArgs struct {
	ProjectKey    string
	Name          string
	Objective     *string
	Precondition  *string
	EstimatedTime *int64
	ComponentID   *int64
	PriorityName  *string
	StatusName    *string
	FolderID      *int64
	OwnerID       *string
	Labels        []string
	CustomFields  map[string]any
}

// CreateTestCase validates and normalizes create_test_case arguments.
func CreateTestCase(a CreateTestCaseArgs) Result[api.CreateTestCaseInput] {
	in := api.CreateTestCaseInput{
		ProjectKey:    clean(a.ProjectKey),
		Name:          clean(a.Name),
		Objective:     optText(a.Objective),
		Precondition:  optText(a.Precondition),
		EstimatedTime: api.FromPtr(a.EstimatedTime),
		ComponentID:   api.FromPtr(a.ComponentID),
		PriorityName:  optString(a.PriorityName),
		StatusName:    optString(a.StatusName),
		FolderID:      api.FromPtr(a.FolderID),
		OwnerID:       optString(a.OwnerID),
		Labels:        optLabels(a.Labels),
		CustomFields:  optFields(a.CustomFields),
	}
	return From(in, in.Check())
}

// UpdateTestCaseArgs are the arguments of update_test_case. A nil Labels or
// CustomFields leaves the current value alone.
type UpdateTestCaseArgs struct {
	Key           string
	Name          *string
	Objective     *string
	Precondition  *string
	EstimatedTime *int64
	ComponentID   *int64
	PriorityID    *int64
	StatusID      *int64
	FolderID      *int64
	OwnerID       *string
	Labels        []string
	CustomFields  map[string]any
}

// UpdateTestCase validates update_test_case arguments into a change set.
func UpdateTestCase(a UpdateTestCaseArgs) Result[api.TestCaseUpdate] {
	var c collector
	u := api.TestCaseUpdate{
		Key:           checkKey(&c, KindTestCase, KindTestCase.Field(), a.Key),
		Name:          optString(a.Name),
		Objective:     optText(a.Objective),
		Precondition:  optText(a.Precondition),
		EstimatedTime: api.FromPtr(a.EstimatedTime),
		ComponentID:   api.FromPtr(a.ComponentID),
		PriorityID:    api.FromPtr(a.PriorityID),
		StatusID:      api.FromPtr(a.StatusID),
		FolderID:      api.FromPtr(a.FolderID),
		OwnerID:       optString(a.OwnerID),
		Labels:        optLabels(a.Labels),
		CustomFields:  optFields(a.CustomFields),
	}
	c.merge(dropFields(u.Check(), "key"))
	requireChange(&c, u.Empty(), "name", "objective", "precondition", "estimatedTime", "componentId",
		"priorityId", "statusId", "folderId", "ownerId", "labels", "customFields")
	return result(u, &c)
}

// CreateTestCycleArgs are the arguments of create_test_cycle.
type CreateTestCycleArgs struct {
	ProjectKey         string
	Name               string
	Description        *string
	PlannedStartDate   *string
	PlannedEndDate     *string
	JiraProjectVersion *int64
	StatusName         *string
	FolderID           *int64
	OwnerID            *string
	CustomFields       map[string]any
}

// CreateTestCycle validates and normalizes create_test_cycle arguments.
func CreateTestCycle(a CreateTestCycleArgs) Result[api.CreateTestCycleInput] {
	in := api.CreateTestCycleInput{
		ProjectKey:         clean(a.ProjectKey),
		Name:               clean(a.Name),
		Description:        optText(a.Description),
		PlannedStartDate:   optString(a.PlannedStartDate),
		PlannedEndDate:     optString(a.PlannedEndDate),
		JiraProjectVersion: api.FromPtr(a.JiraProjectVersion),
		StatusName:         optString(a.StatusName),
		FolderID:           api.FromPtr(a.FolderID),
		OwnerID:            optString(a.OwnerID),
		CustomFields:       optFields(a.CustomFields),
	}
	return From(in, in.Check())
}

// UpdateTestCycleArgs are the arguments of update_test_cycle.
type UpdateTestCycleArgs struct {
	Key                string
	Name               *string
	Description        *string
	PlannedStartDate   *string
	PlannedEndDate     *string
	JiraProjectVersion *int64
	StatusID           *int64
	FolderID           *int64
	OwnerID            *string
	CustomFields       map[string]any
}

// UpdateTestCycle validates update_test_cycle arguments into a change set.
func UpdateTestCycle(a UpdateTestCycleArgs) Result[api.TestCycleUpdate] {
	var c collector
	u := api.TestCycleUpdate{
		Key:                checkKey(&c, KindTestCycle, KindTestCycle.Field(), a.Key),
		Name:               optString(a.Name),
		Description:        optText(a.Description),
		PlannedStartDate:   optString(a.PlannedStartDate),
		PlannedEndDate:     optString(a.PlannedEndDate),
		JiraProjectVersion: api.FromPtr(a.JiraProjectVersion),
		StatusID:           api.FromPtr(a.StatusID),
		FolderID:           api.FromPtr(a.FolderID),
		OwnerID:            optString(a.OwnerID),
		CustomFields:       optFields(a.CustomFields),
	}
	c.merge(dropFields(u.Check(), "key"))
	requireChange(&c, u.Empty(), "name", "description", "plannedStartDate", "plannedEndDate",
		"jiraProjectVersion", "statusId", "folderId", "ownerId", "customFields")
	return result(u, &c)
}

// CreateTestPlanArgs are the arguments of create_test_plan.
type CreateTestPlanArgs struct {
	ProjectKey   string
	Name         string
	Objective    *string
	FolderID     *int64
	StatusName   *string
	OwnerID      *string
	Labels       []string
	CustomFields map[string]any
}

// CreateTestPlan validates and normalizes create_test_plan arguments.
func CreateTestPlan(a CreateTestPlanArgs) Result[api.CreateTestPlanInput] {
	in := api.CreateTestPlanInput{
		ProjectKey:   clean(a.ProjectKey),
		Name:         clean(a.Name),
		Objective:    optText(a.Objective),
		FolderID:     api.FromPtr(a.FolderID),
		StatusName:   optString(a.StatusName),
		OwnerID:      optString(a.OwnerID),
		Labels:       optLabels(a.Labels),
		CustomFields: optFields(a.CustomFields),
	}
	return From(in, in.Check())
}
