package api

import "regexp"

// Link types reported by the service.
const (
	LinkTypeCoverage = "COVERAGE"
	LinkTypeBlocks   = "BLOCKS"
	LinkTypeRelated  = "RELATED"
)

// LinkTypes lists every link type.
var LinkTypes = []string{LinkTypeCoverage, LinkTypeBlocks, LinkTypeRelated}

// WebURLPattern is the loose shape check applied to web link URLs before a
// full parse.
var WebURLPattern = regexp.MustCompile(`^https?://\S+$`)

// IssueLink associates an entity with a Jira issue.
type IssueLink struct {
	ID      Opt[int64]  `json:"id,omitzero"`
	Self    Opt[string] `json:"self,omitzero"`
	IssueID int64       `json:"issueId"`
	Target  Opt[string] `json:"target,omitzero"`
	Type    Opt[string] `json:"type,omitzero"`
}

// WebLink associates an entity with an arbitrary URL.
type WebLink struct {
	ID          Opt[int64]  `json:"id,omitzero"`
	Self        Opt[string] `json:"self,omitzero"`
	Description Opt[string] `json:"description,omitzero"`
	URL         string      `json:"url"`
	Type        Opt[string] `json:"type,omitzero"`
}

// TestCycleLink associates a test plan with a test cycle.
type TestCycleLink struct {
	ID          Opt[int64]  `json:"id,omitzero"`
	Self        Opt[string] `json:"self,omitzero"`
	TestCycleID int64       `json:"testCycleId"`
	Type        Opt[string] `json:"type,omitzero"`
	Target      Opt[string] `json:"target,omitzero"`
}

// TestPlanLink associates a test cycle with a test plan.
type TestPlanLink struct {
	ID         Opt[int64]  `json:"id,omitzero"`
	Self       Opt[string] `json:"self,omitzero"`
	TestPlanID int64       `json:"testPlanId"`
	Type       Opt[string] `json:"type,omitzero"`
	Target     Opt[string] `json:"target,omitzero"`
}

// Links is the link collection embedded in test cases, cycles and plans and
// returned by the /links endpoints.
type Links struct {
	Self       Opt[string]     `json:"self,omitzero"`
	Issues     []IssueLink     `json:"issues,omitempty"`
	WebLinks   []WebLink       `json:"webLinks,omitempty"`
	TestCycles []TestCycleLink `json:"testCycles,omitempty"`
	TestPlans  []TestPlanLink  `json:"testPlans,omitempty"`
}

// Count returns the number of links of every kind.
func (l Links) Count() int {
	return len(l.Issues) + len(l.WebLinks) + len(l.TestCycles) + len(l.TestPlans)
}

// IssueLinkInput models POST .../links/issues.
type IssueLinkInput struct {
	IssueID int64 `json:"issueId"`
}

// WebLinkInput models POST .../links/weblinks. DescriptionRequired is not
// sent; it selects the rule set of the parent entity.
type WebLinkInput struct {
	URL                 string      `json:"url"`
	Description         Opt[string] `json:"description,omitzero"`
	DescriptionRequired bool        `json:"-"`
}

// TestCycleLinkInput models POST /testplans/{key}/links/testcycles.
type TestCycleLinkInput struct {
	TestCycleIDOrKey string `json:"testCycleIdOrKey"`
}

var (
	issueLinkSchema = Output("IssueLink",
		Integer("id"),
		String("self"),
		Integer("issueId").Required(),
		String("target"),
		String("type"),
	)
	webLinkSchema = Output("WebLink",
		Integer("id"),
		String("self"),
		String("description"),
		String("url").Required(),
		String("type"),
	)
	testCycleLinkSchema = Output("TestCycleLink",
		Integer("id"),
		String("self"),
		Integer("testCycleId").Required(),
		String("type"),
		String("target"),
	)
	testPlanLinkSchema = Output("TestPlanLink",
		Integer("id"),
		String("self"),
		Integer("testPlanId").Required(),
		String("type"),
		String("target"),
	)
	linksSchema = Output("Links",
		String("self"),
		ObjectList("issues", issueLinkSchema),
		ObjectList("webLinks", webLinkSchema),
		ObjectList("testCycles", testCycleLinkSchema),
		ObjectList("testPlans", testPlanLinkSchema),
	)

	issueLinkInputSchema = Input("IssueLinkInput",
		Integer("issueId").Required().AtLeast(1),
	)
	webLinkInputSchema = Input("WebLinkInput",
		String("url").Required().NotBlank().Pattern(WebURLPattern, "an http(s) URL"),
		descriptionField("description"),
	)
	describedWebLinkInputSchema = Input("DescribedWebLinkInput",
		String("url").Required().NotBlank().Pattern(WebURLPattern, "an http(s) URL"),
		descriptionField("description").Required().NotBlank(),
	)
	testCycleLinkInputSchema = Input("TestCycleLinkInput",
		String("testCycleIdOrKey").Required().NotBlank(),
	)
)

// LinksSchema describes GET .../links.
func LinksSchema() *Schema { return linksSchema }

func (in IssueLinkInput) Check() []FieldError { return issueLinkInputSchema.CheckValue(in) }

func (in WebLinkInput) Check() []FieldError {
	if in.DescriptionRequired {
		return describedWebLinkInputSchema.CheckValue(in)
	}
	return webLinkInputSchema.CheckValue(in)
}

func (in TestCycleLinkInput) Check() []FieldError { return testCycleLinkInputSchema.CheckValue(in) }
