package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"

	"pkt.systems/zscale/api"
)

// LinkKind names what a link points at.
type LinkKind string

// Link kinds.
const (
	LinkIssue     LinkKind = "issue"
	LinkWeb       LinkKind = "web"
	LinkTestCycle LinkKind = "test_cycle"
)

type linkRule struct {
	descriptionRequired bool
}

// linkRules lists the link kinds each parent kind supports. Test plan web
// links are the only ones that require a description.
var linkRules = map[Kind]map[LinkKind]linkRule{
	KindTestCase: {
		LinkIssue: {},
		LinkWeb:   {},
	},
	KindTestCycle: {
		LinkIssue: {},
		LinkWeb:   {},
	},
	KindTestPlan: {
		LinkIssue:     {},
		LinkWeb:       {descriptionRequired: true},
		LinkTestCycle: {},
	},
}

// DescriptionRequired reports whether web links on kind need a description.
func DescriptionRequired(kind Kind) bool {
	return linkRules[kind][LinkWeb].descriptionRequired
}

// LinkArgs carry the arguments of every create_*_link operation. IssueID
// accepts a JSON number or a string of digits.
type LinkArgs struct {
	Key              string
	IssueID          any
	URL              string
	Description      *string
	TestCycleIDOrKey string
}

// LinkRequest is a canonical link creation: exactly one body is set and it
// matches Kind.
type LinkRequest struct {
	Entity    Kind                            `json:"entity"`
	Kind      LinkKind                        `json:"kind"`
	Key       string                          `json:"key"`
	Issue     api.Opt[api.IssueLinkInput]     `json:"issue,omitzero"`
	Web       api.Opt[api.WebLinkInput]       `json:"web,omitzero"`
	TestCycle api.Opt[api.TestCycleLinkInput] `json:"testCycle,omitzero"`
}

// Body returns the request body for the link kind.
func (r LinkRequest) Body() any {
	switch r.Kind {
	case LinkIssue:
		v, _ := r.Issue.Get()
		return v
	case LinkWeb:
		v, _ := r.Web.Get()
		return v
	case LinkTestCycle:
		v, _ := r.TestCycle.Get()
		return v
	}
	return nil
}

// Check validates the request against the link rule table.
func (r LinkRequest) Check() []api.FieldError {
	var c collector
	rule, ok := checkLinkKind(&c, r.Entity, r.Kind)
	if !ok {
		return c.errs
	}
	checkKey(&c, r.Entity, r.Entity.Field(), r.Key)
	set := 0
	for _, present := range []bool{r.Issue.IsSet(), r.Web.IsSet(), r.TestCycle.IsSet()} {
		if present {
			set++
		}
	}
	if set != 1 {
		c.add("", fmt.Sprintf("exactly one link body must be set (got %d)", set))
		return c.errs
	}
	switch r.Kind {
	case LinkIssue:
		in, ok := r.Issue.Get()
		if !ok {
			c.add("issueId", "is required")
			break
		}
		c.merge(in.Check())
	case LinkWeb:
		in, ok := r.Web.Get()
		if !ok {
			c.add("url", "is required")
			break
		}
		if in.DescriptionRequired != rule.descriptionRequired {
			c.add("description", "description rule does not match the parent kind")
		}
		c.merge(in.Check())
	case LinkTestCycle:
		in, ok := r.TestCycle.Get()
		if !ok {
			c.add("testCycleIdOrKey", "is required")
			break
		}
		checkTestCycleRef(&c, in.TestCycleIDOrKey)
	}
	return c.errs
}

func checkLinkKind(c *collector, entity Kind, kind LinkKind) (linkRule, bool) {
	rules, ok := linkRules[entity]
	if !ok {
		c.add("entity", fmt.Sprintf("%s entities do not carry links", entity.Noun()))
		return linkRule{}, false
	}
	rule, ok := rules[kind]
	if !ok {
		c.add("kind", fmt.Sprintf("%s links are not supported on a %s", kind, entity.Noun()))
		return linkRule{}, false
	}
	return rule, true
}

// Link validates link creation arguments for one parent kind and link kind.
// Arguments belonging to a different link kind are rejected rather than
// ignored.
func Link(entity Kind, kind LinkKind, a LinkArgs) Result[LinkRequest] {
	var c collector
	rule, ok := checkLinkKind(&c, entity, kind)
	if !ok {
		return result(LinkRequest{}, &c)
	}
	req := LinkRequest{
		Entity: entity,
		Kind:   kind,
		Key:    checkKey(&c, entity, entity.Field(), a.Key),
	}
	webURL := clean(a.URL)
	cycle := clean(a.TestCycleIDOrKey)
	reject := func(field string, present bool) {
		if present {
			c.add(field, fmt.Sprintf("is not accepted for %s links", kind))
		}
	}
	switch kind {
	case LinkIssue:
		reject("url", webURL != "")
		reject("description", a.Description != nil)
		reject("testCycleIdOrKey", cycle != "")
		id := checkIssueID(&c, a.IssueID)
		req.Issue = api.Some(api.IssueLinkInput{IssueID: id})
	case LinkWeb:
		reject("issueId", a.IssueID != nil)
		reject("testCycleIdOrKey", cycle != "")
		in := api.WebLinkInput{
			URL:                 webURL,
			Description:         optText(a.Description),
			DescriptionRequired: rule.descriptionRequired,
		}
		c.merge(in.Check())
		checkWebURL(&c, webURL)
		req.Web = api.Some(in)
	case LinkTestCycle:
		reject("issueId", a.IssueID != nil)
		reject("url", webURL != "")
		reject("description", a.Description != nil)
		checkTestCycleRef(&c, cycle)
		req.TestCycle = api.Some(api.TestCycleLinkInput{TestCycleIDOrKey: cycle})
	}
	return result(req, &c)
}

var issueKeyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*-[0-9]+$`)

// IssueKeyHint is appended when a caller passes a Jira issue key where the
// numeric issue id is expected.
const IssueKeyHint = "look up the numeric issue id with an Atlassian/Jira MCP tool (for example getJiraIssue) and pass that instead"

func checkIssueID(c *collector, raw any) int64 {
	const field = "issueId"
	switch v := raw.(type) {
	case nil:
		c.add(field, "is required")
		return 0
	case string:
		s := clean(v)
		if s == "" {
			c.add(field, "is required")
			return 0
		}
		if issueKeyPattern.MatchString(s) {
			c.add(field, fmt.Sprintf("expects the numeric Jira issue id, not the issue key %q; %s", s, IssueKeyHint))
			return 0
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.add(field, fmt.Sprintf("must be a positive integer Jira issue id (got %q)", s))
			return 0
		}
		return positiveIssueID(c, n)
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			c.add(field, fmt.Sprintf("must be a positive integer Jira issue id (got %v)", v))
			return 0
		}
		return positiveIssueID(c, int64(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			c.add(field, fmt.Sprintf("must be a positive integer Jira issue id (got %s)", v))
			return 0
		}
		return positiveIssueID(c, n)
	case int:
		return positiveIssueID(c, int64(v))
	case int64:
		return positiveIssueID(c, v)
	default:
		c.add(field, fmt.Sprintf("must be a positive integer Jira issue id (got %T)", raw))
		return 0
	}
}

func positiveIssueID(c *collector, n int64) int64 {
	if n < 1 {
		c.add("issueId", fmt.Sprintf("must be a positive integer Jira issue id (got %d)", n))
		return 0
	}
	return n
}

func checkWebURL(c *collector, raw string) {
	if raw == "" || !api.WebURLPattern.MatchString(raw) {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		c.add("url", fmt.Sprintf("must be an absolute http(s) URL with a host (got %q)", raw))
	}
}

func checkTestCycleRef(c *collector, ref string) {
	const field = "testCycleIdOrKey"
	if ref == "" {
		c.add(field, "is required")
		return
	}
	if digitsOnly(ref) {
		if n, err := strconv.ParseInt(ref, 10, 64); err != nil || n < 1 {
			c.add(field, fmt.Sprintf("must be a positive test cycle id or a key like PROJ-R123 (got %q)", ref))
		}
		return
	}
	checkKey(c, KindTestCycle, field, ref)
}
