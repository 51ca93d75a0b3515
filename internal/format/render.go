package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"pkt.systems/zscale/api"
)

func pageText[T any](p api.Page[T], singular, plural string, line func(int64, T) string) string {
	var b strings.Builder
	n := len(p.Values)
	if n == 0 {
		fmt.Fprintf(&b, "No %s on this page (total %s).", plural, humanize.Comma(p.Total))
	} else {
		fmt.Fprintf(&b, "%s %s in total; showing %s-%s:",
			humanize.Comma(p.Total), english.PluralWord(int(p.Total), singular, plural),
			humanize.Comma(p.StartAt+1), humanize.Comma(p.StartAt+int64(n)))
		for i, v := range p.Values {
			b.WriteString("\n")
			b.WriteString(line(p.StartAt+int64(i)+1, v))
		}
	}
	if !p.IsLast {
		fmt.Fprintf(&b, "\nMore results available: call again with startAt=%d.", p.StartAt+int64(n))
	}
	return b.String()
}

func field(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "\n%s: %s", label, value)
}

func optField[T any](b *strings.Builder, label string, o api.Opt[T], show func(T) string) {
	if v, ok := o.Get(); ok {
		field(b, label, show(v))
	}
}

func str(s string) string { return s }

func refID(r api.Ref) string { return fmt.Sprintf("#%d", r.ID) }

func owner(o api.Owner) string { return o.AccountID }

func labels(l []string) string { return strings.Join(l, ", ") }

func millis(ms int64) string { return (time.Duration(ms) * time.Millisecond).String() }

func customFields(m map[string]any) string {
	return fmt.Sprintf("%d %s", len(m), english.PluralWord(len(m), "field", "fields"))
}

func flags(pairs ...any) string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if on, _ := pairs[i+1].(bool); on {
			out = append(out, pairs[i].(string))
		}
	}
	if len(out) == 0 {
		return ""
	}
	return " [" + strings.Join(out, ", ") + "]"
}

// Health renders a healthcheck.
func Health(h api.Health) string {
	return fmt.Sprintf("Zephyr Scale API at %s is %s (HTTP %d).", h.BaseURL, h.Status, h.HTTPStatus)
}

// Created returns a renderer for create responses naming the entity noun.
func Created(noun string) Renderer[api.CreatedResource] {
	return func(r api.CreatedResource) string {
		var b strings.Builder
		if key, ok := r.Key.Get(); ok && key != "" {
			fmt.Fprintf(&b, "Created %s %s (id %d).", noun, key, r.ID)
		} else {
			fmt.Fprintf(&b, "Created %s with id %d.", noun, r.ID)
		}
		optField(&b, "Self", r.Self, str)
		return b.String()
	}
}

func priorityLine(p api.Priority) string {
	color := p.Color.OrElse("none")
	return fmt.Sprintf("#%d %s (index %d, color %s)%s", p.ID, p.Name, p.Index, color, flags("default", p.Default))
}

// Priority renders one priority.
func Priority(p api.Priority) string {
	var b strings.Builder
	b.WriteString("Priority " + priorityLine(p))
	field(&b, "Project", refID(p.Project))
	optField(&b, "Description", p.Description, str)
	return b.String()
}

// Priorities renders a page of priorities.
func Priorities(p api.Page[api.Priority]) string {
	return pageText(p, "priority", "priorities", func(_ int64, v api.Priority) string { return "- " + priorityLine(v) })
}

func statusLine(s api.Status) string {
	color := s.Color.OrElse("none")
	return fmt.Sprintf("#%d %s (index %d, color %s)%s", s.ID, s.Name, s.Index, color, flags("default", s.Default, "archived", s.Archived))
}

// Status renders one status.
func Status(s api.Status) string {
	var b strings.Builder
	b.WriteString("Status " + statusLine(s))
	field(&b, "Project", refID(s.Project))
	optField(&b, "Description", s.Description, str)
	return b.String()
}

// Statuses renders a page of statuses.
func Statuses(p api.Page[api.Status]) string {
	return pageText(p, "status", "statuses", func(_ int64, v api.Status) string { return "- " + statusLine(v) })
}

func folderLine(f api.Folder) string {
	parent := "root"
	if id, ok := f.ParentID.Get(); ok {
		parent = fmt.Sprintf("parent #%d", id)
	}
	return fmt.Sprintf("#%d %s (%s, %s, index %d)", f.ID, f.Name, f.FolderType, parent, f.Index)
}

// Folder renders one folder.
func Folder(f api.Folder) string {
	var b strings.Builder
	b.WriteString("Folder " + folderLine(f))
	optField(&b, "Project", f.Project, refID)
	return b.String()
}

// Folders renders a page of folders.
func Folders(p api.Page[api.Folder]) string {
	return pageText(p, "folder", "folders", func(_ int64, v api.Folder) string { return "- " + folderLine(v) })
}

// TestCase renders one test case.
func TestCase(tc api.TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test case %s: %s", tc.Key, tc.Name)
	field(&b, "ID", fmt.Sprint(tc.ID))
	field(&b, "Project", refID(tc.Project))
	field(&b, "Priority", refID(tc.Priority))
	field(&b, "Status", refID(tc.Status))
	optField(&b, "Folder", tc.Folder, refID)
	optField(&b, "Component", tc.Component, refID)
	optField(&b, "Owner", tc.Owner, owner)
	optField(&b, "Objective", tc.Objective, str)
	optField(&b, "Precondition", tc.Precondition, str)
	optField(&b, "Estimated time", tc.EstimatedTime, millis)
	optField(&b, "Labels", tc.Labels, labels)
	optField(&b, "Created", tc.CreatedOn, str)
	optField(&b, "Test script", tc.TestScript, func(s api.SelfRef) string { return s.Self })
	optField(&b, "Custom fields", tc.CustomFields, customFields)
	optField(&b, "Links", tc.Links, linkCount)
	return b.String()
}

// TestCases renders a page of test cases.
func TestCases(p api.Page[api.TestCase]) string {
	return pageText(p, "test case", "test cases", func(_ int64, v api.TestCase) string {
		return fmt.Sprintf("- %s %s (priority #%d, status #%d)", v.Key, v.Name, v.Priority.ID, v.Status.ID)
	})
}

// Versions renders a page of test case versions.
func Versions(p api.Page[api.VersionRef]) string {
	return pageText(p, "version", "versions", func(_ int64, v api.VersionRef) string {
		if self, ok := v.Self.Get(); ok {
			return fmt.Sprintf("- #%d %s", v.ID, self)
		}
		return fmt.Sprintf("- #%d", v.ID)
	})
}

func linkCount(l api.Links) string {
	n := l.Count()
	return fmt.Sprintf("%d %s", n, english.PluralWord(n, "link", "links"))
}

func linkKind(l api.Opt[string]) string {
	if t, ok := l.Get(); ok {
		return " (" + t + ")"
	}
	return ""
}

// Links renders the links of a test case, cycle or plan.
func Links(l api.Links) string {
	var b strings.Builder
	if l.Count() == 0 {
		return "No links."
	}
	fmt.Fprintf(&b, "Links (%d):", l.Count())
	for _, i := range l.Issues {
		fmt.Fprintf(&b, "\n- issue %d%s", i.IssueID, linkKind(i.Type))
	}
	for _, w := range l.WebLinks {
		fmt.Fprintf(&b, "\n- web %s%s", w.URL, linkKind(w.Type))
		if d, ok := w.Description.Get(); ok {
			fmt.Fprintf(&b, ": %s", d)
		}
	}
	for _, c := range l.TestCycles {
		fmt.Fprintf(&b, "\n- test cycle #%d%s", c.TestCycleID, linkKind(c.Type))
	}
	for _, p := range l.TestPlans {
		fmt.Fprintf(&b, "\n- test plan #%d%s", p.TestPlanID, linkKind(p.Type))
	}
	return b.String()
}

func stepLine(n int64, s api.TestStep) string {
	if call, ok := s.TestCase.Get(); ok {
		params := call.Parameters.OrElse(nil)
		return fmt.Sprintf("%d. call %s (%d %s)", n, call.TestCaseKey, len(params), english.PluralWord(len(params), "parameter", "parameters"))
	}
	in := s.Inline.OrElse(api.InlineStep{})
	parts := []string{in.Description.OrElse("(no description)")}
	if d, ok := in.TestData.Get(); ok {
		parts = append(parts, "data: "+d)
	}
	if e, ok := in.ExpectedResult.Get(); ok {
		parts = append(parts, "expected: "+e)
	}
	return fmt.Sprintf("%d. %s", n, strings.Join(parts, " | "))
}

// TestSteps renders a page of test steps, numbered from the page offset.
func TestSteps(p api.Page[api.TestStep]) string {
	return pageText(p, "step", "steps", stepLine)
}

// TestScript renders a test script.
func TestScript(s api.TestScript) string {
	return fmt.Sprintf("Test script (%s):\n%s", s.Type, s.Text)
}

// TestCycle renders one test cycle.
func TestCycle(tc api.TestCycle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test cycle %s: %s", tc.Key, tc.Name)
	field(&b, "ID", fmt.Sprint(tc.ID))
	field(&b, "Project", refID(tc.Project))
	field(&b, "Status", refID(tc.Status))
	optField(&b, "Folder", tc.Folder, refID)
	optField(&b, "Jira version", tc.JiraProjectVersion, refID)
	optField(&b, "Owner", tc.Owner, owner)
	optField(&b, "Description", tc.Description, str)
	optField(&b, "Planned start", tc.PlannedStartDate, str)
	optField(&b, "Planned end", tc.PlannedEndDate, str)
	optField(&b, "Custom fields", tc.CustomFields, customFields)
	optField(&b, "Links", tc.Links, linkCount)
	return b.String()
}

// TestCycles renders a page of test cycles.
func TestCycles(p api.Page[api.TestCycle]) string {
	return pageText(p, "test cycle", "test cycles", func(_ int64, v api.TestCycle) string {
		return fmt.Sprintf("- %s %s (status #%d)", v.Key, v.Name, v.Status.ID)
	})
}

// TestPlan renders one test plan.
func TestPlan(tp api.TestPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test plan %s: %s", tp.Key, tp.Name)
	field(&b, "ID", fmt.Sprint(tp.ID))
	field(&b, "Project", refID(tp.Project))
	field(&b, "Status", refID(tp.Status))
	optField(&b, "Folder", tp.Folder, refID)
	optField(&b, "Owner", tp.Owner, owner)
	optField(&b, "Objective", tp.Objective, str)
	optField(&b, "Labels", tp.Labels, labels)
	optField(&b, "Custom fields", tp.CustomFields, customFields)
	optField(&b, "Links", tp.Links, linkCount)
	return b.String()
}

// TestPlans renders a page of test plans.
func TestPlans(p api.Page[api.TestPlan]) string {
	return pageText(p, "test plan", "test plans", func(_ int64, v api.TestPlan) string {
		return fmt.Sprintf("- %s %s (status #%d)", v.Key, v.Name, v.Status.ID)
	})
}
