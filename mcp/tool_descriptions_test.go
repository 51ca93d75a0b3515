package mcp

import (
	"strings"
	"testing"

	"pkt.systems/zscale/client"
)

func TestBuildToolDescriptionsCoverage(t *testing.T) {
	t.Parallel()

	descriptions := buildToolDescriptions()

	if len(descriptions) != len(mcpToolNames) {
		t.Fatalf("expected %d tool descriptions, got %d", len(mcpToolNames), len(descriptions))
	}
	for _, name := range mcpToolNames {
		description, ok := descriptions[name]
		if !ok {
			t.Fatalf("missing description for %s", name)
		}
		if strings.TrimSpace(description) == "" {
			t.Fatalf("empty description for %s", name)
		}
	}
}

func TestBuildToolDescriptionsIncludeOperationalSections(t *testing.T) {
	t.Parallel()

	descriptions := buildToolDescriptions()
	required := []string{
		"Purpose:",
		"Use when:",
		"Requires:",
		"Effects:",
		"Retry:",
		"Next:",
	}
	for _, name := range mcpToolNames {
		description := descriptions[name]
		for _, marker := range required {
			if !strings.Contains(description, marker) {
				t.Fatalf("description for %s missing marker %q: %q", name, marker, description)
			}
		}
	}
}

func TestIssueLinkDescriptionsWarnAboutIssueKeys(t *testing.T) {
	t.Parallel()

	descriptions := buildToolDescriptions()
	for _, op := range []client.Op{
		client.OpCreateTestCaseIssueLink,
		client.OpCreateTestCycleIssueLink,
		client.OpCreateTestPlanIssueLink,
	} {
		if !strings.Contains(descriptions[string(op)], "not an issue key") {
			t.Fatalf("description for %s does not warn about issue keys: %q", op, descriptions[string(op)])
		}
	}
}

func TestCreateDescriptionsMentionDefaultProject(t *testing.T) {
	t.Parallel()

	descriptions := buildToolDescriptions()
	for _, op := range []client.Op{
		client.OpCreatePriority,
		client.OpCreateStatus,
		client.OpCreateFolder,
		client.OpCreateTestCase,
		client.OpCreateTestCycle,
		client.OpCreateTestPlan,
	} {
		if !strings.Contains(descriptions[string(op)], "ZEPHYR_SCALE_DEFAULT_PROJECT_KEY") {
			t.Fatalf("description for %s does not mention the default project: %q", op, descriptions[string(op)])
		}
	}
}

func TestFormatToolDescriptionMultilineNext(t *testing.T) {
	t.Parallel()

	got := formatToolDescription(toolContract{
		Top:      []string{"  ", "TOP"},
		Purpose:  "p",
		UseWhen:  "u",
		Requires: "r",
		Effects:  "e",
		Retry:    "x",
		Next:     nextSteps("one", "two"),
	})
	want := "TOP\nPurpose: p\nUse when: u\nRequires: r\nEffects: e\nRetry: x\nNext:\n- one\n- two"
	if got != want {
		t.Fatalf("unexpected description:\n%s\nwant:\n%s", got, want)
	}
}
