package api

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSchemasMatchStructTags(t *testing.T) {
	t.Parallel()
	cases := []struct {
		schema *Schema
		value  any
	}{
		{refSchema, Ref{}},
		{ownerSchema, Owner{}},
		{selfRefSchema, SelfRef{}},
		{createdResourceSchema, CreatedResource{}},
		{idRefInputSchema, IDRef{}},
		{accountRefInputSchema, AccountRef{}},
		{pageRequestSchema, PageRequest{}},
		{PageOf(prioritySchema), Page[Priority]{}},
		{prioritySchema, Priority{}},
		{createPriorityInputSchema, CreatePriorityInput{}},
		{priorityUpdateSchema, PriorityUpdate{}},
		{updatePriorityInputSchema, UpdatePriorityInput{}},
		{statusSchema, Status{}},
		{createStatusInputSchema, CreateStatusInput{}},
		{statusUpdateSchema, StatusUpdate{}},
		{updateStatusInputSchema, UpdateStatusInput{}},
		{folderSchema, Folder{}},
		{createFolderInputSchema, CreateFolderInput{}},
		{testCaseSchema, TestCase{}},
		{createTestCaseInputSchema, CreateTestCaseInput{}},
		{testCaseUpdateSchema, TestCaseUpdate{}},
		{updateTestCaseInputSchema, UpdateTestCaseInput{}},
		{versionRefSchema, VersionRef{}},
		{testCycleSchema, TestCycle{}},
		{createTestCycleInputSchema, CreateTestCycleInput{}},
		{testCycleUpdateSchema, TestCycleUpdate{}},
		{updateTestCycleInputSchema, UpdateTestCycleInput{}},
		{testPlanSchema, TestPlan{}},
		{createTestPlanInputSchema, CreateTestPlanInput{}},
		{issueLinkSchema, IssueLink{}},
		{webLinkSchema, WebLink{}},
		{testCycleLinkSchema, TestCycleLink{}},
		{testPlanLinkSchema, TestPlanLink{}},
		{linksSchema, Links{}},
		{issueLinkInputSchema, IssueLinkInput{}},
		{webLinkInputSchema, WebLinkInput{}},
		{describedWebLinkInputSchema, WebLinkInput{}},
		{testCycleLinkInputSchema, TestCycleLinkInput{}},
		{stepParameterSchema, StepParameter{}},
		{inlineStepSchema, InlineStep{}},
		{callStepSchema, CallStep{}},
		{testStepSchema, TestStep{}},
		{testScriptSchema, TestScript{}},
		{stepParameterInputSchema, StepParameter{}},
		{inlineStepInputSchema, InlineStep{}},
		{callStepInputSchema, CallStep{}},
		{testStepInputSchema, TestStep{}},
		{testStepsInputSchema, TestStepsInput{}},
		{testScriptInputSchema, TestScriptInput{}},
	}
	for _, tc := range cases {
		want := jsonNames(reflect.TypeOf(tc.value))
		var got []string
		for _, f := range tc.schema.Fields() {
			got = append(got, f.Name())
		}
		slices.Sort(want)
		slices.Sort(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("schema %s vs %T (-struct +schema):\n%s", tc.schema.Name(), tc.value, diff)
		}
	}
}

func jsonNames(t reflect.Type) []string {
	var names []string
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}

func TestDecodeReportsMissingAndMistypedFields(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		body  string
		field string
		msg   string
	}{
		{"missing project", `{"id":1,"name":"High","index":0,"default":false}`, "project", "is required"},
		{"null project", `{"id":1,"project":null,"name":"High","index":0,"default":false}`, "project", "must not be null"},
		{"string id", `{"id":"one","project":{"id":10},"name":"High","index":0,"default":false}`, "id", "expected integer, got string"},
		{"fractional index", `{"id":1,"project":{"id":10},"name":"High","index":1.5,"default":false}`, "index", "expected integer, got number"},
		{"nested", `{"id":1,"project":{"self":"x"},"name":"High","index":0,"default":false}`, "project.id", "is required"},
		{"bool as string", `{"id":1,"project":{"id":10},"name":"High","index":0,"default":"yes"}`, "default", "expected boolean, got string"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var p Priority
			err := PrioritySchema().Decode([]byte(tc.body), &p)
			var mismatch *MismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("expected mismatch error, got %v", err)
			}
			if mismatch.Schema != "Priority" {
				t.Fatalf("schema = %q", mismatch.Schema)
			}
			if mismatch.Field() != tc.field {
				t.Fatalf("field = %q, want %q (%v)", mismatch.Field(), tc.field, err)
			}
			if mismatch.Problems[0].Message != tc.msg {
				t.Fatalf("message = %q, want %q", mismatch.Problems[0].Message, tc.msg)
			}
		})
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	t.Parallel()
	var p Priority
	for _, body := range []string{``, `{"id":`, `{"id":1} trailing`} {
		err := PrioritySchema().Decode([]byte(body), &p)
		if !errors.Is(err, ErrMalformedJSON) {
			t.Fatalf("body %q: expected ErrMalformedJSON, got %v", body, err)
		}
	}
	err := PrioritySchema().Decode([]byte(`[1,2]`), &p)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("array body: expected mismatch, got %v", err)
	}
}

func TestDecodeKeepsAbsentDistinctFromEmpty(t *testing.T) {
	t.Parallel()
	var absent, empty Priority
	if err := PrioritySchema().Decode([]byte(`{"id":1,"project":{"id":10},"name":"High","index":0,"default":false}`), &absent); err != nil {
		t.Fatalf("decode absent: %v", err)
	}
	if err := PrioritySchema().Decode([]byte(`{"id":1,"project":{"id":10},"name":"High","description":"","index":0,"default":false,"extra":true}`), &empty); err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if absent.Description.IsSet() {
		t.Fatalf("absent description reported as set")
	}
	got, ok := empty.Description.Get()
	if !ok || got != "" {
		t.Fatalf("empty description = %q, %v", got, ok)
	}
}

func TestPageDecodeNamesNestedItem(t *testing.T) {
	t.Parallel()
	body := `{"startAt":0,"maxResults":2,"total":2,"isLast":true,"values":[
		{"id":1,"project":{"id":10},"name":"High","index":0,"default":true},
		{"id":2,"name":"Low","index":1,"default":false}]}`
	var page Page[Priority]
	err := PriorityPageSchema().Decode([]byte(body), &page)
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if mismatch.Field() != "values[1].project" {
		t.Fatalf("field = %q", mismatch.Field())
	}
	if !strings.Contains(err.Error(), "Page<Priority>") {
		t.Fatalf("error does not name schema: %v", err)
	}
}

func TestInputSchemaCollectsEveryViolation(t *testing.T) {
	t.Parallel()
	obj := map[string]any{
		"projectKey": "test",
		"name":       strings.Repeat("x", 256),
		"color":      "red",
		"bogus":      1,
	}
	got := createPriorityInputSchema.Check(obj)
	want := []FieldError{
		{Field: "projectKey", Message: `must match a Jira project key like PROJ (got "test")`},
		{Field: "name", Message: "must be at most 255 characters (got 256)"},
		{Field: "color", Message: `must match a hex color like #FF0000 (got "red")`},
		{Field: "bogus", Message: "is not a recognized field"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations (-want +got):\n%s", diff)
	}
}

func TestOptJSON(t *testing.T) {
	t.Parallel()
	in := CreatePriorityInput{Name: "High", Description: Some(""), ProjectKey: "TEST"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"projectKey":"TEST","name":"High","description":""}`; got != want {
		t.Fatalf("json = %s, want %s", got, want)
	}
	var back CreatePriorityInput
	if err := json.Unmarshal([]byte(`{"name":"High","description":null,"color":"#FFF"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Description.IsSet() || back.Color.OrElse("") != "#FFF" {
		t.Fatalf("unexpected decode %+v", back)
	}
}

func TestSchemaDeclarationPanics(t *testing.T) {
	t.Parallel()
	cases := map[string]func(){
		"duplicate": func() { Input("Dup", String("a"), String("a")) },
		"no nested": func() { Input("Nested", Object("a", nil)) },
		"empty enum": func() { Input("Enum", Enum("a")) },
		"range": func() { Input("Range", Integer("a").AtLeast(5).AtMost(1)) },
	}
	for name, fn := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("%s: expected panic", name)
				}
			}()
			fn()
		}()
	}
}
