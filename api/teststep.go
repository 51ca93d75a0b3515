package api

// Test steps write modes.
const (
	StepsModeAppend    = "APPEND"
	StepsModeOverwrite = "OVERWRITE"
)

// StepsModes lists every write mode.
var StepsModes = []string{StepsModeAppend, StepsModeOverwrite}

// Call parameter types.
const (
	ParameterDefaultValue = "DEFAULT_VALUE"
	ParameterManualInput  = "MANUAL_INPUT"
)

// MaxTestSteps bounds the number of steps written in one request.
const MaxTestSteps = 100

// Script types.
const (
	ScriptTypePlain = "plain"
	ScriptTypeBDD   = "bdd"
)

// ScriptTypes lists every script type.
var ScriptTypes = []string{ScriptTypePlain, ScriptTypeBDD}

// InlineStep is a step described in place.
type InlineStep struct {
	Description    Opt[string]         `json:"description,omitzero"`
	TestData       Opt[string]         `json:"testData,omitzero"`
	ExpectedResult Opt[string]         `json:"expectedResult,omitzero"`
	CustomFields   Opt[map[string]any] `json:"customFields,omitzero"`
	ReflectRef     Opt[string]         `json:"reflectRef,omitzero"`
}

// StepParameter is a value handed to a called test case.
type StepParameter struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// CallStep delegates the step to another test case.
type CallStep struct {
	Self        Opt[string]          `json:"self,omitzero"`
	TestCaseKey string               `json:"testCaseKey"`
	Parameters  Opt[[]StepParameter] `json:"parameters,omitzero"`
}

// TestStep is exactly one of an inline step or a call to another test case.
type TestStep struct {
	Inline   Opt[InlineStep] `json:"inline,omitzero"`
	TestCase Opt[CallStep]   `json:"testCase,omitzero"`
}

// TestStepsInput models POST /testcases/{key}/teststeps.
type TestStepsInput struct {
	Mode  string     `json:"mode"`
	Items []TestStep `json:"items"`
}

// TestScript is the plain-text or BDD script of a test case.
type TestScript struct {
	ID   Opt[int64] `json:"id,omitzero"`
	Type string     `json:"type"`
	Text string     `json:"text"`
}

// TestScriptInput models POST /testcases/{key}/testscript.
type TestScriptInput struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var (
	stepParameterSchema = Output("StepParameter",
		String("name").Required(),
		String("type").Required(),
		String("value"),
	)
	inlineStepSchema = Output("InlineStep",
		String("description"),
		String("testData"),
		String("expectedResult"),
		Map("customFields"),
		String("reflectRef"),
	)
	callStepSchema = Output("CallStep",
		String("self"),
		String("testCaseKey").Required(),
		ObjectList("parameters", stepParameterSchema),
	)
	testStepSchema = Output("TestStep",
		Object("inline", inlineStepSchema),
		Object("testCase", callStepSchema),
	)
	testStepPageSchema = PageOf(testStepSchema)

	testScriptSchema = Output("TestScript",
		Integer("id"),
		String("type").Required(),
		String("text").Required(),
	)

	stepParameterInputSchema = Input("StepParameter",
		String("name").Required().NotBlank(),
		Enum("type", ParameterDefaultValue, ParameterManualInput).Required(),
		String("value").Required(),
	)
	inlineStepInputSchema = Input("InlineStep",
		String("description").Required().NotBlank(),
		String("testData"),
		String("expectedResult"),
		Map("customFields"),
		String("reflectRef"),
	)
	callStepInputSchema = Input("CallStep",
		String("self"),
		String("testCaseKey").Required().Pattern(TestCaseKeyPattern, "a test case key like PROJ-T123"),
		ObjectList("parameters", stepParameterInputSchema),
	)
	testStepInputSchema = Input("TestStep",
		Object("inline", inlineStepInputSchema),
		Object("testCase", callStepInputSchema),
	)
	testStepsInputSchema = Input("TestStepsInput",
		Enum("mode", StepsModes...).Required(),
		ObjectList("items", testStepInputSchema).Required().Items(1, MaxTestSteps),
	)
	testScriptInputSchema = Input("TestScriptInput",
		Enum("type", ScriptTypes...).Required(),
		String("text").Required().NotBlank(),
	)
)

// TestStepPageSchema describes GET /testcases/{key}/teststeps.
func TestStepPageSchema() *Schema { return testStepPageSchema }

// TestScriptSchema describes GET /testcases/{key}/testscript.
func TestScriptSchema() *Schema { return testScriptSchema }

// Check validates the body and that every item is exactly one of inline or
// testCase.
func (in TestStepsInput) Check() []FieldError {
	errs := testStepsInputSchema.CheckValue(in)
	for i, item := range in.Items {
		switch {
		case item.Inline.IsSet() && item.TestCase.IsSet():
			errs = append(errs, FieldError{Field: itemPath("items", i), Message: "must set exactly one of inline or testCase, not both"})
		case !item.Inline.IsSet() && !item.TestCase.IsSet():
			errs = append(errs, FieldError{Field: itemPath("items", i), Message: "must set one of inline or testCase"})
		}
	}
	return errs
}

func (in TestScriptInput) Check() []FieldError { return testScriptInputSchema.CheckValue(in) }
