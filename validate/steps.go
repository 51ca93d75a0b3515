package validate

import (
	"fmt"
	"strings"

	"pkt.systems/zscale/api"
)

// InlineStepArgs describe one inline step.
type InlineStepArgs struct {
	Description    *string
	TestData       *string
	ExpectedResult *string
	CustomFields   map[string]any
}

// StepParameterArgs describe one parameter of a call step.
type StepParameterArgs struct {
	Name  string
	Type  string
	Value string
}

// CallStepArgs delegate a step to another test case.
type CallStepArgs struct {
	TestCaseKey string
	Parameters  []StepParameterArgs
}

// StepArgs is one step; exactly one member must be set.
type StepArgs struct {
	Inline   *InlineStepArgs
	TestCase *CallStepArgs
}

// TestStepsArgs are the arguments of create_test_steps. An empty Mode means
// APPEND.
type TestStepsArgs struct {
	Key   string
	Mode  string
	Items []StepArgs
}

// StepsRequest is the canonical create_test_steps request.
type StepsRequest struct {
	Key   string             `json:"key"`
	Input api.TestStepsInput `json:"input"`
}

// Check validates the key and the body.
func (r StepsRequest) Check() []api.FieldError {
	var c collector
	checkKey(&c, KindTestCase, KindTestCase.Field(), r.Key)
	c.merge(r.Input.Check())
	return c.errs
}

// TestSteps validates create_test_steps arguments.
func TestSteps(a TestStepsArgs) Result[StepsRequest] {
	var c collector
	req := StepsRequest{Key: checkKey(&c, KindTestCase, KindTestCase.Field(), a.Key)}
	mode := strings.ToUpper(clean(a.Mode))
	if mode == "" {
		mode = api.StepsModeAppend
	}
	req.Input.Mode = mode
	req.Input.Items = make([]api.TestStep, 0, len(a.Items))
	for _, item := range a.Items {
		var step api.TestStep
		if in := item.Inline; in != nil {
			step.Inline = api.Some(api.InlineStep{
				Description:    optText(in.Description),
				TestData:       optText(in.TestData),
				ExpectedResult: optText(in.ExpectedResult),
				CustomFields:   optFields(in.CustomFields),
			})
		}
		if call := item.TestCase; call != nil {
			cs := api.CallStep{TestCaseKey: clean(call.TestCaseKey)}
			if call.Parameters != nil {
				params := make([]api.StepParameter, 0, len(call.Parameters))
				for _, p := range call.Parameters {
					params = append(params, api.StepParameter{Name: clean(p.Name), Type: strings.ToUpper(clean(p.Type)), Value: p.Value})
				}
				cs.Parameters = api.Some(params)
			}
			step.TestCase = api.Some(cs)
		}
		req.Input.Items = append(req.Input.Items, step)
	}
	c.merge(req.Input.Check())
	return result(req, &c)
}

// TestScriptArgs are the arguments of create_test_script.
type TestScriptArgs struct {
	Key  string
	Type string
	Text string
}

// ScriptRequest is the canonical create_test_script request.
type ScriptRequest struct {
	Key   string              `json:"key"`
	Input api.TestScriptInput `json:"input"`
}

// Check validates the key and the body.
func (r ScriptRequest) Check() []api.FieldError {
	var c collector
	checkKey(&c, KindTestCase, KindTestCase.Field(), r.Key)
	c.merge(r.Input.Check())
	return c.errs
}

// TestScript validates create_test_script arguments. The type is matched
// case-insensitively.
func TestScript(a TestScriptArgs) Result[ScriptRequest] {
	var c collector
	req := ScriptRequest{
		Key: checkKey(&c, KindTestCase, KindTestCase.Field(), a.Key),
		Input: api.TestScriptInput{
			Type: strings.ToLower(clean(a.Type)),
			Text: strings.ReplaceAll(a.Text, "\x00", ""),
		},
	}
	c.merge(req.Input.Check())
	return result(req, &c)
}

// VersionRequest addresses one historical version of a test case.
type VersionRequest struct {
	Key     string `json:"key"`
	Version int64  `json:"version"`
}

// Check validates the key and the version number.
func (r VersionRequest) Check() []api.FieldError {
	var c collector
	checkKey(&c, KindTestCase, KindTestCase.Field(), r.Key)
	if r.Version < 1 {
		c.add("version", fmt.Sprintf("must be at least 1 (got %d)", r.Version))
	}
	return c.errs
}

// TestCaseVersion validates get_test_case_version arguments.
func TestCaseVersion(key string, version int64) Result[VersionRequest] {
	var c collector
	req := VersionRequest{Key: checkKey(&c, KindTestCase, KindTestCase.Field(), key), Version: version}
	if version < 1 {
		c.add("version", fmt.Sprintf("must be at least 1 (got %d)", version))
	}
	return result(req, &c)
}
