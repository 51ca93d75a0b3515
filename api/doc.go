// Package api declares the request and response shapes of the Zephyr Scale
// Cloud REST API (v2) together with the field rules each shape enforces.
//
// Every entity has a Go struct that carries the JSON wire names and a Schema
// value that describes the same fields declaratively. Input schemas are closed
// and reject undeclared fields; output schemas check required members and
// runtime types of the fields they declare and leave the rest of the payload
// behind. Optional members use Opt so that an absent value is never mistaken
// for an empty string, zero or false:
//
//	var tc api.TestCase
//	if err := api.TestCaseSchema().Decode(body, &tc); err != nil {
//		var mismatch *api.MismatchError
//		if errors.As(err, &mismatch) {
//			// mismatch.Field() names the first offending member
//		}
//		return err
//	}
//	if objective, ok := tc.Objective.Get(); ok {
//		fmt.Println(objective)
//	}
//
// Updates are expressed as partial change sets (PriorityUpdate, StatusUpdate,
// TestCaseUpdate, TestCycleUpdate). Apply merges a change set into the current
// entity and UpdateInput renders the merged entity as the full PUT body the
// service expects. Neither mutates its receiver.
//
// The package performs no I/O and holds no mutable state; schemas are built
// once during package initialization and are safe for concurrent use.
package api
