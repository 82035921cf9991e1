package assertions

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/jmespath/go-jmespath"

	"github.com/promptproof/promptproof/extractor"
)

// ArgsPathRequest configures a JMESPath check against one named call's
// parsed arguments.
type ArgsPathRequest struct {
	// Output is the decoded provider output in any of the legal call shapes.
	Output any

	// Call names the function whose arguments are inspected. The first
	// extracted call with that name is used.
	Call string

	// Path is the JMESPath expression evaluated against the parsed arguments.
	Path string

	// Expected is the value the expression result must equal.
	Expected any

	// Provider labels the upstream model provider in failure reasons.
	Provider string

	// Inverse negates the verdict's boolean result.
	Inverse bool

	// Assertion, when set, is echoed into the resulting Verdict.
	Assertion *Assertion
}

// GradeCallArgsPath evaluates a JMESPath expression against a named call's
// arguments and compares the result with the expected value. Shape, lookup,
// and JSON failures use the same verdict vocabulary as schema grading.
func (g *Grader) GradeCallArgsPath(ctx context.Context, req ArgsPathRequest) (*Verdict, error) {
	gradeReq := GradeRequest{Provider: req.Provider, Inverse: req.Inverse, Assertion: req.Assertion}

	calls, err := extractor.Extract(req.Output, extractor.ModeFunctionCall)
	if err != nil {
		reason := fmt.Sprintf("%s did not return a valid-looking function call", gradeReq.providerLabel())
		return g.finalize(gradeReq, fail(&gradeReq, reason)), nil
	}

	call, ok := findCall(calls, req.Call)
	if !ok {
		return g.finalize(gradeReq,
			fail(&gradeReq, fmt.Sprintf("Called %q, but there is no function with that name", req.Call))), nil
	}

	var args any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return g.finalize(gradeReq,
			fail(&gradeReq, fmt.Sprintf("Call to %q has invalid JSON arguments: %v", call.Name, err))), nil
	}

	actual, err := jmespath.Search(req.Path, args)
	if err != nil {
		return nil, fmt.Errorf("evaluating path %q: %w", req.Path, err)
	}

	if !valuesEqual(actual, req.Expected) {
		reason := fmt.Sprintf("Call to %q argument path %q is %s, expected %s",
			call.Name, req.Path, encodeForReason(actual), encodeForReason(req.Expected))
		return g.finalize(gradeReq, fail(&gradeReq, reason)), nil
	}

	return g.finalize(gradeReq, attach(&gradeReq, &Verdict{Pass: true, Score: 1, Reason: PassReason})), nil
}

func findCall(calls []extractor.Call, name string) (extractor.Call, bool) {
	for _, call := range calls {
		if call.Name == name {
			return call, true
		}
	}
	return extractor.Call{}, false
}

// valuesEqual compares a JMESPath result with an expected value through a
// JSON round trip, so int/float and typed-slice mismatches do not matter.
func valuesEqual(actual, expected any) bool {
	return reflect.DeepEqual(normalize(actual), normalize(expected))
}

func normalize(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}

// encodeForReason renders a value deterministically for reason texts.
func encodeForReason(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
