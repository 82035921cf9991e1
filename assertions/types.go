// Package assertions grades structured model output against declared
// tool/function schemas.
//
// A Grader resolves the declared definitions (inline or file-backed), renders
// test variables into each schema, extracts the model's calls from any of the
// legal output shapes, and validates each call's JSON arguments against the
// matching schema. Model-behavior failures (bad shape, unknown name, invalid
// JSON, schema violation) become failing Verdicts so a test run can continue;
// configuration failures surface as errors and abort the assertion.
package assertions

import "errors"

// ErrNoDefinitions is returned when no tool schema set exists at all in
// tools-mode grading. An absent definition set is configuration misuse, not
// a model failure, so it aborts rather than producing a Verdict.
var ErrNoDefinitions = errors.New("no tool definitions provided")

// PassReason is the verdict reason for a fully passing assertion.
const PassReason = "Assertion passed"

// Assertion is the configuration of one pass/fail check against a model
// output.
type Assertion struct {
	Type    string `json:"type" yaml:"type"`
	Value   any    `json:"value,omitempty" yaml:"value,omitempty"`
	Inverse bool   `json:"inverse,omitempty" yaml:"inverse,omitempty"`
}

// Verdict is the immutable outcome of one assertion evaluation.
type Verdict struct {
	// ID is a unique record identifier assigned at grading time.
	ID string `json:"id"`

	Pass   bool    `json:"pass"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`

	// Assertion echoes the original assertion object for the report layer.
	Assertion *Assertion `json:"assertion,omitempty"`
}

// GradeRequest carries everything needed to grade one output.
type GradeRequest struct {
	// Output is the decoded provider output in any of the legal call shapes.
	Output any

	// Definitions is the declared schema set: an inline definition list or a
	// file:// reference string resolving to one.
	Definitions any

	// Vars are the test variables rendered into each definition's schema.
	Vars map[string]string

	// Provider labels the upstream model provider in failure reasons.
	Provider string

	// Inverse negates the verdict's boolean result while preserving the
	// original reason text.
	Inverse bool

	// Assertion, when set, is echoed into the resulting Verdict.
	Assertion *Assertion
}

// providerLabel returns the provider name for reason texts.
func (r *GradeRequest) providerLabel() string {
	if r.Provider == "" {
		return "Provider"
	}
	return r.Provider
}
