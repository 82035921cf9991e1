package assertions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/promptproof/promptproof/extractor"
	"github.com/promptproof/promptproof/logger"
	"github.com/promptproof/promptproof/resolver"
	"github.com/promptproof/promptproof/template"
	"github.com/promptproof/promptproof/tools"
	"github.com/promptproof/promptproof/variables"
)

// Grader evaluates function-call and tool-call assertions.
type Grader struct {
	resolver *resolver.Resolver
	renderer *template.Renderer
	vars     variables.Provider
}

// GraderOption configures a Grader beyond its resolver.
type GraderOption func(*Grader)

// WithVariables sets a provider whose output seeds the variables rendered
// into definition schemas. Request-level vars override provided values on
// key conflicts.
func WithVariables(p variables.Provider) GraderOption {
	return func(g *Grader) { g.vars = p }
}

// NewGrader creates a Grader. A nil resolver gets a default one resolving
// against the process working directory.
func NewGrader(r *resolver.Resolver, opts ...GraderOption) *Grader {
	if r == nil {
		r = resolver.New()
	}
	g := &Grader{
		resolver: r,
		renderer: template.NewRenderer(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// gradeVars merges provider-supplied variables under the request's own.
func (g *Grader) gradeVars(ctx context.Context, req GradeRequest) (map[string]string, error) {
	if g.vars == nil {
		return req.Vars, nil
	}
	provided, err := g.vars.Provide(ctx)
	if err != nil {
		return nil, fmt.Errorf("providing grading variables: %w", err)
	}
	return template.MergeVars(provided, req.Vars), nil
}

// GradeFunctionCall validates a function-call style output against the
// declared function definitions. Absent or empty definition sets produce a
// failing Verdict; in function mode that is a model/config mismatch the test
// run should survive.
func (g *Grader) GradeFunctionCall(ctx context.Context, req GradeRequest) (*Verdict, error) {
	resolved, err := g.resolver.ResolveFunctions(ctx, req.Definitions)
	if err != nil {
		return nil, err
	}
	defs, err := tools.ParseFunctions(resolved)
	if err != nil {
		return nil, err
	}

	if len(defs) == 0 {
		return g.finalize(req, fail(&req, "No functions defined")), nil
	}

	calls, err := extractor.Extract(req.Output, extractor.ModeFunctionCall)
	if err != nil || len(calls) == 0 {
		// A recognized-but-empty call list is as much a non-answer as an
		// unrecognized shape: the model called nothing.
		reason := fmt.Sprintf("%s did not return a valid-looking function call", req.providerLabel())
		return g.finalize(req, fail(&req, reason)), nil
	}

	vars, err := g.gradeVars(ctx, req)
	if err != nil {
		return nil, err
	}

	verdict := g.gradeCalls(calls, vars, func(name string) (map[string]any, bool) {
		def, ok := tools.FindFunction(defs, name)
		return def.Parameters, ok
	})
	return g.finalize(req, attach(&req, verdict)), nil
}

// GradeToolCalls validates a tool-calls style output against the declared
// tool definitions. A wholly absent definition set raises ErrNoDefinitions:
// the assertion cannot be evaluated at all, which is programmer/config
// misuse rather than a model failure.
func (g *Grader) GradeToolCalls(ctx context.Context, req GradeRequest) (*Verdict, error) {
	resolved, err := g.resolver.ResolveTools(ctx, req.Definitions)
	if err != nil {
		return nil, err
	}
	defs, err := tools.ParseTools(resolved)
	if err != nil {
		return nil, err
	}

	if resolved == nil || defs == nil {
		return nil, ErrNoDefinitions
	}
	if len(defs) == 0 {
		return g.finalize(req, fail(&req, "No tools defined")), nil
	}

	calls, err := extractor.Extract(req.Output, extractor.ModeToolCalls)
	if err != nil || len(calls) == 0 {
		reason := fmt.Sprintf("%s did not return a valid-looking tools call", req.providerLabel())
		return g.finalize(req, fail(&req, reason)), nil
	}

	vars, err := g.gradeVars(ctx, req)
	if err != nil {
		return nil, err
	}

	verdict := g.gradeCalls(calls, vars, func(name string) (map[string]any, bool) {
		def, ok := tools.FindTool(defs, name)
		return def.Function.Parameters, ok
	})
	return g.finalize(req, attach(&req, verdict)), nil
}

// gradeCalls validates each extracted call against its schema, rendering
// vars independently per call. The first failure short-circuits.
func (g *Grader) gradeCalls(
	calls []extractor.Call,
	vars map[string]string,
	lookup func(name string) (map[string]any, bool),
) *Verdict {
	for _, call := range calls {
		schema, ok := lookup(call.Name)
		if !ok {
			return failReason(fmt.Sprintf("Called %q, but there is no function with that name", call.Name))
		}

		rendered := g.renderer.RenderValue(schema, vars)

		var args any
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return failReason(fmt.Sprintf("Call to %q has invalid JSON arguments: %v", call.Name, err))
		}

		result, err := gojsonschema.Validate(
			gojsonschema.NewGoLoader(rendered),
			gojsonschema.NewGoLoader(args),
		)
		if err != nil {
			return failReason(fmt.Sprintf("Call to %q could not be validated: %v", call.Name, err))
		}

		if !result.Valid() {
			details := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				details = append(details, formatSchemaError(desc))
			}
			return failReason(fmt.Sprintf("Call to %q does not match schema: %s",
				call.Name, strings.Join(details, ", ")))
		}
	}

	return &Verdict{Pass: true, Score: 1, Reason: PassReason}
}

// formatSchemaError normalizes validator error strings so reason texts stay
// deterministic across validator versions. Required-property violations get
// the canonical "must have required property" wording callers match on.
func formatSchemaError(desc gojsonschema.ResultError) string {
	if desc.Type() == "required" {
		if property, ok := desc.Details()["property"].(string); ok {
			return fmt.Sprintf("must have required property '%s'", property)
		}
	}
	return desc.String()
}

// finalize applies the inverse flag and stamps the record ID. The reason is
// documented as preserved under inversion, not re-derived.
func (g *Grader) finalize(req GradeRequest, v *Verdict) *Verdict {
	if req.Inverse {
		v.Pass = !v.Pass
		v.Score = scoreOf(v.Pass)
	}
	v.ID = uuid.NewString()
	logger.GradeOutcome("schema", v.Pass, v.Reason)
	return v
}

func attach(req *GradeRequest, v *Verdict) *Verdict {
	v.Assertion = req.Assertion
	return v
}

func fail(req *GradeRequest, reason string) *Verdict {
	return attach(req, failReason(reason))
}

func failReason(reason string) *Verdict {
	return &Verdict{Pass: false, Score: 0, Reason: reason}
}

func scoreOf(pass bool) float64 {
	if pass {
		return 1
	}
	return 0
}
