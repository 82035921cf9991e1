// Package extractor normalizes provider output into canonical call records.
//
// Model providers surface structured calls in several legal shapes: a bare
// function call, a nested function_call object, an array of tool calls, or a
// nested tool_calls array. Classify maps raw output onto a closed Shape enum
// once, and Extract converts the recognized shape into a flat []Call so the
// grading layer never re-inspects provider output.
package extractor

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/promptproof/promptproof/logger"
)

// ErrInvalidOutputShape is returned when provider output matches none of the
// recognized call shapes.
var ErrInvalidOutputShape = errors.New("invalid output shape")

// Call is one normalized function/tool call extracted from provider output.
// Arguments is always the raw JSON text of the call arguments; structured
// argument objects are re-encoded so downstream parsing is uniform.
type Call struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Mode selects the grading flavor, which determines the wording of shape
// errors surfaced to the caller.
type Mode string

const (
	// ModeFunctionCall grades a single function-call style output.
	ModeFunctionCall Mode = "function"
	// ModeToolCalls grades an array-of-tool-calls style output.
	ModeToolCalls Mode = "tools"
)

// Shape is the tagged classification of raw provider output.
type Shape int

const (
	// ShapeUnknown marks output matching no recognized call shape.
	ShapeUnknown Shape = iota
	// ShapeFunctionCall is a bare {name, arguments} object.
	ShapeFunctionCall
	// ShapeNestedFunctionCall is {function_call: {name, arguments}}.
	ShapeNestedFunctionCall
	// ShapeToolCallArray is [{type: "function", function: {...}}, ...].
	ShapeToolCallArray
	// ShapeNestedToolCalls is {tool_calls: [...]} wrapping a tool call array.
	ShapeNestedToolCalls
)

// String returns the shape name for logging.
func (s Shape) String() string {
	switch s {
	case ShapeFunctionCall:
		return "function_call"
	case ShapeNestedFunctionCall:
		return "nested_function_call"
	case ShapeToolCallArray:
		return "tool_call_array"
	case ShapeNestedToolCalls:
		return "nested_tool_calls"
	default:
		return "unknown"
	}
}

// Classify determines which call shape the raw output carries. It is a pure
// function over the decoded output value and never fails; unrecognized input
// yields ShapeUnknown.
func Classify(output any) Shape {
	switch v := output.(type) {
	case map[string]any:
		if isFunctionCall(v) {
			return ShapeFunctionCall
		}
		if nested, ok := v["function_call"].(map[string]any); ok && isFunctionCall(nested) {
			return ShapeNestedFunctionCall
		}
		if nested, ok := v["tool_calls"].([]any); ok && isToolCallArray(nested) {
			return ShapeNestedToolCalls
		}
	case []any:
		if isToolCallArray(v) {
			return ShapeToolCallArray
		}
	}
	return ShapeUnknown
}

// Extract normalizes output into a flat call list. All four recognized
// shapes carrying equivalent name/argument content produce equivalent
// results. Unrecognized output fails with ErrInvalidOutputShape, worded for
// the requested mode.
func Extract(output any, mode Mode) ([]Call, error) {
	shape := Classify(output)
	logger.Debug("extractor: classified provider output", "shape", shape.String(), "mode", string(mode))

	switch shape {
	case ShapeFunctionCall:
		call, err := toCall(output.(map[string]any))
		if err != nil {
			return nil, err
		}
		return []Call{call}, nil

	case ShapeNestedFunctionCall:
		nested := output.(map[string]any)["function_call"].(map[string]any)
		call, err := toCall(nested)
		if err != nil {
			return nil, err
		}
		return []Call{call}, nil

	case ShapeToolCallArray:
		return toCallList(output.([]any))

	case ShapeNestedToolCalls:
		return toCallList(output.(map[string]any)["tool_calls"].([]any))

	default:
		if mode == ModeToolCalls {
			return nil, fmt.Errorf("%w: tools mode expected an array of function-shaped objects", ErrInvalidOutputShape)
		}
		return nil, fmt.Errorf("%w: function-call mode expected an object", ErrInvalidOutputShape)
	}
}

// isFunctionCall reports whether m is a {name, arguments} record.
func isFunctionCall(m map[string]any) bool {
	name, ok := m["name"].(string)
	if !ok || name == "" {
		return false
	}
	_, hasArgs := m["arguments"]
	return hasArgs
}

// isToolCallArray reports whether every element wraps a function record.
// An empty array is a recognized (if vacuous) tool call list.
func isToolCallArray(items []any) bool {
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return false
		}
		fn, ok := entry["function"].(map[string]any)
		if !ok || !isFunctionCall(fn) {
			return false
		}
	}
	return true
}

func toCallList(items []any) ([]Call, error) {
	calls := make([]Call, 0, len(items))
	for _, item := range items {
		fn := item.(map[string]any)["function"].(map[string]any)
		call, err := toCall(fn)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

// toCall builds a Call from a {name, arguments} record, re-encoding
// structured arguments as JSON text.
func toCall(m map[string]any) (Call, error) {
	name := m["name"].(string)

	switch args := m["arguments"].(type) {
	case string:
		return Call{Name: name, Arguments: args}, nil
	case nil:
		return Call{Name: name, Arguments: "null"}, nil
	default:
		encoded, err := json.Marshal(args)
		if err != nil {
			return Call{}, fmt.Errorf("encoding arguments for call %q: %w", name, err)
		}
		return Call{Name: name, Arguments: string(encoded)}, nil
	}
}
