package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		output any
		want   Shape
	}{
		{
			name:   "bare function call",
			output: map[string]any{"name": "get_weather", "arguments": `{"city":"Boston"}`},
			want:   ShapeFunctionCall,
		},
		{
			name: "nested function call",
			output: map[string]any{
				"function_call": map[string]any{"name": "get_weather", "arguments": `{}`},
			},
			want: ShapeNestedFunctionCall,
		},
		{
			name: "tool call array",
			output: []any{
				map[string]any{
					"type":     "function",
					"function": map[string]any{"name": "get_weather", "arguments": `{}`},
				},
			},
			want: ShapeToolCallArray,
		},
		{
			name: "nested tool calls",
			output: map[string]any{
				"tool_calls": []any{
					map[string]any{
						"type":     "function",
						"function": map[string]any{"name": "get_weather", "arguments": `{}`},
					},
				},
			},
			want: ShapeNestedToolCalls,
		},
		{
			name:   "primitive",
			output: "not a call",
			want:   ShapeUnknown,
		},
		{
			name:   "array without function property",
			output: []any{map[string]any{"name": "get_weather"}},
			want:   ShapeUnknown,
		},
		{
			name:   "object missing recognized keys",
			output: map[string]any{"content": "hello"},
			want:   ShapeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.output))
		})
	}
}

// All four shapes carrying the same name/argument content must extract to
// the same call list.
func TestExtract_ShapeInvariance(t *testing.T) {
	args := `{"city":"Boston","unit":"celsius"}`
	fn := map[string]any{"name": "get_weather", "arguments": args}
	wrapped := map[string]any{"type": "function", "function": fn}

	shapes := map[string]any{
		"bare":         fn,
		"nested":       map[string]any{"function_call": fn},
		"array":        []any{wrapped},
		"nested array": map[string]any{"tool_calls": []any{wrapped}},
	}

	want := []Call{{Name: "get_weather", Arguments: args}}
	for name, output := range shapes {
		t.Run(name, func(t *testing.T) {
			calls, err := Extract(output, ModeFunctionCall)
			require.NoError(t, err)
			assert.Equal(t, want, calls)
		})
	}
}

func TestExtract_MultipleToolCalls(t *testing.T) {
	output := []any{
		map[string]any{
			"type":     "function",
			"function": map[string]any{"name": "first", "arguments": `{"a":1}`},
		},
		map[string]any{
			"type":     "function",
			"function": map[string]any{"name": "second", "arguments": `{"b":2}`},
		},
	}

	calls, err := Extract(output, ModeToolCalls)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "first", calls[0].Name)
	assert.Equal(t, "second", calls[1].Name)
}

func TestExtract_StructuredArgumentsReencoded(t *testing.T) {
	output := map[string]any{
		"name":      "get_weather",
		"arguments": map[string]any{"city": "Boston"},
	}

	calls, err := Extract(output, ModeFunctionCall)
	require.NoError(t, err)
	assert.JSONEq(t, `{"city":"Boston"}`, calls[0].Arguments)
}

func TestExtract_InvalidShape_FunctionMode(t *testing.T) {
	_, err := Extract("plain text", ModeFunctionCall)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOutputShape)
	assert.Contains(t, err.Error(), "function-call mode expected an object")
}

func TestExtract_InvalidShape_ToolsMode(t *testing.T) {
	_, err := Extract([]any{map[string]any{"no": "function"}}, ModeToolCalls)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOutputShape)
	assert.Contains(t, err.Error(), "tools mode expected an array of function-shaped objects")
}

func TestExtract_EmptyToolCallArray(t *testing.T) {
	calls, err := Extract([]any{}, ModeToolCalls)
	require.NoError(t, err)
	assert.Empty(t, calls)
}
