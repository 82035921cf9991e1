package assertions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeCallArgsPath_Pass(t *testing.T) {
	g := NewGrader(nil)

	verdict, err := g.GradeCallArgsPath(context.Background(), ArgsPathRequest{
		Output:   functionCall(`{"city":"Boston","options":{"unit":"celsius"}}`),
		Call:     "get_weather",
		Path:     "options.unit",
		Expected: "celsius",
	})
	require.NoError(t, err)

	assert.True(t, verdict.Pass)
	assert.Equal(t, "Assertion passed", verdict.Reason)
}

func TestGradeCallArgsPath_Mismatch(t *testing.T) {
	g := NewGrader(nil)

	verdict, err := g.GradeCallArgsPath(context.Background(), ArgsPathRequest{
		Output:   functionCall(`{"city":"Boston"}`),
		Call:     "get_weather",
		Path:     "city",
		Expected: "Chicago",
	})
	require.NoError(t, err)

	assert.False(t, verdict.Pass)
	assert.Contains(t, verdict.Reason, `argument path "city"`)
	assert.Contains(t, verdict.Reason, `"Boston"`)
	assert.Contains(t, verdict.Reason, `"Chicago"`)
}

func TestGradeCallArgsPath_NumericComparison(t *testing.T) {
	g := NewGrader(nil)

	// Expected int compares equal to the decoded float through normalization.
	verdict, err := g.GradeCallArgsPath(context.Background(), ArgsPathRequest{
		Output:   functionCall(`{"days":3}`),
		Call:     "get_weather",
		Path:     "days",
		Expected: 3,
	})
	require.NoError(t, err)
	assert.True(t, verdict.Pass)
}

func TestGradeCallArgsPath_UnknownCall(t *testing.T) {
	g := NewGrader(nil)

	verdict, err := g.GradeCallArgsPath(context.Background(), ArgsPathRequest{
		Output:   functionCall(`{}`),
		Call:     "get_forecast",
		Path:     "city",
		Expected: "Boston",
	})
	require.NoError(t, err)

	assert.False(t, verdict.Pass)
	assert.Contains(t, verdict.Reason, `Called "get_forecast", but there is no function with that name`)
}

func TestGradeCallArgsPath_InvalidShape(t *testing.T) {
	g := NewGrader(nil)

	verdict, err := g.GradeCallArgsPath(context.Background(), ArgsPathRequest{
		Output:   42,
		Call:     "get_weather",
		Path:     "city",
		Expected: "Boston",
		Provider: "openai:gpt-4",
	})
	require.NoError(t, err)

	assert.False(t, verdict.Pass)
	assert.Equal(t, "openai:gpt-4 did not return a valid-looking function call", verdict.Reason)
}

func TestGradeCallArgsPath_Inverse(t *testing.T) {
	g := NewGrader(nil)

	verdict, err := g.GradeCallArgsPath(context.Background(), ArgsPathRequest{
		Output:   functionCall(`{"city":"Boston"}`),
		Call:     "get_weather",
		Path:     "city",
		Expected: "Boston",
		Inverse:  true,
	})
	require.NoError(t, err)

	assert.False(t, verdict.Pass)
	assert.Equal(t, "Assertion passed", verdict.Reason)
}

func TestGradeCallArgsPath_InvalidExpression(t *testing.T) {
	g := NewGrader(nil)

	_, err := g.GradeCallArgsPath(context.Background(), ArgsPathRequest{
		Output:   functionCall(`{"city":"Boston"}`),
		Call:     "get_weather",
		Path:     "city[",
		Expected: "Boston",
	})
	require.Error(t, err)
}
