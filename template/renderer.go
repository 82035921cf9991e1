// Package template provides template rendering and variable substitution.
//
// This package implements the {{ var }} substitution used across the grading
// pipeline. It supports:
//   - Variable substitution with {{variable}} or {{ variable }} syntax
//   - Recursive template resolution (variables can contain other variables)
//   - A restricted {{ env.VAR }} context for reference path strings
//   - Deep rendering of nested maps and slices (schema injection)
package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// placeholderPattern matches {{ name }} with optional inner whitespace.
// Names may be dotted (env.HOME) to address namespaced contexts.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}\}`)

// envNamespace is the only namespace exposed when rendering reference paths.
const envNamespace = "env."

// Renderer handles variable substitution in templates
type Renderer struct{}

// NewRenderer creates a new template renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render applies variable substitution to the template with recursive resolution.
//
// The renderer performs multiple passes (up to maxPasses) to handle nested
// variable substitution. For example, if var1="{{var2}}" and var2="value",
// the final result will correctly resolve to "value".
//
// Returns an error if any placeholders remain unresolved after all passes.
func (r *Renderer) Render(templateText string, vars map[string]string) (string, error) {
	result := r.RenderLoose(templateText, vars)

	if unresolved := findPlaceholders(result); len(unresolved) > 0 {
		return "", fmt.Errorf("unresolved template placeholders: %v", unresolved)
	}

	return result, nil
}

// RenderLoose substitutes known variables and leaves unknown placeholders
// intact. Schema text may legitimately contain brace pairs that are not
// variables, so the loose form never fails.
func (r *Renderer) RenderLoose(templateText string, vars map[string]string) string {
	result := templateText

	maxPasses := 3
	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		result = placeholderPattern.ReplaceAllStringFunc(result, func(match string) string {
			name := placeholderPattern.FindStringSubmatch(match)[1]
			if value, ok := vars[name]; ok {
				changed = true
				return value
			}
			return match
		})
		if !changed {
			break
		}
	}

	return result
}

// RenderEnv substitutes {{ env.VAR }} placeholders from the process
// environment. Only the env namespace is exposed; any other placeholder is
// left intact, as are env names not present in the environment.
func (r *Renderer) RenderEnv(text string) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if !strings.HasPrefix(name, envNamespace) {
			return match
		}
		if value, ok := os.LookupEnv(strings.TrimPrefix(name, envNamespace)); ok {
			return value
		}
		return match
	})
}

// RenderValue walks nested maps and slices, loose-rendering every string
// leaf. Used to inject test variables into tool definition schemas before
// validation. The input is not mutated; a rendered copy is returned.
func (r *Renderer) RenderValue(v any, vars map[string]string) any {
	switch val := v.(type) {
	case string:
		return r.RenderLoose(val, vars)
	case map[string]any:
		rendered := make(map[string]any, len(val))
		for k, item := range val {
			rendered[k] = r.RenderValue(item, vars)
		}
		return rendered
	case []any:
		rendered := make([]any, len(val))
		for i, item := range val {
			rendered[i] = r.RenderValue(item, vars)
		}
		return rendered
	default:
		return val
	}
}

// MergeVars merges multiple variable maps with later maps taking precedence.
// This is useful for combining default values, context variables, and overrides.
func MergeVars(varMaps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, vars := range varMaps {
		for k, v := range vars {
			result[k] = v
		}
	}
	return result
}

// findPlaceholders extracts {{variable}} placeholders remaining in text.
// Used for error reporting when strict rendering fails.
func findPlaceholders(text string) []string {
	matches := placeholderPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	return matches
}
