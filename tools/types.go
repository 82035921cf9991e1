// Package tools defines tool and function declaration types for grading.
//
// A FunctionDefinition names a JSON Schema describing the expected shape of a
// model's structured call arguments. A ToolDefinition wraps a function
// definition in the provider wire form ({type: "function", function: {...}}).
// Definition sets arrive either inline in assertion configuration or loaded
// from files, including K8s-style ToolSet manifests.
package tools

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// FunctionDefinition declares one callable function and its parameter schema.
type FunctionDefinition struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters"`
}

// ToolDefinition is the provider wire form wrapping a function definition.
type ToolDefinition struct {
	Type     string             `json:"type" yaml:"type"`
	Function FunctionDefinition `json:"function" yaml:"function"`
}

// ManifestKind is the accepted kind for definition manifests.
const ManifestKind = "ToolSet"

// Manifest is a K8s-style configuration document carrying a definition set.
type Manifest struct {
	APIVersion string            `json:"apiVersion" yaml:"apiVersion"`
	Kind       string            `json:"kind" yaml:"kind"`
	Metadata   metav1.ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Spec       ManifestSpec      `json:"spec" yaml:"spec"`
}

// ManifestSpec holds the declared definitions. A manifest carries tools or
// bare functions, not both.
type ManifestSpec struct {
	Tools     []ToolDefinition     `json:"tools,omitempty" yaml:"tools,omitempty"`
	Functions []FunctionDefinition `json:"functions,omitempty" yaml:"functions,omitempty"`
}

// FindFunction looks up a definition by exact, case-sensitive name.
// The second return is false when no definition matches.
func FindFunction(defs []FunctionDefinition, name string) (FunctionDefinition, bool) {
	for _, def := range defs {
		if def.Name == name {
			return def, true
		}
	}
	return FunctionDefinition{}, false
}

// FindTool looks up a tool definition by its function's exact name.
func FindTool(defs []ToolDefinition, name string) (ToolDefinition, bool) {
	for _, def := range defs {
		if def.Function.Name == name {
			return def, true
		}
	}
	return ToolDefinition{}, false
}

// ValidateFunctions checks the definition set invariants: every definition
// is named and names are unique.
func ValidateFunctions(defs []FunctionDefinition) error {
	seen := make(map[string]bool, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			return fmt.Errorf("%w: definition at index %d", ErrMissingName, i)
		}
		if seen[def.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, def.Name)
		}
		seen[def.Name] = true
	}
	return nil
}

// ValidateTools checks the tool set invariants via the wrapped functions.
func ValidateTools(defs []ToolDefinition) error {
	fns := make([]FunctionDefinition, len(defs))
	for i, def := range defs {
		fns[i] = def.Function
	}
	return ValidateFunctions(fns)
}
