package tools

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseFunctions normalizes a resolved definitions value into a function
// definition set. Accepted inputs: a typed slice (inline config), a decoded
// []any of definition maps, a ToolSet manifest document, or raw JSON/YAML
// text. The returned set is validated (named, unique names).
func ParseFunctions(v any) ([]FunctionDefinition, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []FunctionDefinition:
		return val, ValidateFunctions(val)
	case string:
		decoded, err := decodeText(val)
		if err != nil {
			return nil, err
		}
		return ParseFunctions(decoded)
	case Manifest:
		return manifestFunctions(val)
	case map[string]any:
		manifest, err := decodeManifest(val)
		if err != nil {
			return nil, err
		}
		return manifestFunctions(manifest)
	case []any:
		var defs []FunctionDefinition
		if err := reencode(val, &defs); err != nil {
			return nil, err
		}
		return defs, ValidateFunctions(defs)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, v)
	}
}

// ParseTools normalizes a resolved definitions value into a tool definition
// set, with the same accepted inputs as ParseFunctions.
func ParseTools(v any) ([]ToolDefinition, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []ToolDefinition:
		return val, ValidateTools(val)
	case string:
		decoded, err := decodeText(val)
		if err != nil {
			return nil, err
		}
		return ParseTools(decoded)
	case Manifest:
		return manifestTools(val)
	case map[string]any:
		manifest, err := decodeManifest(val)
		if err != nil {
			return nil, err
		}
		return manifestTools(manifest)
	case []any:
		var defs []ToolDefinition
		if err := reencode(val, &defs); err != nil {
			return nil, err
		}
		return defs, ValidateTools(defs)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, v)
	}
}

func manifestFunctions(m Manifest) ([]FunctionDefinition, error) {
	if m.Kind != ManifestKind {
		return nil, fmt.Errorf("%w: %q", ErrWrongManifestKind, m.Kind)
	}
	defs := m.Spec.Functions
	if len(defs) == 0 {
		// A tools manifest still serves function-mode grading unwrapped.
		for _, tool := range m.Spec.Tools {
			defs = append(defs, tool.Function)
		}
	}
	return defs, ValidateFunctions(defs)
}

func manifestTools(m Manifest) ([]ToolDefinition, error) {
	if m.Kind != ManifestKind {
		return nil, fmt.Errorf("%w: %q", ErrWrongManifestKind, m.Kind)
	}
	return m.Spec.Tools, ValidateTools(m.Spec.Tools)
}

// decodeText parses raw definition text. YAML is a superset of JSON, so a
// single decode path serves both formats.
func decodeText(text string) (any, error) {
	var decoded any
	if err := yaml.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("parsing definitions text: %w", err)
	}
	return decoded, nil
}

// decodeManifest converts a decoded document map into a Manifest.
// A bare map that is not manifest-shaped is rejected: definition sets must
// be arrays or manifests, never loose objects.
func decodeManifest(doc map[string]any) (Manifest, error) {
	if _, ok := doc["kind"]; !ok {
		return Manifest{}, fmt.Errorf("%w: object without kind", ErrUnsupportedShape)
	}
	var manifest Manifest
	if err := reencode(doc, &manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// reencode converts between decoded-any and typed representations through a
// JSON round trip.
func reencode(from, to any) error {
	raw, err := json.Marshal(from)
	if err != nil {
		return fmt.Errorf("normalizing definitions: %w", err)
	}
	if err := json.Unmarshal(raw, to); err != nil {
		return fmt.Errorf("normalizing definitions: %w", err)
	}
	return nil
}
