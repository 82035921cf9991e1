package resolver

import "strings"

// Kind is the closed set of resource formats the resolver dispatches over.
// It is computed once from the path extension so the dispatcher stays total.
type Kind int

const (
	// KindRawText covers any extension without a structured handler.
	KindRawText Kind = iota
	// KindJSON is a .json document.
	KindJSON
	// KindYAML is a .yaml/.yml document.
	KindYAML
	// KindJSModule is a JavaScript/TypeScript module to load and invoke.
	KindJSModule
	// KindPyScript is a Python script invoked through the interpreter bridge.
	KindPyScript
)

// KindForExtension maps a file extension (with leading dot) onto a Kind.
// Unknown extensions, including the empty string, fall back to raw text.
func KindForExtension(ext string) Kind {
	switch strings.ToLower(ext) {
	case ".json":
		return KindJSON
	case ".yaml", ".yml":
		return KindYAML
	case ".js", ".mjs", ".cjs", ".ts":
		return KindJSModule
	case ".py":
		return KindPyScript
	default:
		return KindRawText
	}
}

// String returns the kind name for logging.
func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindYAML:
		return "yaml"
	case KindJSModule:
		return "js_module"
	case KindPyScript:
		return "py_script"
	default:
		return "raw_text"
	}
}
