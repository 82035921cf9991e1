package tools

import "errors"

// Sentinel errors for definition parsing and validation.
var (
	// ErrMissingName is returned when a definition has no name.
	ErrMissingName = errors.New("definition name is required")

	// ErrDuplicateName is returned when two definitions share a name.
	ErrDuplicateName = errors.New("duplicate definition name")

	// ErrUnsupportedShape is returned when a resolved value cannot be
	// normalized into a definition set.
	ErrUnsupportedShape = errors.New("unsupported definitions shape")

	// ErrWrongManifestKind is returned when a manifest's kind is not ToolSet.
	ErrWrongManifestKind = errors.New("unexpected manifest kind")
)
