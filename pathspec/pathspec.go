// Package pathspec parses reference path strings into structured descriptors.
//
// A reference path may carry a file:// prefix, resolve relative to a base
// directory, name a glob pattern or directory, and append a :functionName
// suffix selecting an entry point inside a script file. Parse classifies all
// of these deterministically so callers can dispatch without re-inspecting
// the raw string.
package pathspec

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileScheme is the URI prefix marking a string as a file reference.
const FileScheme = "file://"

// ErrFileNotFound is returned in strict mode when the referenced path does not exist.
var ErrFileNotFound = errors.New("file not found")

// globMeta are the metacharacters that mark a path as a glob pattern.
const globMeta = "*?["

// Descriptor is the structured form of one reference path.
type Descriptor struct {
	// FilePath is the resolved filesystem path (absolute paths kept as-is,
	// relative paths joined onto the base path).
	FilePath string `json:"file_path" yaml:"file_path"`

	// Extension is the final ".ext" segment of the base name, or "" when the
	// name has no dot. Always "" when IsPathPattern is true.
	Extension string `json:"extension,omitempty" yaml:"extension,omitempty"`

	// FunctionName is the entry point split off a trailing ":name" suffix.
	// Always "" when IsPathPattern is true.
	FunctionName string `json:"function_name,omitempty" yaml:"function_name,omitempty"`

	// IsPathPattern is true when the path is an existing directory or
	// contains glob metacharacters.
	IsPathPattern bool `json:"is_path_pattern" yaml:"is_path_pattern"`
}

// StatFunc is the filesystem stat collaborator used for existence checks.
type StatFunc func(name string) (fs.FileInfo, error)

// Option configures Parse behavior.
type Option func(*parser)

// WithStrict makes Parse fail with ErrFileNotFound when the referenced
// path does not exist. Without it a best-effort descriptor is returned.
func WithStrict() Option {
	return func(p *parser) { p.strict = true }
}

// WithStat injects the stat collaborator. Used by tests to simulate
// directories and missing files without touching the real filesystem.
func WithStat(stat StatFunc) Option {
	return func(p *parser) { p.stat = stat }
}

type parser struct {
	strict bool
	stat   StatFunc
}

// Parse classifies rawPath into a Descriptor.
//
// The optional file:// prefix is stripped first. Relative paths resolve
// against basePath; absolute paths (leading separator or a Windows drive
// designator) ignore it. A trailing :functionName suffix is split off before
// any filesystem access, so a missing script file still reports its function
// name when strict mode is off.
func Parse(basePath, rawPath string, opts ...Option) (*Descriptor, error) {
	p := &parser{stat: os.Stat}
	for _, opt := range opts {
		opt(p)
	}

	trimmed := strings.TrimPrefix(rawPath, FileScheme)
	pathPart, functionName := splitFunctionSuffix(trimmed)

	filePath := pathPart
	if !isAbsolutePath(pathPart) {
		filePath = filepath.Join(basePath, pathPart)
	}

	desc := &Descriptor{
		FilePath:     filePath,
		Extension:    filepath.Ext(filepath.Base(filePath)),
		FunctionName: functionName,
	}

	info, err := p.stat(filePath)
	switch {
	case err != nil && strings.ContainsAny(filePath, globMeta):
		// Glob patterns never stat cleanly; classification below handles them.
	case err != nil:
		if p.strict {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		// Best effort: keep the parsed extension and function name.
	case info.IsDir():
		desc.IsPathPattern = true
	}

	if strings.ContainsAny(filePath, globMeta) {
		desc.IsPathPattern = true
	}

	if desc.IsPathPattern {
		desc.Extension = ""
		desc.FunctionName = ""
	}

	return desc, nil
}

// splitFunctionSuffix separates a trailing ":functionName" from the path.
// The colon must come after the file extension and must not be a Windows
// drive designator (C:), so "C:\work\hook.py" parses as a plain path while
// "C:\work\hook.py:setup" yields function name "setup".
func splitFunctionSuffix(p string) (path, functionName string) {
	idx := strings.LastIndex(p, ":")
	if idx <= 0 {
		return p, ""
	}
	if idx == 1 && isDriveLetter(p[0]) {
		return p, ""
	}

	name := p[idx+1:]
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return p, ""
	}

	base := p[:idx]
	if filepath.Ext(filepath.Base(base)) == "" {
		return p, ""
	}
	return base, name
}

// isAbsolutePath reports whether p should ignore the base path. It accepts
// both native absolute paths and Windows-style drive paths regardless of the
// host OS, since reference strings may originate on either platform.
func isAbsolutePath(p string) bool {
	if filepath.IsAbs(p) {
		return true
	}
	return len(p) >= 2 && isDriveLetter(p[0]) && p[1] == ':'
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
