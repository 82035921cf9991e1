// Package resolver turns reference strings into concrete in-memory values.
//
// A reference is a string starting with file:// that points at a local
// resource: a JSON or YAML document, a JavaScript/TypeScript module, a Python
// script, or plain text. Values that are not references pass through
// unchanged, so callers can hand the resolver any assertion config value.
// Script-backed references are loaded through ScriptLoader bridges and their
// entry points invoked with no arguments.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/promptproof/promptproof/logger"
	"github.com/promptproof/promptproof/pathspec"
	"github.com/promptproof/promptproof/template"
)

// ErrMissingFunctionName is returned when a Python reference has no entry
// point, neither an explicit :name suffix nor a caller-supplied default.
var ErrMissingFunctionName = errors.New("script reference requires a function name")

// Default entry point conventions for script-backed definition sources.
const (
	// DefaultToolsFunction is the entry point invoked for tool definitions.
	DefaultToolsFunction = "get_tools"
	// DefaultFunctionsFunction is the entry point invoked for function definitions.
	DefaultFunctionsFunction = "get_functions"
)

// Resolver resolves file:// references against a base path.
// The zero value is not usable; construct with New.
type Resolver struct {
	basePath string
	strict   bool
	js       ScriptLoader
	py       ScriptLoader
	renderer *template.Renderer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBasePath sets the directory relative references resolve against.
func WithBasePath(basePath string) Option {
	return func(r *Resolver) { r.basePath = basePath }
}

// WithStrict makes path parsing fail on nonexistent plain-file references
// at parse time rather than read time.
func WithStrict() Option {
	return func(r *Resolver) { r.strict = true }
}

// WithJSLoader replaces the JavaScript module loader.
func WithJSLoader(l ScriptLoader) Option {
	return func(r *Resolver) { r.js = l }
}

// WithPythonLoader replaces the Python script loader.
func WithPythonLoader(l ScriptLoader) Option {
	return func(r *Resolver) { r.py = l }
}

// New creates a Resolver with subprocess script bridges by default.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		js:       &NodeLoader{},
		py:       &PythonLoader{},
		renderer: template.NewRenderer(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves value if it is a file:// reference (or a list of them),
// returning anything else unchanged. Script references with no explicit
// function suffix get no default entry point.
func (r *Resolver) Resolve(ctx context.Context, value any) (any, error) {
	return r.resolve(ctx, value, "")
}

// ResolveTools is Resolve with the get_tools entry point convention for
// Python-backed definition sources.
func (r *Resolver) ResolveTools(ctx context.Context, value any) (any, error) {
	return r.resolve(ctx, value, DefaultToolsFunction)
}

// ResolveFunctions is Resolve with the get_functions entry point convention
// for Python-backed definition sources.
func (r *Resolver) ResolveFunctions(ctx context.Context, value any) (any, error) {
	return r.resolve(ctx, value, DefaultFunctionsFunction)
}

func (r *Resolver) resolve(ctx context.Context, value any, defaultFn string) (any, error) {
	switch v := value.(type) {
	case string:
		if !strings.HasPrefix(v, pathspec.FileScheme) {
			return value, nil
		}
		return r.resolveReference(ctx, v, defaultFn)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return r.resolveList(ctx, items, defaultFn)
	case []any:
		return r.resolveList(ctx, v, defaultFn)
	default:
		return value, nil
	}
}

// resolveList resolves entries concurrently. Output order mirrors input
// order by index regardless of resolution latency.
func (r *Resolver) resolveList(ctx context.Context, items []any, defaultFn string) ([]any, error) {
	resolved := make([]any, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			value, err := r.resolve(gctx, item, defaultFn)
			if err != nil {
				return err
			}
			resolved[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

// resolveReference resolves one file:// reference string.
func (r *Resolver) resolveReference(ctx context.Context, reference, defaultFn string) (any, error) {
	// Paths may embed {{ env.VAR }} placeholders; only the env namespace is
	// exposed at this stage, independent of schema variable rendering.
	rendered := r.renderer.RenderEnv(reference)

	opts := []pathspec.Option{}
	if r.strict {
		opts = append(opts, pathspec.WithStrict())
	}
	desc, err := pathspec.Parse(r.basePath, rendered, opts...)
	if err != nil {
		return nil, err
	}

	if desc.IsPathPattern {
		return r.resolvePattern(ctx, desc.FilePath, defaultFn)
	}
	return r.resolvePath(ctx, desc.FilePath, desc.Extension, desc.FunctionName, defaultFn)
}

// resolvePath dispatches one concrete filesystem path on its format kind.
func (r *Resolver) resolvePath(ctx context.Context, filePath, ext, functionName, defaultFn string) (any, error) {
	kind := KindForExtension(ext)
	logger.Debug("resolver: dispatching reference",
		"path", filePath, "kind", kind.String(), "function", functionName)

	switch kind {
	case KindJSON:
		raw, err := r.readFile(filePath)
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("parsing JSON %s: %w", filePath, err)
		}
		return decoded, nil

	case KindYAML:
		raw, err := r.readFile(filePath)
		if err != nil {
			return nil, err
		}
		var decoded any
		if err := yaml.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("parsing YAML %s: %w", filePath, err)
		}
		return decoded, nil

	case KindJSModule:
		if err := r.checkExists(filePath); err != nil {
			return nil, err
		}
		// Named export when a suffix is present, default export otherwise.
		// The loader returns non-callable exports as data.
		return r.js.Invoke(ctx, filePath, functionName)

	case KindPyScript:
		if functionName == "" {
			functionName = defaultFn
		}
		if functionName == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingFunctionName, filePath)
		}
		if err := r.checkExists(filePath); err != nil {
			return nil, err
		}
		return r.py.Invoke(ctx, filePath, functionName)

	default:
		raw, err := r.readFile(filePath)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
}

// resolvePattern expands a glob or directory reference and resolves every
// match, returning values in lexical match order. Matches already carry the
// base path from parsing, so they dispatch directly rather than re-entering
// reference parsing, which would join the base path a second time.
func (r *Resolver) resolvePattern(ctx context.Context, path, defaultFn string) (any, error) {
	pattern := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		pattern = filepath.Join(path, "*")
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no matches for %s", pathspec.ErrFileNotFound, pattern)
	}

	resolved := make([]any, len(matches))
	g, gctx := errgroup.WithContext(ctx)
	for i, match := range matches {
		i, match := i, match
		g.Go(func() error {
			value, err := r.resolveMatch(gctx, match, defaultFn)
			if err != nil {
				return err
			}
			resolved[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

// resolveMatch resolves one glob match; matched directories expand
// recursively.
func (r *Resolver) resolveMatch(ctx context.Context, match, defaultFn string) (any, error) {
	if info, err := os.Stat(match); err == nil && info.IsDir() {
		return r.resolvePattern(ctx, match, defaultFn)
	}
	return r.resolvePath(ctx, match, filepath.Ext(match), "", defaultFn)
}

func (r *Resolver) readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", pathspec.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}

func (r *Resolver) checkExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", pathspec.ErrFileNotFound, path)
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	return nil
}
