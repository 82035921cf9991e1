// Package variables provides test variable resolution for assertion grading.
// Variable providers assemble the map rendered into tool definition schemas
// before validation: static per-test values, process environment values, or
// any combination chained together.
package variables

import (
	"context"
	"os"
	"strings"
)

// Provider resolves variables dynamically at grading time.
// Variables returned override static variables with the same key.
// Providers are called before schema rendering to inject context.
type Provider interface {
	// Name returns the provider identifier (for logging/debugging)
	Name() string

	// Provide returns variables to merge into the grading context.
	Provide(ctx context.Context) (map[string]string, error)
}

// StaticProvider serves a fixed variable map. Used for per-test vars
// declared inline in assertion configuration.
type StaticProvider struct {
	vars map[string]string
}

// Static creates a provider that always returns the given map.
func Static(vars map[string]string) *StaticProvider {
	return &StaticProvider{vars: vars}
}

// Name returns the provider identifier.
func (s *StaticProvider) Name() string { return "static" }

// Provide returns a copy of the static map so callers may mutate freely.
func (s *StaticProvider) Provide(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out, nil
}

// EnvProvider exposes process environment variables, optionally filtered
// by a name prefix. The prefix is stripped from the resulting keys.
type EnvProvider struct {
	prefix string
}

// Env creates a provider over the process environment. With an empty prefix
// every environment variable is exposed under its own name.
func Env(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// Name returns the provider identifier.
func (e *EnvProvider) Name() string { return "env" }

// Provide returns matching environment variables.
func (e *EnvProvider) Provide(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	for _, entry := range os.Environ() {
		key, value, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		if e.prefix != "" {
			if !strings.HasPrefix(key, e.prefix) {
				continue
			}
			key = strings.TrimPrefix(key, e.prefix)
		}
		out[key] = value
	}
	return out, nil
}
