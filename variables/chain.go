package variables

import (
	"context"
	"fmt"
)

// ChainProvider merges the output of several providers into one variable
// map. Later providers win on key conflicts, so a grader can layer per-test
// Static values over an Env baseline.
type ChainProvider struct {
	providers []Provider
}

// Chain composes providers in merge order.
func Chain(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// Name returns the provider identifier.
func (c *ChainProvider) Name() string { return "chain" }

// Provide merges every chained provider's variables. The first provider
// error aborts the merge.
func (c *ChainProvider) Provide(ctx context.Context) (map[string]string, error) {
	merged := make(map[string]string)
	for _, p := range c.providers {
		vars, err := p.Provide(ctx)
		if err != nil {
			return nil, fmt.Errorf("variables provider %q: %w", p.Name(), err)
		}
		for key, value := range vars {
			merged[key] = value
		}
	}
	return merged, nil
}
