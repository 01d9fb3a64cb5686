package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Chain tries providers in order until one answers with a usable response.
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

func NewChain(providers []Provider, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{providers: providers, logger: logger}
}

func (c *Chain) Len() int {
	return len(c.providers)
}

// Names lists the providers in order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Without returns a chain minus the named providers.
func (c *Chain) Without(names ...string) *Chain {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := &Chain{logger: c.logger}
	for _, p := range c.providers {
		if !skip[p.Name()] {
			out.providers = append(out.providers, p)
		}
	}
	return out
}

// Do sends req to each provider until accept returns nil for a response.
// It returns the provider that answered, or every failure joined.
func (c *Chain) Do(ctx context.Context, req Request, accept func(string) error) (Provider, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}

	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		text, err := p.Complete(ctx, req)
		if err == nil {
			err = accept(text)
		}
		if err == nil {
			return p, nil
		}
		c.logger.Warn("provider failed",
			"provider", p.Name(),
			"prompt", req.Kind,
			"error_type", ClassifyError(err),
			"error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return nil, errors.Join(errs...)
}
