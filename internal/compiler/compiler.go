// Package compiler turns explore definitions into compiled explores.
//
// Every field's SQL template is expanded depth-first: ${TABLE} becomes the
// quoted table name and ${table.field} becomes the referenced field's
// compiled SQL. One session is shared across the whole explore, so
// reference cycles spanning tables are detected and each field is resolved
// once no matter how many fields reference it.
package compiler

import (
	"semantic-compiler/internal/domain"
	"semantic-compiler/internal/filter"
)

// Compiler compiles explores. It holds no per-call state and is safe for
// concurrent use.
type Compiler struct {
	quotes   filter.Quotes
	renderer *filter.Renderer
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithQuotes sets the quoting used for ${TABLE}. The metric filter renderer
// is given the same quotes unless WithRenderer is also used.
func WithQuotes(q filter.Quotes) Option {
	return func(c *Compiler) { c.quotes = q }
}

// WithRenderer sets the renderer used for metric filters.
func WithRenderer(r *filter.Renderer) Option {
	return func(c *Compiler) { c.renderer = r }
}

// New returns a Compiler with ANSI quoting.
func New(opts ...Option) *Compiler {
	c := &Compiler{quotes: filter.DefaultQuotes}
	for _, opt := range opts {
		opt(c)
	}
	if c.renderer == nil {
		c.renderer = filter.NewRenderer(filter.WithQuotes(c.quotes))
	}
	return c
}

// CompileExplore compiles explore with a default Compiler.
func CompileExplore(explore domain.Explore) (*domain.CompiledExplore, error) {
	return New().CompileExplore(explore)
}
