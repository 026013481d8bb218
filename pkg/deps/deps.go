package deps

import (
	"slices"
)

// DefaultSentinel is the marker package databases print for "no dependencies"
// (pacman's "Depends On : None").
const DefaultSentinel = "None"

// Options configures dependency resolution behavior.
type Options struct {
	Sentinel string               // "no dependencies" marker (default: "None")
	MaxDepth int                  // Stop querying below this depth; 0 means unlimited
	Logger   func(string, ...any) // Absorbed-failure callback (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Sentinel == "" {
		opts.Sentinel = DefaultSentinel
	}
	if opts.MaxDepth < 0 {
		opts.MaxDepth = 0
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// Visit is one emission of the resolver.
type Visit struct {
	Token  string `json:"token"`            // Raw dependency token as reported by the source
	Name   string `json:"name"`             // Token with its version constraint stripped
	Parent string `json:"parent,omitempty"` // Raw token whose expansion enqueued this one; empty for seeds
	Depth  int    `json:"depth"`            // 0 for seeds
}

// Edge is a dependency between two raw tokens as reported by the source.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result holds a completed resolution.
type Result struct {
	Seeds  []string `json:"seeds"`
	Visits []Visit  `json:"visits"`
	Edges  []Edge   `json:"edges"`
}

// Names returns the normalized names in discovery order. Distinct raw tokens
// that normalize to the same name (foo, foo>=2) each contribute an entry.
func (r *Result) Names() []string {
	names := make([]string, len(r.Visits))
	for i, v := range r.Visits {
		names[i] = v.Name
	}
	return names
}

// Tokens returns the raw tokens in the order they were expanded.
func (r *Result) Tokens() []string {
	tokens := make([]string, len(r.Visits))
	for i, v := range r.Visits {
		tokens[i] = v.Token
	}
	return tokens
}

// SortedUnique returns the normalized names sorted and deduplicated, the
// view installers consume.
func (r *Result) SortedUnique() []string {
	names := r.Names()
	slices.Sort(names)
	return slices.Compact(names)
}

// Len returns the number of emissions.
func (r *Result) Len() int { return len(r.Visits) }
