package deps

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// Catalog answers the lookups provider resolution needs.
type Catalog interface {
	// Known reports whether name is a concrete package in the database.
	Known(ctx context.Context, name string) (bool, error)
	// Search returns package names matching all terms, in the database's
	// own ranking order.
	Search(ctx context.Context, terms []string) ([]string, error)
}

// ProviderOptions configures a ProviderResolver.
type ProviderOptions struct {
	// Choose picks a provider when a search returns several candidates.
	// When nil the first candidate wins.
	Choose func(dep string, candidates []string) (string, error)
	Logger func(string, ...any)
}

// ProviderResolver maps dependency names, which may be virtual ("sh",
// "java-runtime"), to concrete installable packages.
type ProviderResolver struct {
	catalog Catalog
	choose  func(string, []string) (string, error)
	logger  func(string, ...any)
}

// NewProviderResolver creates a ProviderResolver backed by cat.
func NewProviderResolver(cat Catalog, opts ProviderOptions) *ProviderResolver {
	logger := opts.Logger
	if logger == nil {
		logger = func(string, ...any) {}
	}
	return &ProviderResolver{catalog: cat, choose: opts.Choose, logger: logger}
}

// Provider returns the concrete package that satisfies dep.
//
// A dep the catalog already knows is its own provider. Otherwise the
// constraint is stripped, the remainder is split on whitespace into search
// terms, and the first search result is taken.
func (p *ProviderResolver) Provider(ctx context.Context, dep string) (string, error) {
	name := StripConstraint(dep)

	known, err := p.catalog.Known(ctx, dep)
	if err != nil {
		return "", err
	}
	if known {
		return name, nil
	}

	terms := strings.Fields(name)
	if len(terms) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "empty dependency %q", dep)
	}

	candidates, err := p.catalog.Search(ctx, terms)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", errors.New(errors.ErrCodeProviderNotFound, "no package provides %q", dep)
	}

	if len(candidates) > 1 && p.choose != nil {
		chosen, err := p.choose(dep, candidates)
		if err != nil {
			return "", err
		}
		if !slices.Contains(candidates, chosen) {
			return "", errors.New(errors.ErrCodeInvalidInput, "%q is not a candidate for %q", chosen, dep)
		}
		return chosen, nil
	}

	p.logger("%s provided by %s (%d candidates)", dep, candidates[0], len(candidates))
	return candidates[0], nil
}

// Providers resolves every dependency in order and stops at the first
// failure. It returns the dependency to provider mapping and the sorted,
// deduplicated list of concrete packages.
func (p *ProviderResolver) Providers(ctx context.Context, deps []string) (map[string]string, []string, error) {
	mapping := make(map[string]string, len(deps))
	for _, dep := range deps {
		if _, done := mapping[dep]; done {
			continue
		}
		pkg, err := p.Provider(ctx, dep)
		if err != nil {
			return nil, nil, err
		}
		mapping[dep] = pkg
	}

	pkgs := make([]string, 0, len(mapping))
	for _, pkg := range mapping {
		pkgs = append(pkgs, pkg)
	}
	slices.Sort(pkgs)
	return mapping, slices.Compact(pkgs), nil
}
