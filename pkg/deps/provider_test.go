package deps

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// fakeCatalog knows a fixed set of packages and answers searches from a
// term-to-results table.
type fakeCatalog struct {
	known    map[string]bool
	results  map[string][]string
	searches [][]string
	err      error
}

func (c *fakeCatalog) Known(_ context.Context, name string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.known[name], nil
}

func (c *fakeCatalog) Search(_ context.Context, terms []string) ([]string, error) {
	c.searches = append(c.searches, terms)
	return c.results[strings.Join(terms, " ")], nil
}

func TestProvider(t *testing.T) {
	cat := &fakeCatalog{
		known: map[string]bool{"glibc": true},
		results: map[string][]string{
			"sh":           {"bash", "dash"},
			"java-runtime": {"jre-openjdk", "jre17-openjdk"},
			"libfoo bar":   {"foo-bar"},
		},
	}
	p := NewProviderResolver(cat, ProviderOptions{})

	tests := []struct {
		dep  string
		want string
	}{
		{"glibc", "glibc"},
		{"sh", "bash"},
		{"java-runtime>=17", "jre-openjdk"},
		{"libfoo bar", "foo-bar"},
	}
	for _, tt := range tests {
		got, err := p.Provider(context.Background(), tt.dep)
		if err != nil {
			t.Errorf("Provider(%q) error: %v", tt.dep, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Provider(%q) = %q, want %q", tt.dep, got, tt.want)
		}
	}

	if len(cat.searches) != 3 {
		t.Errorf("searched %d times, want 3", len(cat.searches))
	}
	if !slices.Equal(cat.searches[2], []string{"libfoo", "bar"}) {
		t.Errorf("terms = %v, want [libfoo bar]", cat.searches[2])
	}
}

func TestProviderNotFound(t *testing.T) {
	p := NewProviderResolver(&fakeCatalog{}, ProviderOptions{})

	_, err := p.Provider(context.Background(), "ghost")
	if !errors.Is(err, errors.ErrCodeProviderNotFound) {
		t.Errorf("error = %v, want PROVIDER_NOT_FOUND", err)
	}
}

func TestProviderEmptyDependency(t *testing.T) {
	p := NewProviderResolver(&fakeCatalog{}, ProviderOptions{})

	_, err := p.Provider(context.Background(), ">=1.0")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestProviderCatalogError(t *testing.T) {
	boom := errors.New(errors.ErrCodeCommandFailed, "pacman missing")
	p := NewProviderResolver(&fakeCatalog{err: boom}, ProviderOptions{})

	if _, err := p.Provider(context.Background(), "sh"); !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Errorf("error = %v, want COMMAND_FAILED", err)
	}
}

func TestProviderChoose(t *testing.T) {
	cat := &fakeCatalog{results: map[string][]string{
		"sh":  {"bash", "dash"},
		"awk": {"gawk"},
	}}

	var asked []string
	p := NewProviderResolver(cat, ProviderOptions{
		Choose: func(dep string, candidates []string) (string, error) {
			asked = append(asked, dep)
			return candidates[len(candidates)-1], nil
		},
	})

	got, err := p.Provider(context.Background(), "sh")
	if err != nil || got != "dash" {
		t.Errorf("Provider(sh) = %q, %v; want dash", got, err)
	}

	// A single candidate never asks.
	got, err = p.Provider(context.Background(), "awk")
	if err != nil || got != "gawk" {
		t.Errorf("Provider(awk) = %q, %v; want gawk", got, err)
	}
	if !slices.Equal(asked, []string{"sh"}) {
		t.Errorf("asked for %v, want [sh]", asked)
	}
}

func TestProviderChooseRejectsUnknown(t *testing.T) {
	cat := &fakeCatalog{results: map[string][]string{"sh": {"bash", "dash"}}}
	p := NewProviderResolver(cat, ProviderOptions{
		Choose: func(string, []string) (string, error) { return "zsh", nil },
	})

	if _, err := p.Provider(context.Background(), "sh"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestProviders(t *testing.T) {
	cat := &fakeCatalog{
		known: map[string]bool{"glibc": true, "bash": true},
		results: map[string][]string{
			"sh": {"bash"},
		},
	}
	p := NewProviderResolver(cat, ProviderOptions{})

	mapping, pkgs, err := p.Providers(context.Background(), []string{"glibc", "sh", "bash", "sh"})
	if err != nil {
		t.Fatalf("Providers() error: %v", err)
	}
	if mapping["sh"] != "bash" || mapping["glibc"] != "glibc" {
		t.Errorf("mapping = %v", mapping)
	}
	if !slices.Equal(pkgs, []string{"bash", "glibc"}) {
		t.Errorf("packages = %v, want [bash glibc]", pkgs)
	}
	if len(cat.searches) != 1 {
		t.Errorf("searched %d times, want 1", len(cat.searches))
	}
}

func TestProvidersStopsAtFailure(t *testing.T) {
	cat := &fakeCatalog{known: map[string]bool{"glibc": true}}
	p := NewProviderResolver(cat, ProviderOptions{})

	mapping, pkgs, err := p.Providers(context.Background(), []string{"glibc", "ghost"})
	if err == nil {
		t.Fatal("Providers() should fail")
	}
	if mapping != nil || pkgs != nil {
		t.Error("Providers() should not return partial results")
	}
}
