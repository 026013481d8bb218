package pacman

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/observability"
)

// fakeRunner answers commands from a table keyed by the full command line.
// Unlisted command lines exit with status 1.
type fakeRunner struct {
	out   map[string]string
	err   error
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, line)
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.out[line]
	if !ok {
		return nil, &ExitError{Name: name, Code: 1, Stderr: "error: package not found"}
	}
	return []byte(out), nil
}

func TestClientDepends(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		`expac -S -l \n %D bash`: "readline>=7.0\nglibc\n  ncurses  \n\n",
		`expac -S -l \n %D glibc`: "",
	}}
	c := NewClient(r, Commands{})

	got, err := c.Depends(context.Background(), "bash>=5")
	if err != nil {
		t.Fatalf("Depends() error: %v", err)
	}
	if want := []string{"readline>=7.0", "glibc", "ncurses"}; !slices.Equal(got, want) {
		t.Errorf("Depends() = %v, want %v", got, want)
	}

	got, err = c.Depends(context.Background(), "glibc")
	if err != nil {
		t.Fatalf("Depends() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Depends(glibc) = %v, want empty", got)
	}
}

func TestClientDependsNotFound(t *testing.T) {
	r := &fakeRunner{}
	c := NewClient(r, Commands{})

	tests := []string{"ghost", "-rf", "bad name"}
	for _, name := range tests {
		_, err := c.Depends(context.Background(), name)
		if !errors.Is(err, errors.ErrCodePackageNotFound) {
			t.Errorf("Depends(%q) error = %v, want PACKAGE_NOT_FOUND", name, err)
		}
	}
	// Invalid names never reach the runner.
	if len(r.calls) != 1 {
		t.Errorf("runner called %d times, want 1", len(r.calls))
	}
}

func TestClientCommandFailed(t *testing.T) {
	r := &fakeRunner{err: stderrors.New(`exec: "expac": executable file not found in $PATH`)}
	c := NewClient(r, Commands{})

	_, err := c.Depends(context.Background(), "bash")
	if !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Errorf("Depends() error = %v, want COMMAND_FAILED", err)
	}
	if _, err := c.Known(context.Background(), "bash"); !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Errorf("Known() error = %v, want COMMAND_FAILED", err)
	}
	if _, err := c.Search(context.Background(), []string{"sh"}); !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Errorf("Search() error = %v, want COMMAND_FAILED", err)
	}
}

func TestClientSearch(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"pacman -Ssq java runtime": "jre-openjdk\njre17-openjdk\n",
	}}
	c := NewClient(r, Commands{})

	got, err := c.Search(context.Background(), []string{"java", "runtime"})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if !slices.Equal(got, []string{"jre-openjdk", "jre17-openjdk"}) {
		t.Errorf("Search() = %v", got)
	}

	got, err = c.Search(context.Background(), []string{"nothing"})
	if err != nil || len(got) != 0 {
		t.Errorf("Search(nothing) = %v, %v; want empty", got, err)
	}

	got, err = c.Search(context.Background(), []string{"--sync"})
	if err != nil || len(got) != 0 {
		t.Errorf("Search(--sync) = %v, %v; want empty", got, err)
	}
}

func TestClientKnown(t *testing.T) {
	r := &fakeRunner{out: map[string]string{"pacman -Si bash": "Name : bash\n"}}
	c := NewClient(r, Commands{})

	tests := []struct {
		name string
		want bool
	}{
		{"bash", true},
		{"bash>=5", true},
		{"sh", false},
		{"-Syu", false},
	}
	for _, tt := range tests {
		got, err := c.Known(context.Background(), tt.name)
		if err != nil {
			t.Errorf("Known(%q) error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Known(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestClientCustomCommands(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"pactree -u -d1 --sync bash": "bash\nglibc\n",
	}}
	c := NewClient(r, Commands{Depends: []string{"pactree", "-u", "-d1", "--sync", "{}"}})

	got, err := c.Depends(context.Background(), "bash")
	if err != nil {
		t.Fatalf("Depends() error: %v", err)
	}
	if !slices.Equal(got, []string{"bash", "glibc"}) {
		t.Errorf("Depends() = %v", got)
	}
	if c.Commands().Search[0] != "pacman" {
		t.Error("unset templates should use defaults")
	}
}

func TestClientContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRunner{err: context.Canceled}
	c := NewClient(r, Commands{})

	_, err := c.Depends(ctx, "bash")
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("Depends() error = %v, want context.Canceled", err)
	}
}

type recordingQueryHooks struct {
	observability.NoopQueryHooks
	kinds []string
}

func (h *recordingQueryHooks) OnQuery(_ context.Context, kind, _ string, _ time.Duration, _ error) {
	h.kinds = append(h.kinds, kind)
}

func TestClientQueryHooks(t *testing.T) {
	hooks := &recordingQueryHooks{}
	observability.SetQueryHooks(hooks)
	defer observability.Reset()

	c := NewClient(&fakeRunner{}, Commands{})
	_, _ = c.Depends(context.Background(), "a")
	_, _ = c.Search(context.Background(), []string{"a"})
	_, _ = c.Known(context.Background(), "a")

	if want := []string{"depends", "search", "known"}; !slices.Equal(hooks.kinds, want) {
		t.Errorf("hooks = %v, want %v", hooks.kinds, want)
	}
}

func TestClientResolve(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		`expac -S -l \n %D base`:     "glibc\nbash\n",
		`expac -S -l \n %D bash`:     "readline>=7.0\nglibc",
		`expac -S -l \n %D glibc`:    "",
		`expac -S -l \n %D readline`: "glibc\nncurses",
		`expac -S -l \n %D ncurses`:  "glibc",
	}}

	res, err := deps.Resolve(context.Background(), NewClient(r, Commands{}), []string{"base"}, deps.Options{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := []string{"base", "glibc", "bash", "readline", "ncurses"}
	if !slices.Equal(res.Names(), want) {
		t.Errorf("Names() = %v, want %v", res.Names(), want)
	}
}

func TestClientProviders(t *testing.T) {
	r := &fakeRunner{out: map[string]string{
		"pacman -Si glibc": "Name : glibc",
		"pacman -Ssq sh":   "bash\ndash\nzsh",
	}}
	p := deps.NewProviderResolver(NewClient(r, Commands{}), deps.ProviderOptions{})

	mapping, pkgs, err := p.Providers(context.Background(), []string{"glibc", "sh"})
	if err != nil {
		t.Fatalf("Providers() error: %v", err)
	}
	if mapping["sh"] != "bash" {
		t.Errorf("sh provided by %q, want bash", mapping["sh"])
	}
	if !slices.Equal(pkgs, []string{"bash", "glibc"}) {
		t.Errorf("packages = %v", pkgs)
	}
}
