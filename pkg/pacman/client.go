package pacman

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/observability"
)

// Client answers dependency, search and lookup queries by running the
// configured commands.
type Client struct {
	runner   Runner
	commands Commands
}

// NewClient creates a Client. A nil runner uses ExecRunner; empty command
// templates fall back to DefaultCommands.
func NewClient(runner Runner, commands Commands) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Client{runner: runner, commands: commands.WithDefaults()}
}

// Commands returns the effective command templates.
func (c *Client) Commands() Commands { return c.commands }

// Depends lists the direct dependency tokens of the package named by token.
// The version constraint is stripped before querying. A name that the
// command rejects, or that is not a valid package name, is reported as
// errors.ErrCodePackageNotFound.
func (c *Client) Depends(ctx context.Context, token string) (out []string, err error) {
	name := deps.StripConstraint(token)
	start := time.Now()
	defer func() { observability.Query().OnQuery(ctx, "depends", name, time.Since(start), err) }()

	if verr := errors.ValidateAlpmPackageName(name); verr != nil {
		return nil, errors.Wrap(errors.ErrCodePackageNotFound, verr, "package %q not found", name)
	}

	data, found, err := c.run(ctx, c.commands.Depends, name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New(errors.ErrCodePackageNotFound, "package %q not found", name)
	}
	return lines(data), nil
}

// Search returns the names of packages matching all terms, in the order the
// command prints them. No match is an empty list, not an error.
func (c *Client) Search(ctx context.Context, terms []string) (out []string, err error) {
	query := strings.Join(terms, " ")
	start := time.Now()
	defer func() { observability.Query().OnQuery(ctx, "search", query, time.Since(start), err) }()

	for _, t := range terms {
		if t == "" || strings.HasPrefix(t, "-") {
			return nil, nil
		}
	}

	data, found, err := c.run(ctx, c.commands.Search, terms...)
	if err != nil || !found {
		return nil, err
	}
	return lines(data), nil
}

// Known reports whether name (constraint stripped) is a concrete package.
func (c *Client) Known(ctx context.Context, name string) (ok bool, err error) {
	name = deps.StripConstraint(name)
	start := time.Now()
	defer func() { observability.Query().OnQuery(ctx, "known", name, time.Since(start), err) }()

	if errors.ValidateAlpmPackageName(name) != nil {
		return false, nil
	}
	_, found, err := c.run(ctx, c.commands.Known, name)
	return found, err
}

// run expands and executes a template. found is false when the command ran
// and exited non-zero.
func (c *Client) run(ctx context.Context, template []string, values ...string) ([]byte, bool, error) {
	prog, args := Expand(template, values...)
	data, err := c.runner.Run(ctx, prog, args...)
	if err == nil {
		return data, true, nil
	}
	if IsExit(err) {
		return nil, false, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, false, ctxErr
	}
	return nil, false, errors.Wrap(errors.ErrCodeCommandFailed, err, "run %s", prog)
}

// lines splits command output into trimmed, non-empty lines.
func lines(data []byte) []string {
	out := []string{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			out = append(out, l)
		}
	}
	return out
}

var (
	_ deps.Source  = (*Client)(nil)
	_ deps.Catalog = (*Client)(nil)
)
