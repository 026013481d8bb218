package deps

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/observability"
)

// Source lists the direct dependencies of a package.
//
// Implementations wrap a package database: external commands
// ([github.com/matzehuels/pacstage/pkg/pacman]) or a directory of unpacked
// packages ([github.com/matzehuels/pacstage/pkg/pkginfo]).
type Source interface {
	// Depends returns the raw dependency tokens of the package named by
	// token. Tokens may carry version constraints or be the sentinel.
	//
	// An unknown package must be reported with an error carrying
	// errors.ErrCodePackageNotFound; the resolver treats it as "no
	// dependencies". Any other error aborts resolution.
	Depends(ctx context.Context, token string) ([]string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, token string) ([]string, error)

// Depends calls f.
func (f SourceFunc) Depends(ctx context.Context, token string) ([]string, error) {
	return f(ctx, token)
}

// Walk returns the lazy breadth-first sequence of packages reachable from
// seeds. Each raw token is expanded at most once; the source is only queried
// while the consumer keeps pulling, so breaking out of the loop stops the
// traversal.
//
// A fatal error is yielded once as the final element.
//
//	for v, err := range deps.Walk(ctx, src, []string{"base"}, deps.Options{}) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(v.Name)
//	}
func Walk(ctx context.Context, src Source, seeds []string, opts Options) iter.Seq2[Visit, error] {
	return func(yield func(Visit, error) bool) {
		w := newWalker(ctx, src, seeds, opts)
		defer w.finish(ctx)

		for {
			v, ok := w.next(ctx)
			if !ok {
				if w.err != nil {
					yield(Visit{}, w.err)
				}
				return
			}
			if !yield(v, nil) {
				return
			}
			if _, err := w.expand(ctx, v); err != nil {
				yield(Visit{}, err)
				return
			}
		}
	}
}

// Resolve runs the traversal to completion and collects every emission and
// every reported edge.
//
// Edges are recorded for all non-sentinel tokens a package reports, including
// tokens that were already visited, so the result describes the full graph.
func Resolve(ctx context.Context, src Source, seeds []string, opts Options) (*Result, error) {
	w := newWalker(ctx, src, seeds, opts)
	defer w.finish(ctx)

	res := &Result{Seeds: append([]string(nil), seeds...)}
	for {
		v, ok := w.next(ctx)
		if !ok {
			if w.err != nil {
				return nil, w.err
			}
			return res, nil
		}
		res.Visits = append(res.Visits, v)

		children, err := w.expand(ctx, v)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			res.Edges = append(res.Edges, Edge{From: v.Token, To: c})
		}
	}
}

// pending is a frontier entry.
type pending struct {
	token  string
	parent string
	depth  int
}

// walker holds the per-run frontier and visited set. It is created fresh
// for every call and never shared.
type walker struct {
	src      Source
	opts     Options
	frontier []pending
	visited  map[string]bool
	start    time.Time
	count    int
	err      error
}

func newWalker(ctx context.Context, src Source, seeds []string, opts Options) *walker {
	w := &walker{
		src:      src,
		opts:     opts.WithDefaults(),
		frontier: make([]pending, 0, len(seeds)),
		visited:  make(map[string]bool),
		start:    time.Now(),
	}
	for _, s := range seeds {
		if strings.TrimSpace(s) == "" {
			continue
		}
		w.frontier = append(w.frontier, pending{token: s})
	}
	observability.Resolve().OnResolveStart(ctx, seeds)
	return w
}

// next pops the frontier until it finds a token that has not been visited,
// marks it visited and returns its emission. It returns false when the
// frontier is exhausted or the context is done.
func (w *walker) next(ctx context.Context) (Visit, bool) {
	for len(w.frontier) > 0 {
		if err := ctx.Err(); err != nil {
			w.err = err
			return Visit{}, false
		}

		cur := w.frontier[0]
		w.frontier = w.frontier[1:]

		// Raw string match: "foo" and "foo>=2" are distinct tokens.
		if w.visited[cur.token] {
			continue
		}
		w.visited[cur.token] = true
		w.count++

		v := Visit{
			Token:  cur.token,
			Name:   StripConstraint(cur.token),
			Parent: cur.parent,
			Depth:  cur.depth,
		}
		observability.Resolve().OnVisit(ctx, v.Name, v.Depth)
		return v, true
	}
	return Visit{}, false
}

// expand queries the dependencies of v and appends them to the frontier.
// It returns the tokens that were enqueued.
func (w *walker) expand(ctx context.Context, v Visit) ([]string, error) {
	if w.opts.MaxDepth > 0 && v.Depth >= w.opts.MaxDepth {
		return nil, nil
	}

	raw, err := w.src.Depends(ctx, v.Token)
	if err != nil {
		if errors.Is(err, errors.ErrCodePackageNotFound) {
			w.opts.Logger("no dependency data for %s: %v", v.Token, err)
			return nil, nil
		}
		w.err = fmt.Errorf("query dependencies of %s: %w", v.Token, err)
		return nil, w.err
	}

	children := make([]string, 0, len(raw))
	for _, tok := range raw {
		if strings.TrimSpace(tok) == "" || tok == w.opts.Sentinel {
			continue
		}
		children = append(children, tok)
		w.frontier = append(w.frontier, pending{token: tok, parent: v.Token, depth: v.Depth + 1})
	}
	return children, nil
}

func (w *walker) finish(ctx context.Context) {
	observability.Resolve().OnResolveComplete(ctx, w.count, time.Since(w.start), w.err)
}
