package pkginfo

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pacstage/pkg/deps"
	"github.com/matzehuels/pacstage/pkg/errors"
)

// Skipped records a directory OpenDB could not load.
type Skipped struct {
	Dir    string
	Reason error
}

// DB is an in-memory index of the package directories below a root.
// It is read-only after OpenDB returns and safe for concurrent use.
type DB struct {
	root     string
	packages map[string]*Package
	skipped  []Skipped
}

// OpenDB loads every package directory directly below root. Directories that
// fail validation or parsing are skipped and reported by Skipped.
func OpenDB(ctx context.Context, root string) (*DB, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open package directory %s", root)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}

	pkgs := make([]*Package, len(dirs))
	reasons := make([]error, len(dirs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pkgs[i], reasons[i] = FromDir(dir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	db := &DB{root: root, packages: make(map[string]*Package, len(dirs))}
	for i, dir := range dirs {
		if reasons[i] != nil {
			db.skipped = append(db.skipped, Skipped{Dir: dir, Reason: reasons[i]})
			continue
		}
		name := pkgs[i].Name()
		if prev, dup := db.packages[name]; dup {
			db.skipped = append(db.skipped, Skipped{
				Dir:    dir,
				Reason: errors.New(errors.ErrCodeInvalidPkgInfo, "duplicate package %s, already loaded from %s", name, prev.Dir),
			})
			continue
		}
		db.packages[name] = pkgs[i]
	}
	return db, nil
}

// Root returns the directory the database was loaded from.
func (db *DB) Root() string { return db.root }

// Skipped returns the directories that were not loaded, in directory order.
func (db *DB) Skipped() []Skipped { return db.skipped }

// Len returns the number of loaded packages.
func (db *DB) Len() int { return len(db.packages) }

// Names returns the loaded package names, sorted.
func (db *DB) Names() []string {
	names := make([]string, 0, len(db.packages))
	for name := range db.packages {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Package returns the package with the given name.
func (db *DB) Package(name string) (*Package, bool) {
	p, ok := db.packages[name]
	return p, ok
}

// Depends returns the depend entries of the package named by token, with
// the constraint stripped for lookup.
func (db *DB) Depends(_ context.Context, token string) ([]string, error) {
	name := deps.StripConstraint(token)
	p, ok := db.packages[name]
	if !ok {
		return nil, errors.New(errors.ErrCodePackageNotFound, "package %q not found in %s", name, db.root)
	}
	return slices.Clone(p.PkgInfo.Depend), nil
}

// Known reports whether a package with exactly this name (constraint
// stripped) is loaded.
func (db *DB) Known(_ context.Context, name string) (bool, error) {
	_, ok := db.packages[deps.StripConstraint(name)]
	return ok, nil
}

// Search returns packages for which every term is a substring of the
// package name or of one of its provides (constraint stripped), ordered by
// name.
func (db *DB) Search(_ context.Context, terms []string) ([]string, error) {
	var out []string
	for _, name := range db.Names() {
		p := db.packages[name]
		if matchesAll(p, terms) {
			out = append(out, name)
		}
	}
	return out, nil
}

func matchesAll(p *Package, terms []string) bool {
	for _, t := range terms {
		if !matches(p, t) {
			return false
		}
	}
	return true
}

func matches(p *Package, term string) bool {
	if strings.Contains(p.Name(), term) {
		return true
	}
	for _, prov := range p.PkgInfo.Provides {
		if strings.Contains(deps.StripConstraint(prov), term) {
			return true
		}
	}
	return false
}

var (
	_ deps.Source  = (*DB)(nil)
	_ deps.Catalog = (*DB)(nil)
)
