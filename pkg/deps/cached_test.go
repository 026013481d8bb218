package deps

import (
	"context"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/pacstage/pkg/cache"
	"github.com/matzehuels/pacstage/pkg/errors"
)

// countingDB wraps fakeDB and fakeCatalog and counts queries.
type countingDB struct {
	fakeDB
	fakeCatalog
}

func newFileCache(t *testing.T) *cache.FileCache {
	t.Helper()
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return c
}

func TestCachedSourceDepends(t *testing.T) {
	ctx := context.Background()
	db := &countingDB{fakeDB: fakeDB{deps: map[string][]string{"bash": {"glibc", "readline>=7"}}}}
	src := NewCachedSource(db, newFileCache(t), nil, CacheOptions{})

	for i := 0; i < 3; i++ {
		got, err := src.Depends(ctx, "bash")
		if err != nil {
			t.Fatalf("Depends() error: %v", err)
		}
		if !slices.Equal(got, []string{"glibc", "readline>=7"}) {
			t.Errorf("Depends() = %v", got)
		}
	}
	if len(db.queries) != 1 {
		t.Errorf("inner queried %d times, want 1", len(db.queries))
	}
}

func TestCachedSourceEmptyAnswer(t *testing.T) {
	ctx := context.Background()
	db := &countingDB{fakeDB: fakeDB{deps: map[string][]string{"glibc": nil}}}
	src := NewCachedSource(db, newFileCache(t), nil, CacheOptions{})

	for i := 0; i < 2; i++ {
		got, err := src.Depends(ctx, "glibc")
		if err != nil {
			t.Fatalf("Depends() error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Depends() = %v, want empty", got)
		}
	}
	if len(db.queries) != 1 {
		t.Errorf("inner queried %d times, want 1", len(db.queries))
	}
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	db := &countingDB{fakeDB: fakeDB{deps: map[string][]string{}}}
	src := NewCachedSource(db, newFileCache(t), nil, CacheOptions{})

	for i := 0; i < 2; i++ {
		_, err := src.Depends(ctx, "ghost")
		if !errors.Is(err, errors.ErrCodePackageNotFound) {
			t.Fatalf("error = %v, want PACKAGE_NOT_FOUND", err)
		}
	}
	if len(db.queries) != 2 {
		t.Errorf("inner queried %d times, want 2", len(db.queries))
	}
}

func TestCachedSourceRefresh(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)

	stale := &countingDB{fakeDB: fakeDB{deps: map[string][]string{"bash": {"glibc"}}}}
	if _, err := NewCachedSource(stale, c, nil, CacheOptions{}).Depends(ctx, "bash"); err != nil {
		t.Fatalf("Depends() error: %v", err)
	}

	fresh := &countingDB{fakeDB: fakeDB{deps: map[string][]string{"bash": {"glibc", "ncurses"}}}}
	got, err := NewCachedSource(fresh, c, nil, CacheOptions{Refresh: true}).Depends(ctx, "bash")
	if err != nil {
		t.Fatalf("Depends() error: %v", err)
	}
	if !slices.Equal(got, []string{"glibc", "ncurses"}) {
		t.Errorf("refresh returned %v", got)
	}

	// The refreshed answer was written back.
	got, _ = NewCachedSource(stale, c, nil, CacheOptions{}).Depends(ctx, "bash")
	if !slices.Equal(got, []string{"glibc", "ncurses"}) {
		t.Errorf("cached answer = %v, want refreshed one", got)
	}
}

func TestCachedSourceExpiry(t *testing.T) {
	ctx := context.Background()
	db := &countingDB{fakeDB: fakeDB{deps: map[string][]string{"bash": {"glibc"}}}}
	src := NewCachedSource(db, newFileCache(t), nil, CacheOptions{TTL: time.Millisecond})

	if _, err := src.Depends(ctx, "bash"); err != nil {
		t.Fatalf("Depends() error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := src.Depends(ctx, "bash"); err != nil {
		t.Fatalf("Depends() error: %v", err)
	}
	if len(db.queries) != 2 {
		t.Errorf("inner queried %d times, want 2", len(db.queries))
	}
}

func TestCachedSourceCatalog(t *testing.T) {
	ctx := context.Background()
	db := &countingDB{fakeCatalog: fakeCatalog{
		known:   map[string]bool{"bash": true},
		results: map[string][]string{"sh": {"bash", "dash"}},
	}}
	src := NewCachedSource(db, newFileCache(t), nil, CacheOptions{})

	for i := 0; i < 2; i++ {
		got, err := src.Search(ctx, []string{"sh"})
		if err != nil {
			t.Fatalf("Search() error: %v", err)
		}
		if !slices.Equal(got, []string{"bash", "dash"}) {
			t.Errorf("Search() = %v", got)
		}
	}
	if len(db.searches) != 1 {
		t.Errorf("inner searched %d times, want 1", len(db.searches))
	}

	known, err := src.Known(ctx, "bash")
	if err != nil || !known {
		t.Errorf("Known(bash) = %v, %v", known, err)
	}
}

func TestCachedSourceWithoutCatalog(t *testing.T) {
	src := NewCachedSource(&fakeDB{}, cache.NewNullCache(), nil, CacheOptions{})

	if _, err := src.Known(context.Background(), "bash"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Known error = %v, want UNSUPPORTED", err)
	}
	if _, err := src.Search(context.Background(), []string{"sh"}); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Search error = %v, want UNSUPPORTED", err)
	}
}

func TestCachedSourceResolve(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)
	db := &countingDB{fakeDB: fakeDB{deps: map[string][]string{
		"A": {"B", "C"}, "B": {}, "C": {"B"},
	}}}

	for i := 0; i < 2; i++ {
		src := NewCachedSource(db, c, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "pacman"), CacheOptions{})
		res, err := Resolve(ctx, src, []string{"A"}, Options{})
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if !slices.Equal(res.Names(), []string{"A", "B", "C"}) {
			t.Errorf("Names() = %v", res.Names())
		}
	}
	if len(db.queries) != 3 {
		t.Errorf("inner queried %d times, want 3", len(db.queries))
	}
}
