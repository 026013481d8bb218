package deps

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/matzehuels/pacstage/pkg/cache"
	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/observability"
)

// DefaultCacheTTL is how long query answers are reused.
const DefaultCacheTTL = time.Hour

// CacheOptions configures a CachedSource.
type CacheOptions struct {
	TTL     time.Duration        // Entry lifetime (default: 1h)
	Refresh bool                 // Skip reads but still write fresh answers
	Logger  func(string, ...any) // Cache failure callback (optional)
}

// CachedSource decorates a Source, and a Catalog when the inner value is one,
// with a cache of query answers. Errors are never cached, and Known is always
// delegated because it reflects local state.
type CachedSource struct {
	inner  Source
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	fresh  bool
	logger func(string, ...any)
}

// NewCachedSource wraps inner with c. A nil keyer uses cache.NewDefaultKeyer.
func NewCachedSource(inner Source, c cache.Cache, keyer cache.Keyer, opts CacheOptions) *CachedSource {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return &CachedSource{
		inner:  inner,
		cache:  c,
		keyer:  keyer,
		ttl:    opts.TTL,
		fresh:  opts.Refresh,
		logger: opts.Logger,
	}
}

// Depends returns the cached answer for token or queries the inner source.
func (s *CachedSource) Depends(ctx context.Context, token string) ([]string, error) {
	key := s.keyer.QueryKey("depends", token)
	if tokens, ok := s.load(ctx, "depends", key); ok {
		return tokens, nil
	}

	tokens, err := s.inner.Depends(ctx, token)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "depends", key, tokens)
	return tokens, nil
}

// Known delegates to the inner catalog.
func (s *CachedSource) Known(ctx context.Context, name string) (bool, error) {
	cat, ok := s.inner.(Catalog)
	if !ok {
		return false, errors.New(errors.ErrCodeUnsupported, "source does not support package lookups")
	}
	return cat.Known(ctx, name)
}

// Search returns the cached answer for terms or searches the inner catalog.
func (s *CachedSource) Search(ctx context.Context, terms []string) ([]string, error) {
	cat, ok := s.inner.(Catalog)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "source does not support package search")
	}

	key := s.keyer.QueryKey("search", strings.Join(terms, " "))
	if names, ok := s.load(ctx, "search", key); ok {
		return names, nil
	}

	names, err := cat.Search(ctx, terms)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "search", key, names)
	return names, nil
}

func (s *CachedSource) load(ctx context.Context, kind, key string) ([]string, bool) {
	if s.fresh {
		return nil, false
	}
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger("cache read failed: %s: %v", key, err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		s.logger("cache entry corrupt: %s: %v", key, err)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return out, true
}

func (s *CachedSource) store(ctx context.Context, kind, key string, values []string) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger("cache write failed: %s: %v", key, err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

var (
	_ Source  = (*CachedSource)(nil)
	_ Catalog = (*CachedSource)(nil)
)
