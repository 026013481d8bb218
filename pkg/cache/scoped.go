package cache

// ScopedKeyer wraps a Keyer with a prefix so answers from different package
// databases never share keys.
//
// Example usage:
//
//	// Answers from the host's pacman databases
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pacman:")
//
//	// Answers from a local package directory
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pkgdir:"+Hash([]byte(root))[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// QueryKey generates a prefixed key for a package database query.
func (k *ScopedKeyer) QueryKey(kind, name string) string {
	return k.prefix + k.inner.QueryKey(kind, name)
}

// ClosureKey generates a prefixed key for a resolution result.
func (k *ScopedKeyer) ClosureKey(seeds []string, opts ClosureKeyOpts) string {
	return k.prefix + k.inner.ClosureKey(seeds, opts)
}
