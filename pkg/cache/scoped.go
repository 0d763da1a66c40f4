package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments or
// tenants can share one backend without seeing each other's entries.
//
// Example usage:
//
//	// Keys of a staging deployment sharing production's redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// TableKey generates a prefixed key for table caching.
func (k *ScopedKeyer) TableKey(sourceHash, format string) string {
	return k.prefix + k.inner.TableKey(sourceHash, format)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(tableHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(tableHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
