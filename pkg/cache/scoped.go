package cache

// ScopedKeyer wraps a Keyer with a prefix so different tenants or
// deployments sharing one backend get separate namespaces.
//
// Example usage:
//
//	// Per-project keys on a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "proj:demo:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
// A nil inner keyer defaults to the standard scheme.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CatalogKey generates a prefixed catalog key.
func (k *ScopedKeyer) CatalogKey(catalogHash string) string {
	return k.prefix + k.inner.CatalogKey(catalogHash)
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(catalogHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(catalogHash, opts)
}
