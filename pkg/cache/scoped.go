package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, so
// independent deployments or tenants sharing one redis instance do not
// collide.
//
// Example usage:
//
//	// Per-project keys
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "docs-site:")
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

// TreeKey generates a prefixed key for an ingested tree.
func (k *ScopedKeyer) TreeKey(contentHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(contentHash, opts)
}

// RenderKey generates a prefixed key for rendered Markdown.
func (k *ScopedKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(treeHash, opts)
}
