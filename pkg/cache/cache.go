// Package cache provides the caching layer used by the pipeline Runner:
// a byte-oriented Cache interface with file, redis and null backends, and
// a Keyer that derives deterministic keys from tree hashes and render
// option fingerprints.
package cache

import (
	"context"
	"time"
)

// Default TTLs per artifact type.
const (
	// TTLTree applies to ingested trees keyed by source content.
	TTLTree = 24 * time.Hour
	// TTLRender applies to rendered Markdown keyed by tree hash and
	// option fingerprint.
	TTLRender = 7 * 24 * time.Hour
)

// Cache stores opaque byte payloads under string keys.
type Cache interface {
	// Get returns the payload and whether the key was present. A miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the payload. A non-positive ttl stores without
	// expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TreeKeyOpts carries the parameters that distinguish ingested trees of
// the same source content.
type TreeKeyOpts struct {
	Format   string
	Selector string
}

// RenderKeyOpts carries everything that affects rendered output, so two
// renders share a key only when they would produce identical text.
type RenderKeyOpts struct {
	Flavor      string
	Options     string
	Transforms  []string
	TransformID string
}

// Keyer generates cache keys. Implementations must be deterministic: the
// same inputs always yield the same key.
type Keyer interface {
	TreeKey(contentHash string, opts TreeKeyOpts) string
	RenderKey(treeHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TreeKey generates a key for an ingested tree.
func (k *DefaultKeyer) TreeKey(contentHash string, opts TreeKeyOpts) string {
	return hashKey("tree", contentHash, opts)
}

// RenderKey generates a key for rendered Markdown.
func (k *DefaultKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return hashKey("render", treeHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
