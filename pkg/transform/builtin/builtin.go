// Package builtin ships the transforms registered with every default
// registry: heading renumbering, link rewriting, anchor ids, table of
// contents, node stripping, metadata enrichment and list tightening.
package builtin

import (
	"github.com/treemark/treemark/pkg/transform"
)

// RegisterAll registers every built-in transform. Intended to be called
// once at startup, before the registry serves conversions.
func RegisterAll(reg *transform.Registry) error {
	return reg.RegisterAll(
		headingOffsetMeta(),
		headingNormalizeMeta(),
		linkRewriteMeta(),
		anchorIDsMeta(),
		tocMeta(),
		stripMeta(),
		metaEnrichMeta(),
		tightenListsMeta(),
	)
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}
