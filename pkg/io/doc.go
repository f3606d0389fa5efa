// Package io provides JSON import and export for document trees.
//
// # Overview
//
// The format serializes the full tree: node kinds, kind-specific payload
// fields, metadata and source spans. It is designed for:
//
//   - Inspecting ingested trees (`treemark tree`)
//   - Caching ingested trees between pipeline runs
//   - Integration with external tools that produce or consume trees
//   - Round-trip preservation: export, re-import and render identically
//
// # JSON Format
//
// Every node is an object with a required "kind" tag and whatever payload
// fields that kind carries:
//
//	{
//	  "kind": "document",
//	  "children": [
//	    {"kind": "heading", "level": 1, "children": [
//	      {"kind": "text", "literal": "Title"}
//	    ]}
//	  ]
//	}
//
// Marshal output is deterministic: metadata keys are emitted sorted, so
// the bytes are stable enough to hash for cache keys.
//
// # Concurrency
//
// All functions are safe to call concurrently with other readers of the
// same tree, but not with concurrent modifications. ReadJSON and
// ImportJSON return independent trees that the caller owns outright.
package io
