// Package pkg provides the core libraries for treemark document conversion.
//
// # Overview
//
// Treemark converts Markdown and HTML into clean, flavored Markdown through
// a transform pipeline. The pkg directory is organized into a few areas:
//
//  1. [ast] - The document tree every stage operates on
//  2. [ingest] - Parsers that build trees from Markdown and HTML
//  3. [transform] - Tree rewrites and their registry
//  4. [hooks] - Interception points between pipeline stages
//  5. [pipeline] - Orchestration (ingest → transform → render) with caching
//  6. [render] - Markdown output plus DOT/SVG tree visualization
//
// # Quick Start
//
// Convert a Markdown document through the pipeline:
//
//	import (
//	    "github.com/treemark/treemark/pkg/hooks"
//	    ingestmd "github.com/treemark/treemark/pkg/ingest/markdown"
//	    "github.com/treemark/treemark/pkg/pipeline"
//	    "github.com/treemark/treemark/pkg/transform/builtin"
//	)
//
//	// 1. Build a registry with the built-in transforms
//	reg := transform.NewRegistry(nil)
//	builtin.RegisterAll(reg)
//
//	// 2. Ingest the source
//	doc, _ := ingestmd.Ingest(source)
//
//	// 3. Run the pipeline
//	p := pipeline.New(reg, hooks.NewManager())
//	result, _ := p.Execute(doc, pipeline.Options{
//	    Transforms: []pipeline.TransformSpec{{Name: "toc"}},
//	})
//	fmt.Println(result.Markdown)
//
// # Main Packages
//
// [ast] - Document tree: a closed set of node kinds (headings, lists,
// tables, footnotes, inline marks) with document-level metadata.
//
// [ingest/markdown] - Markdown parsing via goldmark with GFM and footnote
// extensions, including front matter extraction.
//
// [ingest/html] - HTML parsing via goquery with CSS selector scoping;
// unknown elements are preserved as raw HTML nodes.
//
// [transform] - Transform interface, parameter specs, and the registry
// with dependency resolution and priority ordering. [transform/builtin]
// registers the stock transforms (toc, anchor-ids, heading normalization,
// link rewriting, strip filters, metadata edits).
//
// [hooks] - Stage and kind hooks that observe or rewrite the tree between
// pipeline stages, with strict and lenient failure modes.
//
// [pipeline] - The orchestrator and the caching [pipeline.Runner].
//
// [render/markdown] - Deterministic flavored Markdown output (GFM,
// CommonMark, Pandoc, strict) with fallback handling for constructs a
// flavor cannot express.
//
// [render/dot] - Graphviz DOT and SVG dumps of the tree for debugging.
//
// # Infrastructure
//
// [cache] - Render cache with file, Redis, and null backends keyed by
// content hash.
//
// [io] - Deterministic JSON serialization of document trees.
//
// [errors] - Coded errors shared across the module.
//
// [observability] - Pluggable hook interfaces for pipeline, cache, and
// HTTP instrumentation.
//
// [ast]: https://pkg.go.dev/github.com/treemark/treemark/pkg/ast
// [ingest]: https://pkg.go.dev/github.com/treemark/treemark/pkg/ingest
// [ingest/markdown]: https://pkg.go.dev/github.com/treemark/treemark/pkg/ingest/markdown
// [ingest/html]: https://pkg.go.dev/github.com/treemark/treemark/pkg/ingest/html
// [transform]: https://pkg.go.dev/github.com/treemark/treemark/pkg/transform
// [transform/builtin]: https://pkg.go.dev/github.com/treemark/treemark/pkg/transform/builtin
// [hooks]: https://pkg.go.dev/github.com/treemark/treemark/pkg/hooks
// [pipeline]: https://pkg.go.dev/github.com/treemark/treemark/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/treemark/treemark/pkg/render
// [render/markdown]: https://pkg.go.dev/github.com/treemark/treemark/pkg/render/markdown
// [render/dot]: https://pkg.go.dev/github.com/treemark/treemark/pkg/render/dot
// [cache]: https://pkg.go.dev/github.com/treemark/treemark/pkg/cache
// [io]: https://pkg.go.dev/github.com/treemark/treemark/pkg/io
// [errors]: https://pkg.go.dev/github.com/treemark/treemark/pkg/errors
// [observability]: https://pkg.go.dev/github.com/treemark/treemark/pkg/observability
package pkg
