// Package render groups the output backends for document trees.
//
// # Overview
//
// Rendering is split by target format:
//
//   - Flavored Markdown text (in [markdown] subpackage)
//   - Graphviz DOT and SVG tree dumps (in [dot] subpackage)
//
// # Markdown
//
// The [markdown] subpackage is the primary renderer. It emits
// deterministic Markdown in a configurable flavor and degrades
// constructs the flavor cannot express through fallback modes.
//
//	out, err := markdown.Render(doc,
//	    markdown.WithFlavor(markdown.FlavorPandoc),
//	    markdown.WithReferenceLinks(markdown.RefEndOfDocument),
//	)
//
// # Tree Dumps
//
// The [dot] subpackage renders the tree structure itself, for
// inspecting what ingestion and transforms produced.
//
//	src := dot.ToDOT(doc, dot.Options{ShowText: true})
//	svg, err := dot.RenderSVG(src)
//
// [markdown]: github.com/treemark/treemark/pkg/render/markdown
// [dot]: github.com/treemark/treemark/pkg/render/dot
package render
