// Package dot renders document trees as Graphviz diagrams, for
// inspecting what ingestion and transforms actually produced.
//
// Convert a tree to DOT source, then render to SVG in process:
//
//	src := dot.ToDOT(doc, dot.Options{ShowText: true})
//	svg, err := dot.RenderSVG(src)
//
// The generated DOT uses top-to-bottom layout with rounded box nodes,
// one box per tree node, edges running parent to child.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/treemark/treemark/pkg/ast"
)

// Options configures diagram generation.
type Options struct {
	// ShowText includes a snippet of each node's text payload in its
	// label. When false, only kinds and structural payloads are shown.
	ShowText bool

	// MaxLabel truncates text snippets to this many runes. Zero means the
	// default of 24.
	MaxLabel int
}

// ToDOT converts a document tree to Graphviz DOT source. The result can
// be rendered with [RenderSVG] or external Graphviz tooling.
func ToDOT(doc *ast.Node, opts Options) string {
	if opts.MaxLabel <= 0 {
		opts.MaxLabel = 24
	}

	var buf bytes.Buffer
	buf.WriteString("digraph tree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	counter := 0
	var emit func(n *ast.Node) string
	emit = func(n *ast.Node) string {
		id := "n" + strconv.Itoa(counter)
		counter++

		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, opts))}
		if !n.Kind.IsBlock() {
			attrs = append(attrs, "fillcolor=lightyellow")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", id, strings.Join(attrs, ", "))

		if n.Header != nil {
			child := emit(n.Header)
			fmt.Fprintf(&buf, "  %s -> %s [style=dashed];\n", id, child)
		}
		for _, c := range n.Children {
			child := emit(c)
			fmt.Fprintf(&buf, "  %s -> %s;\n", id, child)
		}
		return id
	}
	if doc != nil {
		emit(doc)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n *ast.Node, opts Options) string {
	parts := []string{n.Kind.String()}

	switch n.Kind {
	case ast.KindHeading:
		parts[0] += " " + strconv.Itoa(n.Level)
	case ast.KindList:
		if n.Ordered {
			parts[0] += " ordered"
		}
		if n.Tight {
			parts[0] += " tight"
		}
	case ast.KindCodeBlock:
		if n.Language != "" {
			parts = append(parts, n.Language)
		}
	case ast.KindLink, ast.KindImage:
		parts = append(parts, truncate(n.Destination, opts.MaxLabel))
	case ast.KindListItem:
		if n.Checked != nil {
			if *n.Checked {
				parts[0] += " [x]"
			} else {
				parts[0] += " [ ]"
			}
		}
	}

	if opts.ShowText && n.Literal != "" {
		parts = append(parts, truncate(n.Literal, opts.MaxLabel))
	}
	return strings.Join(parts, "\n")
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// RenderSVG renders DOT source to SVG using in-process Graphviz.
func RenderSVG(src string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox pins the SVG viewport to its content size so embedding
// pages can scale it predictably.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
