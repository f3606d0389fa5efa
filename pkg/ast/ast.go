// Package ast defines the format-agnostic document tree that every ingester
// produces and the Markdown renderer consumes.
//
// The tree is a closed tagged-variant model: every node is a [Node] carrying
// an explicit [Kind] discriminant set at construction. Container kinds own
// an ordered child sequence; leaf kinds carry literal text. Children hold no
// back-reference to their parent, so the structure is a tree by construction
// and cannot form cycles.
//
// Nodes are cheap to build by hand:
//
//	doc := ast.NewDocument(
//	    ast.NewHeading(1, ast.NewText("Title")),
//	    ast.NewParagraph(ast.NewText("Hello "), ast.NewStrong(ast.NewText("world"))),
//	)
//
// Transforms never mutate nodes in place; they return replacement nodes (or
// nothing, which removes the node and everything it owns). See the transform
// package for the traversal contract.
package ast

import "maps"

// Metadata stores arbitrary key-value annotations attached to a node:
// anchor ids, roles, provenance. Values are opaque to the core; individual
// transforms decide what to read. Insertion order is irrelevant.
type Metadata map[string]any

// Clone returns a shallow copy of the metadata map, or nil for nil input.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Span is an opaque source-location token attached by ingesters and carried
// through transforms for diagnostics. The core never interprets it.
type Span struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

// Alignment describes a table column's declared alignment.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Node is the universal tree element. Kind determines which payload fields
// are meaningful; unused fields stay at their zero value. The zero Node is
// not usable - construct nodes with the New* helpers or set Kind explicitly.
type Node struct {
	Kind Kind

	// Children is the ordered owned sequence for container kinds.
	Children []*Node

	// Literal is the text payload for leaf kinds (Text, Code, CodeBlock,
	// math, raw HTML, comments) and the label for footnote references.
	Literal string

	// Meta holds free-form annotations. May be nil; use SetMeta to write.
	Meta Metadata

	// Span is the optional source location. Nil when unknown.
	Span *Span

	// Heading payload. The tree accepts any level; clamping to 1-6 happens
	// at render time.
	Level int

	// List payload. Start is meaningful only when Ordered is true. Tight
	// controls blank-line separation between items at render time.
	Ordered bool
	Start   int
	Tight   bool

	// ListItem payload: task-list checkbox state. Nil means not a task item.
	Checked *bool

	// CodeBlock payload: the info string (language tag).
	Language string

	// Link and Image payload.
	Destination string
	Title       string

	// Table payload. Header is optional; when present its cell count defines
	// the canonical column count. Rows live in Children and are not required
	// to match that count - padding and truncation are renderer concerns.
	Header     *Node
	Alignments []Alignment
}

// SetMeta stores a metadata value, initializing the map on first write.
func (n *Node) SetMeta(key string, value any) {
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	n.Meta[key] = value
}

// MetaString returns the metadata value for key as a string, or "" when the
// key is absent or not a string.
func (n *Node) MetaString(key string) string {
	s, _ := n.Meta[key].(string)
	return s
}

// Clone returns a deep copy of the node and everything it owns. Metadata
// maps are copied shallowly (values are shared); the child structure, the
// table header, and the span are duplicated.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Meta = n.Meta.Clone()
	if n.Span != nil {
		span := *n.Span
		c.Span = &span
	}
	if n.Checked != nil {
		checked := *n.Checked
		c.Checked = &checked
	}
	if n.Alignments != nil {
		c.Alignments = append([]Alignment(nil), n.Alignments...)
	}
	c.Header = n.Header.Clone()
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// WithChildren returns a shallow copy of the node with the given child
// sequence. The original node is left untouched; this is the building block
// for the copy-on-write transform contract.
func (n *Node) WithChildren(children []*Node) *Node {
	c := *n
	c.Children = children
	return &c
}

// NewDocument creates the tree root with the given block children.
func NewDocument(children ...*Node) *Node {
	return &Node{Kind: KindDocument, Children: children}
}

// NewHeading creates a heading at the given level with inline children.
// Out-of-range levels are accepted; the renderer clamps to 1-6.
func NewHeading(level int, children ...*Node) *Node {
	return &Node{Kind: KindHeading, Level: level, Children: children}
}

// NewParagraph creates a paragraph with inline children.
func NewParagraph(children ...*Node) *Node {
	return &Node{Kind: KindParagraph, Children: children}
}

// NewText creates a text leaf.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Literal: text}
}

// NewStrong creates a strong-emphasis span.
func NewStrong(children ...*Node) *Node {
	return &Node{Kind: KindStrong, Children: children}
}

// NewEmphasis creates an emphasis span.
func NewEmphasis(children ...*Node) *Node {
	return &Node{Kind: KindEmphasis, Children: children}
}

// NewCode creates an inline code span.
func NewCode(text string) *Node {
	return &Node{Kind: KindCode, Literal: text}
}

// NewCodeBlock creates a fenced code block with an optional language tag.
func NewCodeBlock(language, text string) *Node {
	return &Node{Kind: KindCodeBlock, Language: language, Literal: text}
}

// NewLink creates a link wrapping inline children.
func NewLink(destination, title string, children ...*Node) *Node {
	return &Node{Kind: KindLink, Destination: destination, Title: title, Children: children}
}

// NewImage creates an image; children form the alt text.
func NewImage(destination, title string, children ...*Node) *Node {
	return &Node{Kind: KindImage, Destination: destination, Title: title, Children: children}
}

// NewList creates a list. Start is meaningful only for ordered lists.
func NewList(ordered bool, start int, items ...*Node) *Node {
	return &Node{Kind: KindList, Ordered: ordered, Start: start, Children: items}
}

// NewListItem creates a list item with block children.
func NewListItem(children ...*Node) *Node {
	return &Node{Kind: KindListItem, Children: children}
}

// NewTaskItem creates a task-list item with a checkbox state.
func NewTaskItem(checked bool, children ...*Node) *Node {
	return &Node{Kind: KindListItem, Checked: &checked, Children: children}
}

// NewBlockQuote creates a block quote with block children.
func NewBlockQuote(children ...*Node) *Node {
	return &Node{Kind: KindBlockQuote, Children: children}
}

// NewTable creates a table. Header may be nil; rows are TableRow nodes.
func NewTable(header *Node, rows ...*Node) *Node {
	return &Node{Kind: KindTable, Header: header, Children: rows}
}

// NewTableRow creates a table row of TableCell children.
func NewTableRow(cells ...*Node) *Node {
	return &Node{Kind: KindTableRow, Children: cells}
}

// NewTableCell creates a table cell with inline children.
func NewTableCell(children ...*Node) *Node {
	return &Node{Kind: KindTableCell, Children: children}
}

// NewThematicBreak creates a horizontal rule.
func NewThematicBreak() *Node {
	return &Node{Kind: KindThematicBreak}
}

// NewLineBreak creates a hard line break.
func NewLineBreak() *Node {
	return &Node{Kind: KindLineBreak}
}

// NewFootnoteReference creates an inline reference to the footnote label.
func NewFootnoteReference(label string) *Node {
	return &Node{Kind: KindFootnoteReference, Literal: label}
}

// NewFootnoteDefinition creates a footnote body for the given label.
func NewFootnoteDefinition(label string, children ...*Node) *Node {
	return &Node{Kind: KindFootnoteDefinition, Literal: label, Children: children}
}

// NewStrikethrough creates a strikethrough span.
func NewStrikethrough(children ...*Node) *Node {
	return &Node{Kind: KindStrikethrough, Children: children}
}

// NewHTMLBlock creates a raw block-level HTML leaf.
func NewHTMLBlock(html string) *Node {
	return &Node{Kind: KindHTMLBlock, Literal: html}
}

// NewHTMLInline creates a raw inline HTML leaf.
func NewHTMLInline(html string) *Node {
	return &Node{Kind: KindHTMLInline, Literal: html}
}
