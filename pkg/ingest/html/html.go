// Package html ingests HTML into a document tree.
//
// Parsing is delegated to x/net/html through goquery. Known elements map
// to tree kinds; unknown elements are preserved as raw HTML so nothing
// is silently lost. An optional CSS selector scopes ingestion to a
// fragment of the page, for pulling an article out of its chrome.
package html

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
)

// Options configures ingestion.
type Options struct {
	// Selector scopes ingestion to the matching elements. Empty means the
	// whole body.
	Selector string
}

// Option configures ingestion.
type Option func(*Options)

// WithSelector scopes ingestion to elements matching a CSS selector.
func WithSelector(selector string) Option {
	return func(o *Options) { o.Selector = selector }
}

// Ingest parses HTML into a document tree. The page title, when present,
// becomes document metadata.
func Ingest(r io.Reader, opts ...Option) (*ast.Node, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	page, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse html")
	}

	var roots []*xhtml.Node
	if o.Selector != "" {
		sel := page.Find(o.Selector)
		if len(sel.Nodes) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "selector %q matched nothing", o.Selector)
		}
		roots = sel.Nodes
	} else {
		body := page.Find("body")
		if len(body.Nodes) > 0 {
			roots = body.Nodes
		}
	}

	c := &converter{}
	var blocks []*ast.Node
	for _, root := range roots {
		blocks = append(blocks, c.blockChildren(root)...)
	}

	doc := ast.NewDocument(blocks...)
	if title := strings.TrimSpace(page.Find("head title").First().Text()); title != "" {
		doc.SetMeta("title", title)
	}
	return doc, nil
}

// IngestString is Ingest for string input.
func IngestString(source string, opts ...Option) (*ast.Node, error) {
	return Ingest(strings.NewReader(source), opts...)
}

type converter struct{}

// transparent containers contribute their children without a node of
// their own.
var transparentElements = map[string]bool{
	"html": true, "body": true, "div": true, "span": true, "section": true,
	"article": true, "main": true, "header": true, "footer": true,
	"figure": true, "figcaption": true, "tbody": true,
}

// skipped elements contribute nothing.
var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "title": true,
	"meta": true, "link": true, "nav": true, "template": true,
}

// blockChildren converts an element's children at block level. Runs of
// inline content between block elements are wrapped in paragraphs, so
// bare text inside a div still lands in a well-formed tree.
func (c *converter) blockChildren(n *xhtml.Node) []*ast.Node {
	var blocks []*ast.Node
	var run []*ast.Node

	flush := func() {
		if len(run) > 0 {
			blocks = append(blocks, ast.NewParagraph(trimRun(run)...))
			run = nil
		}
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		converted, isBlock := c.convert(child, true)
		if isBlock {
			flush()
			blocks = append(blocks, converted...)
			continue
		}
		run = append(run, converted...)
	}
	flush()
	return blocks
}

// inlineChildren converts an element's children at inline level.
func (c *converter) inlineChildren(n *xhtml.Node) []*ast.Node {
	var out []*ast.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		converted, _ := c.convert(child, false)
		out = append(out, converted...)
	}
	return trimRun(out)
}

// convert maps one HTML node. The second return reports whether the
// result is block-level, which drives paragraph wrapping in the caller.
func (c *converter) convert(n *xhtml.Node, blockContext bool) ([]*ast.Node, bool) {
	switch n.Type {
	case xhtml.TextNode:
		text := collapseWhitespace(n.Data)
		if strings.TrimSpace(text) == "" {
			return nil, false
		}
		return []*ast.Node{ast.NewText(text)}, false

	case xhtml.CommentNode:
		literal := strings.TrimSpace(n.Data)
		if blockContext {
			return []*ast.Node{{Kind: ast.KindComment, Literal: literal}}, true
		}
		return []*ast.Node{{Kind: ast.KindCommentInline, Literal: literal}}, false

	case xhtml.ElementNode:
		return c.element(n, blockContext)

	default:
		return nil, false
	}
}

func (c *converter) element(n *xhtml.Node, blockContext bool) ([]*ast.Node, bool) {
	one := func(node *ast.Node, block bool) ([]*ast.Node, bool) {
		return []*ast.Node{node}, block
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		return one(ast.NewHeading(level, c.inlineChildren(n)...), true)

	case "p":
		children := c.inlineChildren(n)
		if len(children) == 0 {
			return nil, true
		}
		return one(ast.NewParagraph(children...), true)

	case "blockquote":
		return one(ast.NewBlockQuote(c.blockChildren(n)...), true)

	case "ul", "ol":
		return one(c.list(n), true)

	case "pre":
		return one(c.codeBlock(n), true)

	case "hr":
		return one(ast.NewThematicBreak(), true)

	case "table":
		return one(c.table(n), true)

	case "br":
		return one(ast.NewLineBreak(), false)

	case "a":
		link := ast.NewLink(attr(n, "href"), attr(n, "title"), c.inlineChildren(n)...)
		return one(link, false)

	case "img":
		var alt []*ast.Node
		if text := attr(n, "alt"); text != "" {
			alt = append(alt, ast.NewText(text))
		}
		return one(ast.NewImage(attr(n, "src"), attr(n, "title"), alt...), false)

	case "code":
		return one(ast.NewCode(rawText(n)), false)

	case "strong", "b":
		return one(ast.NewStrong(c.inlineChildren(n)...), false)

	case "em", "i":
		return one(ast.NewEmphasis(c.inlineChildren(n)...), false)

	case "del", "s", "strike":
		return one(ast.NewStrikethrough(c.inlineChildren(n)...), false)

	case "u", "ins":
		return one(&ast.Node{Kind: ast.KindUnderline, Children: c.inlineChildren(n)}, false)

	case "sup":
		return one(&ast.Node{Kind: ast.KindSuperscript, Children: c.inlineChildren(n)}, false)

	case "sub":
		return one(&ast.Node{Kind: ast.KindSubscript, Children: c.inlineChildren(n)}, false)

	case "dl":
		return one(c.definitionList(n), true)

	case "input":
		// Checkbox inputs are handled by the list item conversion; loose
		// ones contribute nothing.
		return nil, false

	default:
		if transparentElements[n.Data] {
			if blockContext {
				return c.blockChildren(n), true
			}
			return c.inlineChildren(n), false
		}
		if skippedElements[n.Data] {
			return nil, blockContext
		}
		raw := renderRaw(n)
		if blockContext {
			return one(ast.NewHTMLBlock(raw), true)
		}
		return one(ast.NewHTMLInline(raw), false)
	}
}

func (c *converter) list(n *xhtml.Node) *ast.Node {
	ordered := n.Data == "ol"
	start := 1
	if s := attr(n, "start"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			start = v
		}
	}

	var items []*ast.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xhtml.ElementNode || child.Data != "li" {
			continue
		}
		items = append(items, c.listItem(child))
	}

	list := ast.NewList(ordered, start, items...)
	list.Tight = tightList(items)
	return list
}

// listItem converts an li, lifting a leading checkbox input into the
// item's task state.
func (c *converter) listItem(n *xhtml.Node) *ast.Node {
	var checked *bool
	if box := findCheckbox(n); box != nil {
		v := hasAttr(box, "checked")
		checked = &v
		box.Parent.RemoveChild(box)
	}

	blocks := c.blockChildren(n)
	item := ast.NewListItem(blocks...)
	item.Checked = checked
	return item
}

func findCheckbox(n *xhtml.Node) *xhtml.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xhtml.ElementNode && child.Data == "input" && attr(child, "type") == "checkbox" {
			return child
		}
		if child.Type == xhtml.ElementNode && (child.Data == "p" || transparentElements[child.Data]) {
			if found := findCheckbox(child); found != nil {
				return found
			}
		}
	}
	return nil
}

// tightList reports whether every item holds at most one paragraph.
func tightList(items []*ast.Node) bool {
	for _, item := range items {
		paragraphs := 0
		for _, block := range item.Children {
			if block.Kind == ast.KindParagraph {
				paragraphs++
			}
		}
		if paragraphs > 1 {
			return false
		}
	}
	return true
}

// definitionList converts a dl element. dt children become terms, dd
// children become descriptions, anything else is ignored.
func (c *converter) definitionList(n *xhtml.Node) *ast.Node {
	list := &ast.Node{Kind: ast.KindDefinitionList}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xhtml.ElementNode {
			continue
		}
		switch child.Data {
		case "dt":
			list.Children = append(list.Children, &ast.Node{
				Kind:     ast.KindDefinitionTerm,
				Children: c.inlineChildren(child),
			})
		case "dd":
			list.Children = append(list.Children, &ast.Node{
				Kind:     ast.KindDefinitionDescription,
				Children: c.blockChildren(child),
			})
		}
	}
	return list
}

// codeBlock converts a pre element, reading the language from the code
// child's class when present.
func (c *converter) codeBlock(n *xhtml.Node) *ast.Node {
	language := ""
	content := n
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xhtml.ElementNode && child.Data == "code" {
			content = child
			for _, cls := range strings.Fields(attr(child, "class")) {
				if lang, ok := strings.CutPrefix(cls, "language-"); ok {
					language = lang
				}
			}
			break
		}
	}
	return ast.NewCodeBlock(language, rawText(content))
}

func (c *converter) table(n *xhtml.Node) *ast.Node {
	var header *ast.Node
	var rows []*ast.Node
	var alignments []ast.Alignment

	var walkRows func(n *xhtml.Node, inHead bool)
	walkRows = func(n *xhtml.Node, inHead bool) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xhtml.ElementNode {
				continue
			}
			switch child.Data {
			case "thead":
				walkRows(child, true)
			case "tbody", "tfoot":
				walkRows(child, false)
			case "tr":
				row, aligns, headerish := c.tableRow(child)
				if (inHead || headerish) && header == nil {
					header = row
					alignments = aligns
				} else {
					rows = append(rows, row)
				}
			}
		}
	}
	walkRows(n, false)

	table := ast.NewTable(header, rows...)
	table.Alignments = alignments
	return table
}

func (c *converter) tableRow(n *xhtml.Node) (*ast.Node, []ast.Alignment, bool) {
	var cells []*ast.Node
	var alignments []ast.Alignment
	allTH := true

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != xhtml.ElementNode || (child.Data != "td" && child.Data != "th") {
			continue
		}
		if child.Data != "th" {
			allTH = false
		}
		cells = append(cells, ast.NewTableCell(c.inlineChildren(child)...))
		alignments = append(alignments, alignmentOf(child))
	}
	return ast.NewTableRow(cells...), alignments, allTH && len(cells) > 0
}

func alignmentOf(cell *xhtml.Node) ast.Alignment {
	align := strings.ToLower(attr(cell, "align"))
	if align == "" {
		style := strings.ToLower(attr(cell, "style"))
		switch {
		case strings.Contains(style, "text-align:center"), strings.Contains(style, "text-align: center"):
			align = "center"
		case strings.Contains(style, "text-align:right"), strings.Contains(style, "text-align: right"):
			align = "right"
		case strings.Contains(style, "text-align:left"), strings.Contains(style, "text-align: left"):
			align = "left"
		}
	}
	switch align {
	case "left":
		return ast.AlignLeft
	case "center":
		return ast.AlignCenter
	case "right":
		return ast.AlignRight
	default:
		return ast.AlignNone
	}
}

// attr returns an attribute value, or "".
func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *xhtml.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// rawText concatenates descendant text without whitespace collapsing,
// for code content.
func rawText(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child)
	}
	return b.String()
}

// renderRaw serializes a node back to HTML for preservation.
func renderRaw(n *xhtml.Node) string {
	var b strings.Builder
	if err := xhtml.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

// collapseWhitespace folds runs of whitespace into single spaces, the
// way HTML rendering does.
func collapseWhitespace(s string) string {
	var b strings.Builder
	space := false
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			space = true
			continue
		}
		if space && (b.Len() > 0 || i > 0) {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	out := b.String()
	if space && out != "" {
		out += " "
	}
	return out
}

// trimRun trims leading whitespace on the first text node and trailing
// whitespace on the last, so wrapped paragraphs do not carry edge spaces.
func trimRun(run []*ast.Node) []*ast.Node {
	if len(run) == 0 {
		return run
	}
	out := make([]*ast.Node, len(run))
	copy(out, run)
	if first := out[0]; first.Kind == ast.KindText {
		c := *first
		c.Literal = strings.TrimLeft(first.Literal, " ")
		out[0] = &c
	}
	if last := out[len(out)-1]; last.Kind == ast.KindText {
		c := *last
		c.Literal = strings.TrimRight(last.Literal, " ")
		out[len(out)-1] = &c
	}
	var filtered []*ast.Node
	for _, n := range out {
		if n.Kind == ast.KindText && n.Literal == "" {
			continue
		}
		filtered = append(filtered, n)
	}
	return filtered
}
