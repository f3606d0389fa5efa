// Package markdown ingests Markdown source into a document tree.
//
// Parsing is delegated to goldmark with the GFM and footnote extensions
// enabled; the goldmark AST is then converted node by node. A leading
// YAML front matter block is split off into document metadata before
// parsing, so it never reaches goldmark.
package markdown

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
)

// Ingest parses Markdown source into a document tree. The returned root
// is always a Document; front matter metadata, when present, is attached
// to it.
func Ingest(source []byte) (*ast.Node, error) {
	meta, body, err := splitFrontMatter(source)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote))
	root := md.Parser().Parse(text.NewReader(body))

	c := &converter{source: body}
	children, err := c.children(root)
	if err != nil {
		return nil, err
	}

	doc := ast.NewDocument(children...)
	doc.Meta = meta
	return doc, nil
}

// IngestString is Ingest for string input.
func IngestString(source string) (*ast.Node, error) {
	return Ingest([]byte(source))
}

var frontMatterFence = []byte("---")

// splitFrontMatter removes a leading YAML front matter block and returns
// it as metadata alongside the remaining body. Input without a front
// matter block is returned untouched with nil metadata.
func splitFrontMatter(source []byte) (ast.Metadata, []byte, error) {
	rest, found := bytes.CutPrefix(source, frontMatterFence)
	if !found || len(rest) == 0 || (rest[0] != '\n' && !bytes.HasPrefix(rest, []byte("\r\n"))) {
		return nil, source, nil
	}
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, source, nil
	}
	block := rest[:end]
	body := rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(block, &fields); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "front matter")
	}
	if len(fields) == 0 {
		return nil, body, nil
	}
	return ast.Metadata(fields), body, nil
}

// converter walks the goldmark AST depth first.
type converter struct {
	source []byte

	// taskChecked carries a task list checkbox up from the inline level to
	// the enclosing list item.
	taskChecked *bool
}

func (c *converter) children(n gmast.Node) ([]*ast.Node, error) {
	var out []*ast.Node
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		nodes, err := c.convert(child)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

// convert maps one goldmark node to zero or more tree nodes. Text nodes
// can fan out into a text run plus a line break; checkbox markers fan in
// to nothing.
func (c *converter) convert(n gmast.Node) ([]*ast.Node, error) {
	one := func(node *ast.Node, err error) ([]*ast.Node, error) {
		if err != nil || node == nil {
			return nil, err
		}
		return []*ast.Node{node}, nil
	}

	switch n := n.(type) {
	case *gmast.Heading:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return one(ast.NewHeading(n.Level, children...), nil)

	case *gmast.Paragraph:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return one(ast.NewParagraph(children...), nil)

	case *gmast.TextBlock:
		// Tight list items wrap their content in text blocks instead of
		// paragraphs. The tree does not make that distinction.
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return one(ast.NewParagraph(children...), nil)

	case *gmast.Blockquote:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return one(ast.NewBlockQuote(children...), nil)

	case *gmast.List:
		items, err := c.children(n)
		if err != nil {
			return nil, err
		}
		list := ast.NewList(n.IsOrdered(), n.Start, items...)
		list.Tight = n.IsTight
		return one(list, nil)

	case *gmast.ListItem:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		item := ast.NewListItem(children...)
		if c.taskChecked != nil {
			item.Checked = c.taskChecked
			c.taskChecked = nil
		}
		return one(item, nil)

	case *gmast.FencedCodeBlock:
		return one(ast.NewCodeBlock(string(n.Language(c.source)), c.linesText(n)), nil)

	case *gmast.CodeBlock:
		return one(ast.NewCodeBlock("", c.linesText(n)), nil)

	case *gmast.ThematicBreak:
		return one(ast.NewThematicBreak(), nil)

	case *gmast.HTMLBlock:
		raw := c.linesText(n)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(c.source))
		}
		raw = strings.TrimRight(raw, "\n")
		if inner, ok := commentBody(raw); ok {
			return one(&ast.Node{Kind: ast.KindComment, Literal: inner}, nil)
		}
		return one(ast.NewHTMLBlock(raw), nil)

	case *gmast.Text:
		var out []*ast.Node
		literal := string(n.Segment.Value(c.source))
		if n.SoftLineBreak() {
			literal += " "
		}
		if literal != "" {
			out = append(out, ast.NewText(literal))
		}
		if n.HardLineBreak() {
			out = append(out, ast.NewLineBreak())
		}
		return out, nil

	case *gmast.String:
		return one(ast.NewText(string(n.Value)), nil)

	case *gmast.CodeSpan:
		return one(ast.NewCode(c.inlineText(n)), nil)

	case *gmast.Emphasis:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		if n.Level >= 2 {
			return one(ast.NewStrong(children...), nil)
		}
		return one(ast.NewEmphasis(children...), nil)

	case *gmast.Link:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return one(ast.NewLink(string(n.Destination), string(n.Title), children...), nil)

	case *gmast.Image:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return one(ast.NewImage(string(n.Destination), string(n.Title), children...), nil)

	case *gmast.AutoLink:
		url := string(n.URL(c.source))
		label := string(n.Label(c.source))
		if n.AutoLinkType == gmast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			url = "mailto:" + url
		}
		return one(ast.NewLink(url, "", ast.NewText(label)), nil)

	case *gmast.RawHTML:
		raw := c.segmentsText(n.Segments)
		if inner, ok := commentBody(raw); ok {
			return one(&ast.Node{Kind: ast.KindCommentInline, Literal: inner}, nil)
		}
		return one(ast.NewHTMLInline(raw), nil)

	case *east.Strikethrough:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return one(ast.NewStrikethrough(children...), nil)

	case *east.TaskCheckBox:
		checked := n.IsChecked
		c.taskChecked = &checked
		return nil, nil

	case *east.Table:
		return one(c.table(n))

	case *east.FootnoteLink:
		return one(ast.NewFootnoteReference(strconv.Itoa(n.Index)), nil)

	case *east.FootnoteList:
		return c.children(n)

	case *east.Footnote:
		children, err := c.children(n)
		if err != nil {
			return nil, err
		}
		return one(ast.NewFootnoteDefinition(strconv.Itoa(n.Index), children...), nil)

	case *east.FootnoteBacklink:
		return nil, nil

	default:
		// Unknown extension nodes degrade to their plain text.
		if txt := c.inlineText(n); txt != "" {
			return []*ast.Node{ast.NewText(txt)}, nil
		}
		return nil, nil
	}
}

func (c *converter) table(n *east.Table) (*ast.Node, error) {
	var header *ast.Node
	var rows []*ast.Node
	var alignments []ast.Alignment

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *east.TableHeader:
			row, aligns, err := c.tableRow(child)
			if err != nil {
				return nil, err
			}
			header = row
			alignments = aligns
		case *east.TableRow:
			row, _, err := c.tableRow(child)
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
	}

	table := ast.NewTable(header, rows...)
	table.Alignments = alignments
	return table, nil
}

func (c *converter) tableRow(n gmast.Node) (*ast.Node, []ast.Alignment, error) {
	var cells []*ast.Node
	var alignments []ast.Alignment
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		cell, ok := child.(*east.TableCell)
		if !ok {
			continue
		}
		children, err := c.children(cell)
		if err != nil {
			return nil, nil, err
		}
		cells = append(cells, ast.NewTableCell(children...))
		alignments = append(alignments, alignmentOf(cell.Alignment))
	}
	return ast.NewTableRow(cells...), alignments, nil
}

func alignmentOf(a east.Alignment) ast.Alignment {
	switch a {
	case east.AlignLeft:
		return ast.AlignLeft
	case east.AlignCenter:
		return ast.AlignCenter
	case east.AlignRight:
		return ast.AlignRight
	default:
		return ast.AlignNone
	}
}

func (c *converter) linesText(n gmast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.source))
	}
	return buf.String()
}

func (c *converter) segmentsText(segs *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		buf.Write(seg.Value(c.source))
	}
	return buf.String()
}

// inlineText concatenates the raw text of a node's descendants.
func (c *converter) inlineText(n gmast.Node) string {
	var buf bytes.Buffer
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *gmast.Text:
			buf.Write(child.Segment.Value(c.source))
		case *gmast.String:
			buf.Write(child.Value)
		default:
			buf.WriteString(c.inlineText(child))
		}
	}
	return buf.String()
}

// commentBody extracts the inner text of an HTML comment, reporting
// whether raw is one.
func commentBody(raw string) (string, bool) {
	t := strings.TrimSpace(raw)
	if !strings.HasPrefix(t, "<!--") || !strings.HasSuffix(t, "-->") || len(t) < len("<!---->") {
		return "", false
	}
	return strings.TrimSpace(t[len("<!--") : len(t)-len("-->")]), true
}
