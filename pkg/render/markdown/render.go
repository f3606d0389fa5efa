// Package markdown serializes a document tree to Markdown text.
//
// The renderer is a read-only visitor: it never mutates the tree, so
// rendering two independent trees concurrently is safe. All output is
// deterministic for a given tree and option bag; reference-link counters
// reset per render and metadata keys are emitted sorted.
//
// Malformed option combinations never fail a render. Constructs the active
// flavor cannot express degrade through the configured fallback modes on
// the premise that producing some correct-enough Markdown beats aborting a
// batch job partway through.
package markdown

import (
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
)

// Render serializes a Document-rooted tree to Markdown.
func Render(doc *ast.Node, opts ...Option) (string, error) {
	if doc == nil || doc.Kind != ast.KindDocument {
		return "", errors.New(errors.ErrCodeInvalidInput, "renderer requires a document root")
	}

	o := NewOptions(opts...)
	r := &renderer{
		opts:   o,
		feats:  o.features(),
		refIDs: make(map[string]int),
	}

	var parts []string
	if fm := r.frontMatter(doc.Meta); fm != "" {
		parts = append(parts, fm)
	}
	for _, child := range doc.Children {
		block := r.block(child, 0)
		if block == "" {
			continue
		}
		parts = append(parts, block)
		if o.LinkStyle == LinkReference && o.RefPlacement == RefAfterBlock {
			if defs := r.flushRefs(); defs != "" {
				parts = append(parts, defs)
			}
		}
	}
	if defs := r.flushRefs(); defs != "" {
		parts = append(parts, defs)
	}
	return strings.Join(parts, "\n\n"), nil
}

// RenderTo renders the tree and writes the result to w.
func RenderTo(w io.Writer, doc *ast.Node, opts ...Option) error {
	text, err := Render(doc, opts...)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

// RenderFile renders the tree to the given path, ending the file with a
// newline.
func RenderFile(path string, doc *ast.Node, opts ...Option) error {
	text, err := Render(doc, opts...)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// renderer holds the per-render state. A fresh instance is built for every
// Render call so no counter leaks across renders.
type renderer struct {
	opts  Options
	feats featureSet

	refIDs  map[string]int
	pending []refDef
	counter int

	// inLink is set while rendering link or image children. A URL inside
	// link text is not bare, so autolinking is suppressed there.
	inLink bool
}

type refDef struct {
	id    int
	dest  string
	title string
}

// refID returns the reference id for a destination, allocating the next
// integer on first encounter. Repeated destinations reuse the existing id.
func (r *renderer) refID(dest, title string) int {
	if id, ok := r.refIDs[dest]; ok {
		return id
	}
	r.counter++
	r.refIDs[dest] = r.counter
	r.pending = append(r.pending, refDef{id: r.counter, dest: dest, title: title})
	return r.counter
}

// flushRefs emits and clears the buffered reference definitions. Pending
// definitions are already in id order since ids are allocated
// monotonically.
func (r *renderer) flushRefs() string {
	if len(r.pending) == 0 {
		return ""
	}
	lines := make([]string, 0, len(r.pending))
	for _, d := range r.pending {
		line := "[" + strconv.Itoa(d.id) + "]: " + d.dest
		if d.title != "" {
			line += " \"" + d.title + "\""
		}
		lines = append(lines, line)
	}
	r.pending = r.pending[:0]
	return strings.Join(lines, "\n")
}

// === Blocks ===

func (r *renderer) blocks(nodes []*ast.Node, depth int) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if b := r.block(n, depth); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (r *renderer) block(n *ast.Node, depth int) string {
	switch n.Kind {
	case ast.KindHeading:
		return r.heading(n)
	case ast.KindParagraph:
		return r.inlines(n.Children)
	case ast.KindCodeBlock:
		return codeBlock(n)
	case ast.KindBlockQuote:
		return r.blockQuote(n, depth)
	case ast.KindList:
		return r.list(n, depth)
	case ast.KindTable:
		return r.table(n)
	case ast.KindThematicBreak:
		return "---"
	case ast.KindHTMLBlock:
		return strings.TrimRight(n.Literal, "\n")
	case ast.KindComment:
		return "<!-- " + n.Literal + " -->"
	case ast.KindFootnoteDefinition:
		return r.footnoteDefinition(n, depth)
	case ast.KindMathBlock:
		return r.mathBlock(n)
	case ast.KindDefinitionList:
		return r.definitionList(n, depth)
	default:
		if n.Kind.IsInline() {
			// A stray inline at block level renders as its own paragraph.
			return r.inline(n)
		}
		return strings.Join(r.blocks(n.Children, depth), "\n\n")
	}
}

// heading clamps the effective level into 1..6. Setext style applies to
// levels 1 and 2 only; the underline length equals the plain-text width of
// the content so markup does not inflate it.
func (r *renderer) heading(n *ast.Node) string {
	level := n.Level + r.opts.HeadingOffset
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	content := r.inlines(n.Children)
	if r.opts.HeadingStyle == HeadingSetext && level <= 2 {
		width := utf8.RuneCountInString(n.PlainText())
		if width < 1 {
			width = 1
		}
		underline := "="
		if level == 2 {
			underline = "-"
		}
		return content + "\n" + strings.Repeat(underline, width)
	}
	return strings.Repeat("#", level) + " " + content
}

func codeBlock(n *ast.Node) string {
	body := strings.TrimRight(n.Literal, "\n")
	width := 3
	if run := longestBacktickRun(body); run >= 3 {
		width = run + 1
	}
	fence := strings.Repeat("`", width)
	if body == "" {
		return fence + n.Language + "\n" + fence
	}
	return fence + n.Language + "\n" + body + "\n" + fence
}

func (r *renderer) blockQuote(n *ast.Node, depth int) string {
	inner := strings.Join(r.blocks(n.Children, depth), "\n\n")
	lines := strings.Split(inner, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return strings.Join(lines, "\n")
}

// list renders items separated by a single newline when tight and a blank
// line when loose. Continuation lines are indented by the rendered width of
// the item's own marker, so ordered and unordered nesting aligns no matter
// how wide the numerals get.
func (r *renderer) list(n *ast.Node, depth int) string {
	sep := "\n\n"
	if n.Tight {
		sep = "\n"
	}
	items := make([]string, 0, len(n.Children))
	for i, item := range n.Children {
		items = append(items, r.listItem(n, item, i, depth))
	}
	return strings.Join(items, sep)
}

func (r *renderer) listItem(list, item *ast.Node, index, depth int) string {
	marker := r.bullet(depth)
	if list.Ordered {
		start := list.Start
		if start <= 0 {
			start = 1
		}
		marker = strconv.Itoa(start+index) + "."
	}

	blockSep := "\n\n"
	if list.Tight {
		blockSep = "\n"
	}
	body := strings.Join(r.blocks(item.Children, depth+1), blockSep)

	if item.Checked != nil && (r.feats.taskLists || r.opts.Fallback == FallbackForce) {
		box := "[ ] "
		if *item.Checked {
			box = "[x] "
		}
		body = box + body
	}

	indent := strings.Repeat(" ", utf8.RuneCountInString(marker)+1)
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = marker + " " + line
		case line != "":
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

func (r *renderer) bullet(depth int) string {
	set := r.opts.Bullets
	if len(set) == 0 {
		return "-"
	}
	return set[depth%len(set)]
}

func (r *renderer) footnoteDefinition(n *ast.Node, depth int) string {
	body := strings.Join(r.blocks(n.Children, depth), "\n\n")
	if !r.feats.footnotes && r.opts.Fallback != FallbackForce {
		switch r.opts.Fallback {
		case FallbackDrop:
			return ""
		case FallbackHTML:
			return "<div class=\"footnote\" id=\"fn-" + n.Literal + "\">\n" + body + "\n</div>"
		default:
			return body
		}
	}
	lines := strings.Split(body, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = "    " + lines[i]
		}
	}
	return "[^" + n.Literal + "]: " + strings.Join(lines, "\n")
}

func (r *renderer) mathBlock(n *ast.Node) string {
	if !r.feats.math && r.opts.Fallback != FallbackForce {
		switch r.opts.Fallback {
		case FallbackDrop:
			return ""
		case FallbackHTML:
			return "<pre class=\"math\">\n" + htmlEscape(n.Literal) + "\n</pre>"
		default:
			return n.Literal
		}
	}
	return "$$\n" + strings.TrimRight(n.Literal, "\n") + "\n$$"
}

// definitionList renders pandoc-style term/description pairs. Terms hold
// inline children, descriptions hold blocks.
func (r *renderer) definitionList(n *ast.Node, depth int) string {
	if !r.feats.definitionLists && r.opts.Fallback != FallbackForce {
		switch r.opts.Fallback {
		case FallbackDrop:
			return ""
		case FallbackHTML:
			return r.definitionListHTML(n)
		default:
			return r.definitionListPlain(n, depth)
		}
	}

	var entries []string
	var current []string
	for _, child := range n.Children {
		switch child.Kind {
		case ast.KindDefinitionTerm:
			if len(current) > 0 {
				entries = append(entries, strings.Join(current, "\n"))
				current = nil
			}
			current = append(current, r.inlines(child.Children))
		case ast.KindDefinitionDescription:
			body := strings.Join(r.blocks(child.Children, depth), "\n\n")
			lines := strings.Split(body, "\n")
			for i, line := range lines {
				if i == 0 {
					lines[i] = ": " + line
				} else if line != "" {
					lines[i] = "  " + line
				}
			}
			current = append(current, strings.Join(lines, "\n"))
		}
	}
	if len(current) > 0 {
		entries = append(entries, strings.Join(current, "\n"))
	}
	return strings.Join(entries, "\n\n")
}

func (r *renderer) definitionListPlain(n *ast.Node, depth int) string {
	var parts []string
	for _, child := range n.Children {
		switch child.Kind {
		case ast.KindDefinitionTerm:
			if t := r.inlines(child.Children); t != "" {
				parts = append(parts, t)
			}
		case ast.KindDefinitionDescription:
			parts = append(parts, r.blocks(child.Children, depth)...)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (r *renderer) definitionListHTML(n *ast.Node) string {
	var b strings.Builder
	b.WriteString("<dl>\n")
	for _, child := range n.Children {
		switch child.Kind {
		case ast.KindDefinitionTerm:
			b.WriteString("<dt>" + htmlEscape(child.PlainText()) + "</dt>\n")
		case ast.KindDefinitionDescription:
			b.WriteString("<dd>" + htmlEscape(child.PlainText()) + "</dd>\n")
		}
	}
	b.WriteString("</dl>")
	return b.String()
}
