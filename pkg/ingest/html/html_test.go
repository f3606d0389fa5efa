package html

import (
	"strings"
	"testing"

	"github.com/treemark/treemark/pkg/ast"
)

func ingest(t *testing.T, source string, opts ...Option) *ast.Node {
	t.Helper()
	doc, err := IngestString(source, opts...)
	if err != nil {
		t.Fatalf("IngestString error: %v", err)
	}
	return doc
}

func TestIngest_BasicElements(t *testing.T) {
	doc := ingest(t, `<html><head><title>Page</title></head><body>
<h2>Section</h2>
<p>Hello <strong>bold</strong> and <em>soft</em>.</p>
<hr>
</body></html>`)

	if got := doc.MetaString("title"); got != "Page" {
		t.Errorf("title = %q", got)
	}
	if len(doc.Children) != 3 {
		t.Fatalf("blocks = %d, want 3", len(doc.Children))
	}
	h := doc.Children[0]
	if h.Kind != ast.KindHeading || h.Level != 2 || h.PlainText() != "Section" {
		t.Errorf("heading = %v level %d %q", h.Kind, h.Level, h.PlainText())
	}
	p := doc.Children[1]
	if p.FirstOfKind(ast.KindStrong) == nil || p.FirstOfKind(ast.KindEmphasis) == nil {
		t.Error("inline emphasis missing")
	}
	if doc.Children[2].Kind != ast.KindThematicBreak {
		t.Errorf("third block = %v", doc.Children[2].Kind)
	}
}

func TestIngest_SelectorScopes(t *testing.T) {
	page := `<body>
<nav><p>menu</p></nav>
<article class="post"><h1>Post</h1><p>content</p></article>
<footer><p>legal</p></footer>
</body>`

	doc := ingest(t, page, WithSelector("article.post"))
	if len(doc.Children) != 2 {
		t.Fatalf("blocks = %d, want 2", len(doc.Children))
	}
	text := doc.PlainText()
	if strings.Contains(text, "menu") || strings.Contains(text, "legal") {
		t.Errorf("chrome leaked into scoped ingest: %q", text)
	}
}

func TestIngest_SelectorMissesIsError(t *testing.T) {
	_, err := IngestString("<p>x</p>", WithSelector("#nope"))
	if err == nil {
		t.Error("expected error for a selector that matches nothing")
	}
}

func TestIngest_Lists(t *testing.T) {
	doc := ingest(t, `<ol start="4"><li>a</li><li>b</li></ol>`)

	list := doc.Children[0]
	if !list.Ordered || list.Start != 4 {
		t.Errorf("ordered=%v start=%d", list.Ordered, list.Start)
	}
	if len(list.Children) != 2 || !list.Tight {
		t.Errorf("items=%d tight=%v", len(list.Children), list.Tight)
	}
}

func TestIngest_TaskList(t *testing.T) {
	doc := ingest(t, `<ul><li><input type="checkbox" checked> done</li><li><input type="checkbox"> open</li></ul>`)

	items := doc.Children[0].Children
	if items[0].Checked == nil || !*items[0].Checked {
		t.Error("first item should be checked")
	}
	if items[1].Checked == nil || *items[1].Checked {
		t.Error("second item should be unchecked")
	}
	if got := strings.TrimSpace(items[0].PlainText()); got != "done" {
		t.Errorf("item text = %q", got)
	}
}

func TestIngest_CodeBlockLanguage(t *testing.T) {
	doc := ingest(t, "<pre><code class=\"language-go\">x := 1\n</code></pre>")

	cb := doc.Children[0]
	if cb.Kind != ast.KindCodeBlock || cb.Language != "go" {
		t.Errorf("kind=%v language=%q", cb.Kind, cb.Language)
	}
	if cb.Literal != "x := 1\n" {
		t.Errorf("literal = %q", cb.Literal)
	}
}

func TestIngest_Table(t *testing.T) {
	doc := ingest(t, `<table>
<thead><tr><th align="left">Name</th><th align="right">N</th></tr></thead>
<tbody><tr><td>a</td><td>1</td></tr></tbody>
</table>`)

	table := doc.Children[0]
	if table.Kind != ast.KindTable {
		t.Fatalf("block = %v", table.Kind)
	}
	if table.Header == nil || len(table.Header.Children) != 2 {
		t.Fatal("header missing")
	}
	if len(table.Children) != 1 {
		t.Errorf("rows = %d", len(table.Children))
	}
	want := []ast.Alignment{ast.AlignLeft, ast.AlignRight}
	for i, a := range want {
		if table.Alignments[i] != a {
			t.Errorf("alignment[%d] = %v, want %v", i, table.Alignments[i], a)
		}
	}
}

func TestIngest_HeaderlessTableRowPromotion(t *testing.T) {
	doc := ingest(t, `<table><tr><th>H</th></tr><tr><td>d</td></tr></table>`)

	table := doc.Children[0]
	if table.Header == nil {
		t.Fatal("all-th first row should become the header")
	}
	if got := table.Header.PlainText(); got != "H" {
		t.Errorf("header text = %q", got)
	}
}

func TestIngest_LinksAndImages(t *testing.T) {
	doc := ingest(t, `<p><a href="/docs" title="Docs">here</a> <img src="/x.png" alt="pic"></p>`)

	link := doc.FirstOfKind(ast.KindLink)
	if link == nil || link.Destination != "/docs" || link.Title != "Docs" {
		t.Errorf("link = %+v", link)
	}
	img := doc.FirstOfKind(ast.KindImage)
	if img == nil || img.Destination != "/x.png" || img.PlainText() != "pic" {
		t.Errorf("image = %+v", img)
	}
}

func TestIngest_UnknownElementPreserved(t *testing.T) {
	doc := ingest(t, `<p>play <audio src="a.mp3"></audio> now</p>`)

	raw := doc.FirstOfKind(ast.KindHTMLInline)
	if raw == nil || !strings.Contains(raw.Literal, "audio") {
		t.Errorf("raw inline = %+v", raw)
	}
}

func TestIngest_BareTextWrapped(t *testing.T) {
	doc := ingest(t, `<div>loose text <b>here</b><h3>After</h3></div>`)

	if doc.Children[0].Kind != ast.KindParagraph {
		t.Errorf("first block = %v, want paragraph", doc.Children[0].Kind)
	}
	if doc.Children[1].Kind != ast.KindHeading {
		t.Errorf("second block = %v, want heading", doc.Children[1].Kind)
	}
}

func TestIngest_StyledInlines(t *testing.T) {
	doc := ingest(t, `<p><del>x</del> <u>y</u> <sup>2</sup> <sub>i</sub></p>`)

	for _, kind := range []ast.Kind{ast.KindStrikethrough, ast.KindUnderline, ast.KindSuperscript, ast.KindSubscript} {
		if doc.FirstOfKind(kind) == nil {
			t.Errorf("missing %v", kind)
		}
	}
}

func TestIngest_Comment(t *testing.T) {
	doc := ingest(t, `<body><!-- keep me --><p>x</p></body>`)

	comment := doc.FirstOfKind(ast.KindComment)
	if comment == nil || comment.Literal != "keep me" {
		t.Errorf("comment = %+v", comment)
	}
}

func TestIngest_WhitespaceCollapsed(t *testing.T) {
	doc := ingest(t, "<p>one\n   two</p>")

	if got := doc.Children[0].PlainText(); got != "one two" {
		t.Errorf("text = %q, want %q", got, "one two")
	}
}
