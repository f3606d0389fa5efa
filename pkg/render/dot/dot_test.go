package dot

import (
	"strings"
	"testing"

	"github.com/treemark/treemark/pkg/ast"
)

func TestToDOT_Structure(t *testing.T) {
	doc := ast.NewDocument(
		ast.NewHeading(2, ast.NewText("Title")),
		ast.NewParagraph(ast.NewText("body")),
	)

	src := ToDOT(doc, Options{ShowText: true})
	if !strings.HasPrefix(src, "digraph tree {") {
		t.Fatalf("not a digraph:\n%s", src)
	}
	for _, want := range []string{"document", "heading 2", "paragraph", "Title", "n0 -> n1;"} {
		if !strings.Contains(src, want) {
			t.Errorf("missing %q in:\n%s", want, src)
		}
	}
}

func TestToDOT_TextHiddenByDefault(t *testing.T) {
	doc := ast.NewDocument(ast.NewParagraph(ast.NewText("secret payload")))
	src := ToDOT(doc, Options{})
	if strings.Contains(src, "secret payload") {
		t.Error("text shown without ShowText")
	}
}

func TestToDOT_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("x", 100)
	doc := ast.NewDocument(ast.NewParagraph(ast.NewText(long)))
	src := ToDOT(doc, Options{ShowText: true, MaxLabel: 10})
	if strings.Contains(src, long) {
		t.Error("long literal not truncated")
	}
	if !strings.Contains(src, "…") {
		t.Error("truncation marker missing")
	}
}

func TestToDOT_TableHeaderEdgeDashed(t *testing.T) {
	table := ast.NewTable(
		ast.NewTableRow(ast.NewTableCell(ast.NewText("h"))),
		ast.NewTableRow(ast.NewTableCell(ast.NewText("d"))),
	)
	src := ToDOT(ast.NewDocument(table), Options{})
	if !strings.Contains(src, "style=dashed") {
		t.Error("header edge not distinguished")
	}
}

func TestToDOT_NilDocument(t *testing.T) {
	src := ToDOT(nil, Options{})
	if !strings.HasPrefix(src, "digraph tree {") || !strings.HasSuffix(src, "}\n") {
		t.Errorf("malformed output for nil input:\n%s", src)
	}
}
