package markdown

import (
	"strings"
	"testing"

	"github.com/treemark/treemark/pkg/ast"
)

func sampleTable() *ast.Node {
	return ast.NewTable(
		ast.NewTableRow(
			ast.NewTableCell(ast.NewText("Name")),
			ast.NewTableCell(ast.NewText("X")),
		),
		ast.NewTableRow(
			ast.NewTableCell(ast.NewText("a")),
			ast.NewTableCell(ast.NewText("b")),
		),
	)
}

func TestTable_PaddedPipeTable(t *testing.T) {
	got := render(t, ast.NewDocument(sampleTable()))
	want := strings.Join([]string{
		"| Name | X   |",
		"| ---- | --- |",
		"| a    | b   |",
	}, "\n")
	if got != want {
		t.Errorf("table = %q, want %q", got, want)
	}
}

func TestTable_AlignmentMarkers(t *testing.T) {
	table := sampleTable()
	table.Alignments = []ast.Alignment{ast.AlignLeft, ast.AlignCenter}

	got := render(t, ast.NewDocument(table))
	if !strings.Contains(got, "| :--- | :-: |") {
		t.Errorf("missing alignment markers:\n%s", got)
	}
}

func TestTable_UnpaddedSkipsWidthPass(t *testing.T) {
	got := render(t, ast.NewDocument(sampleTable()), WithUnpaddedTables())
	want := strings.Join([]string{
		"| Name | X |",
		"| --- | --- |",
		"| a | b |",
	}, "\n")
	if got != want {
		t.Errorf("table = %q, want %q", got, want)
	}
}

func TestTable_FirstRowPromotedToHeader(t *testing.T) {
	table := &ast.Node{
		Kind: ast.KindTable,
		Children: []*ast.Node{
			ast.NewTableRow(ast.NewTableCell(ast.NewText("h1")), ast.NewTableCell(ast.NewText("h2"))),
			ast.NewTableRow(ast.NewTableCell(ast.NewText("d1")), ast.NewTableCell(ast.NewText("d2"))),
		},
	}

	got := render(t, ast.NewDocument(table))
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], "h1") || !strings.Contains(lines[2], "d1") {
		t.Errorf("first row not promoted to header:\n%s", got)
	}
}

func TestTable_RaggedRowsPaddedToHeader(t *testing.T) {
	table := ast.NewTable(
		ast.NewTableRow(
			ast.NewTableCell(ast.NewText("a")),
			ast.NewTableCell(ast.NewText("b")),
		),
		ast.NewTableRow(ast.NewTableCell(ast.NewText("only"))),
		ast.NewTableRow(
			ast.NewTableCell(ast.NewText("x")),
			ast.NewTableCell(ast.NewText("y")),
			ast.NewTableCell(ast.NewText("dropped")),
		),
	)

	got := render(t, ast.NewDocument(table))
	if strings.Contains(got, "dropped") {
		t.Errorf("extra cell not truncated:\n%s", got)
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.Count(line, "|") != 3 {
			t.Errorf("row %q does not have the canonical column count", line)
		}
	}
}

func TestTable_CellPipesEscaped(t *testing.T) {
	table := ast.NewTable(
		ast.NewTableRow(ast.NewTableCell(ast.NewText("a|b"))),
		ast.NewTableRow(ast.NewTableCell(ast.NewText("c"))),
	)
	got := render(t, ast.NewDocument(table))
	if !strings.Contains(got, "a\\|b") {
		t.Errorf("cell pipe not escaped:\n%s", got)
	}
}

func TestTable_ASCIIFallback(t *testing.T) {
	got := render(t, ast.NewDocument(sampleTable()), WithFlavor(FlavorStrict))
	want := strings.Join([]string{
		"+------+-----+",
		"+ Name + X   +",
		"+------+-----+",
		"+ a    + b   +",
		"+------+-----+",
	}, "\n")
	if got != want {
		t.Errorf("ascii table = %q, want %q", got, want)
	}
	if strings.Contains(got, "|") {
		t.Error("ascii fallback must not contain pipe characters")
	}
}

func TestTable_HTMLFallback(t *testing.T) {
	got := render(t, ast.NewDocument(sampleTable()),
		WithFlavor(FlavorStrict), WithTableFallback(TableFallbackHTML))
	for _, fragment := range []string{"<table>", "<th>Name</th>", "<td>a</td>", "</table>"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("html fallback missing %q:\n%s", fragment, got)
		}
	}
}

func TestTable_DropFallback(t *testing.T) {
	doc := ast.NewDocument(
		ast.NewParagraph(ast.NewText("before")),
		sampleTable(),
		ast.NewParagraph(ast.NewText("after")),
	)
	got := render(t, doc, WithFlavor(FlavorStrict), WithTableFallback(TableFallbackDrop))
	if got != "before\n\nafter" {
		t.Errorf("drop fallback = %q", got)
	}
}
