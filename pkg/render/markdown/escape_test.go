package markdown

import (
	"testing"

	"github.com/treemark/treemark/pkg/ast"
)

func renderText(t *testing.T, text string, opts ...Option) string {
	t.Helper()
	doc := ast.NewDocument(ast.NewParagraph(ast.NewText(text)))
	out, err := Render(doc, opts...)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	return out
}

func TestEscape_SnakeCasePassesThrough(t *testing.T) {
	if got := renderText(t, "snake_case_name"); got != "snake_case_name" {
		t.Errorf("got %q, want no escaping", got)
	}
}

func TestEscape_WordBoundaryUnderscores(t *testing.T) {
	if got := renderText(t, "_start_"); got != "\\_start\\_" {
		t.Errorf("got %q, want %q", got, "\\_start\\_")
	}
}

func TestEscape_HashOnlyAtRunStart(t *testing.T) {
	if got := renderText(t, "#1 pick, see #2"); got != "\\#1 pick, see #2" {
		t.Errorf("got %q, want only the leading hash escaped", got)
	}
}

func TestEscape_AlwaysEscapedCharacters(t *testing.T) {
	cases := map[string]string{
		"2*3":      "2\\*3",
		"a\\b":     "a\\\\b",
		"x [y] z":  "x \\[y\\] z",
		"tick`tap": "tick\\`tap",
	}
	for in, want := range cases {
		if got := renderText(t, in); got != want {
			t.Errorf("renderText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAutolink_BareURLWrapped(t *testing.T) {
	got := renderText(t, "see https://example.com/docs for details")
	want := "see <https://example.com/docs> for details"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAutolink_TrailingPunctuationTrimmed(t *testing.T) {
	got := renderText(t, "visit https://example.com/docs.")
	want := "visit <https://example.com/docs>."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAutolink_BalancedParensPreserved(t *testing.T) {
	got := renderText(t, "read https://en.wikipedia.org/wiki/Tree_(data_structure) today")
	want := "read <https://en.wikipedia.org/wiki/Tree_(data_structure)> today"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAutolink_UnbalancedCloseParenStripped(t *testing.T) {
	got := renderText(t, "(see https://example.com/a)")
	want := "(see <https://example.com/a>)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAutolink_Disabled(t *testing.T) {
	got := renderText(t, "see https://example.com now", WithoutAutolink())
	want := "see https://example.com now"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCodeSpan_BacktickContent(t *testing.T) {
	doc := ast.NewDocument(ast.NewParagraph(ast.NewCode("a`b")))
	got, err := Render(doc)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got != "``a`b``" {
		t.Errorf("got %q, want extended fence", got)
	}

	doc = ast.NewDocument(ast.NewParagraph(ast.NewCode("`edge")))
	got, err = Render(doc)
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got != "`` `edge ``" {
		t.Errorf("got %q, want padded fence", got)
	}
}
