package builtin

import (
	"strings"
	"testing"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/transform"
)

func registry(t *testing.T) *transform.Registry {
	t.Helper()
	reg := transform.NewRegistry(nil)
	if err := RegisterAll(reg); err != nil {
		t.Fatalf("RegisterAll error: %v", err)
	}
	return reg
}

func instantiate(t *testing.T, name string, params transform.Params) transform.Transform {
	t.Helper()
	tr, err := registry(t).Instantiate(name, params)
	if err != nil {
		t.Fatalf("Instantiate(%q) error: %v", name, err)
	}
	return tr
}

func apply(t *testing.T, tr transform.Transform, doc *ast.Node) *ast.Node {
	t.Helper()
	out, err := transform.ApplyDocument(tr, doc)
	if err != nil {
		t.Fatalf("ApplyDocument error: %v", err)
	}
	return out
}

func TestHeadingOffset_Clamps(t *testing.T) {
	tr := instantiate(t, "heading-offset", transform.Params{"offset": 2})
	doc := ast.NewDocument(
		ast.NewHeading(1, ast.NewText("a")),
		ast.NewHeading(5, ast.NewText("b")),
	)

	out := apply(t, tr, doc)
	if got := out.Children[0].Level; got != 3 {
		t.Errorf("level 1 + 2 = %d, want 3", got)
	}
	if got := out.Children[1].Level; got != 6 {
		t.Errorf("level 5 + 2 = %d, want clamped 6", got)
	}

	tr = instantiate(t, "heading-offset", transform.Params{"offset": -10})
	out = apply(t, tr, doc)
	if got := out.Children[0].Level; got != 1 {
		t.Errorf("level 1 - 10 = %d, want clamped 1", got)
	}
}

func TestHeadingOffset_RequiresOffset(t *testing.T) {
	if _, err := registry(t).Instantiate("heading-offset", nil); err == nil {
		t.Error("expected error without offset")
	}
}

func TestHeadingNormalize_PromotesToLevelOne(t *testing.T) {
	tr := instantiate(t, "heading-normalize", nil)
	doc := ast.NewDocument(
		ast.NewHeading(3, ast.NewText("top")),
		ast.NewHeading(4, ast.NewText("sub")),
	)

	out := apply(t, tr, doc)
	if got := out.Children[0].Level; got != 1 {
		t.Errorf("first heading = %d, want 1", got)
	}
	if got := out.Children[1].Level; got != 2 {
		t.Errorf("second heading = %d, want 2", got)
	}
}

func TestHeadingNormalize_NoHeadingsIsNoop(t *testing.T) {
	tr := instantiate(t, "heading-normalize", nil)
	doc := ast.NewDocument(ast.NewParagraph(ast.NewText("prose")))
	if out := apply(t, tr, doc); out != doc {
		t.Error("expected the input instance back")
	}
}

func TestLinkRewrite_Prefix(t *testing.T) {
	tr := instantiate(t, "link-rewrite", transform.Params{
		"from": "http://old.example/",
		"to":   "https://new.example/",
	})
	doc := ast.NewDocument(ast.NewParagraph(
		ast.NewLink("http://old.example/page", "", ast.NewText("x")),
		ast.NewImage("http://other.example/i.png", "", ast.NewText("y")),
	))

	out := apply(t, tr, doc)
	if got := out.Children[0].Children[0].Destination; got != "https://new.example/page" {
		t.Errorf("link destination = %q", got)
	}
	if got := out.Children[0].Children[1].Destination; got != "http://other.example/i.png" {
		t.Errorf("unrelated image rewritten to %q", got)
	}
}

func TestLinkRewrite_Regex(t *testing.T) {
	tr := instantiate(t, "link-rewrite", transform.Params{
		"from":  `\.md$`,
		"to":    ".html",
		"regex": true,
	})
	doc := ast.NewDocument(ast.NewParagraph(
		ast.NewLink("guide.md", "", ast.NewText("guide")),
	))

	out := apply(t, tr, doc)
	if got := out.Children[0].Children[0].Destination; got != "guide.html" {
		t.Errorf("destination = %q, want guide.html", got)
	}
}

func TestLinkRewrite_BadPatternRejected(t *testing.T) {
	_, err := registry(t).Instantiate("link-rewrite", transform.Params{
		"from":  "[",
		"regex": true,
	})
	if err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestAnchorIDs_SlugsAndDuplicates(t *testing.T) {
	tr := instantiate(t, "anchor-ids", nil)
	doc := ast.NewDocument(
		ast.NewHeading(1, ast.NewText("Getting Started")),
		ast.NewHeading(2, ast.NewText("Getting Started")),
		ast.NewHeading(2, ast.NewText("!!!")),
	)

	out := apply(t, tr, doc)
	first := out.Children[0].MetaString(AnchorMetaKey)
	if first != "getting-started" {
		t.Errorf("slug = %q, want getting-started", first)
	}
	second := out.Children[1].MetaString(AnchorMetaKey)
	if second == "" || second == first {
		t.Errorf("duplicate heading got anchor %q, want a distinct fallback id", second)
	}
	if third := out.Children[2].MetaString(AnchorMetaKey); third == "" {
		t.Error("empty slug should fall back to a generated id")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Getting Started":  "getting-started",
		"What's New in v2": "what-s-new-in-v2",
		"  spaced  out  ":  "spaced-out",
		"!!!":              "",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTOC_InsertedAfterFirstHeading(t *testing.T) {
	reg := registry(t)
	order, err := reg.Resolve([]string{"toc"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := []string{"anchor-ids", "toc"}
	if len(order) != 2 || order[0] != want[0] || order[1] != want[1] {
		t.Fatalf("Resolve(toc) = %v, want %v", order, want)
	}

	doc := ast.NewDocument(
		ast.NewHeading(1, ast.NewText("Guide")),
		ast.NewParagraph(ast.NewText("intro")),
		ast.NewHeading(2, ast.NewText("Install")),
		ast.NewHeading(2, ast.NewText("Usage")),
		ast.NewHeading(4, ast.NewText("Too Deep")),
	)
	out := doc
	for _, name := range order {
		tr, err := reg.Instantiate(name, nil)
		if err != nil {
			t.Fatalf("Instantiate(%q) error: %v", name, err)
		}
		out = apply(t, tr, out)
	}

	toc := out.Children[1]
	if toc.Kind != ast.KindList {
		t.Fatalf("expected a list after the first heading, got %v", toc.Kind)
	}
	flat := toc.PlainText()
	for _, title := range []string{"Guide", "Install", "Usage"} {
		if !strings.Contains(flat, title) {
			t.Errorf("toc missing %q: %q", title, flat)
		}
	}
	if strings.Contains(flat, "Too Deep") {
		t.Errorf("toc includes a heading beyond max_depth: %q", flat)
	}
	link := toc.FirstOfKind(ast.KindLink)
	if link == nil || !strings.HasPrefix(link.Destination, "#") {
		t.Errorf("toc entries should link to anchors, got %v", link)
	}
}

func TestStrip_RemovesKinds(t *testing.T) {
	tr := instantiate(t, "strip", transform.Params{"kinds": []any{"comment", "html_block"}})
	doc := ast.NewDocument(
		ast.NewParagraph(ast.NewText("keep")),
		ast.NewHTMLBlock("<script></script>"),
		&ast.Node{Kind: ast.KindComment, Literal: "internal"},
	)

	out := apply(t, tr, doc)
	if len(out.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(out.Children))
	}
	if out.Children[0].Kind != ast.KindParagraph {
		t.Errorf("surviving kind = %v", out.Children[0].Kind)
	}
}

func TestStrip_RejectsDocumentKind(t *testing.T) {
	_, err := registry(t).Instantiate("strip", transform.Params{"kinds": []any{"document"}})
	if err == nil {
		t.Error("expected error for stripping the document kind")
	}
	_, err = registry(t).Instantiate("strip", transform.Params{"kinds": []any{"nonsense"}})
	if err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestMetaEnrich_StampsMetadata(t *testing.T) {
	tr := instantiate(t, "meta-enrich", nil)
	doc := ast.NewDocument(
		ast.NewHeading(1, ast.NewText("My Title")),
		ast.NewParagraph(ast.NewText("one two three")),
	)

	out := apply(t, tr, doc)
	if got := out.MetaString("title"); got != "My Title" {
		t.Errorf("title = %q", got)
	}
	if got := out.Meta["word_count"]; got != 5 {
		t.Errorf("word_count = %v, want 5", got)
	}
	if got := out.MetaString("generator"); got != "treemark" {
		t.Errorf("generator = %q", got)
	}
	if doc.Meta != nil {
		t.Error("input document metadata mutated")
	}
}

func TestMetaEnrich_KeepsExistingTitle(t *testing.T) {
	tr := instantiate(t, "meta-enrich", nil)
	doc := ast.NewDocument(ast.NewHeading(1, ast.NewText("Derived")))
	doc.SetMeta("title", "Explicit")

	out := apply(t, tr, doc)
	if got := out.MetaString("title"); got != "Explicit" {
		t.Errorf("title = %q, want the existing value kept", got)
	}
}

func TestTightenLists(t *testing.T) {
	tr := instantiate(t, "tighten-lists", nil)

	simple := ast.NewList(false, 0,
		ast.NewListItem(ast.NewParagraph(ast.NewText("a"))),
		ast.NewListItem(ast.NewParagraph(ast.NewText("b"))),
	)
	busy := ast.NewList(false, 0,
		ast.NewListItem(
			ast.NewParagraph(ast.NewText("a")),
			ast.NewParagraph(ast.NewText("b")),
		),
	)
	doc := ast.NewDocument(simple, busy)

	out := apply(t, tr, doc)
	if !out.Children[0].Tight {
		t.Error("single-paragraph list should be tight")
	}
	if out.Children[1].Tight {
		t.Error("multi-paragraph list must stay loose")
	}
	if simple.Tight {
		t.Error("input list mutated")
	}
}
