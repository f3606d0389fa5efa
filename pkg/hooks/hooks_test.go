package hooks

import (
	"fmt"
	"testing"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
)

func TestRunStage_FoldFeedsOutputForward(t *testing.T) {
	m := NewManager()
	m.OnStage(StagePostIngest, 100, func(n *ast.Node, ctx *Context) (Result, error) {
		c := n.Clone()
		c.SetMeta("first", true)
		return Keep(c), nil
	})
	m.OnStage(StagePostIngest, 100, func(n *ast.Node, ctx *Context) (Result, error) {
		if n.Meta["first"] != true {
			t.Error("second hook did not receive first hook's output")
		}
		c := n.Clone()
		c.SetMeta("second", true)
		return Keep(c), nil
	})

	doc := ast.NewDocument()
	res, err := m.RunStage(StagePostIngest, doc, NewContext(doc))
	if err != nil {
		t.Fatalf("RunStage error: %v", err)
	}
	if res.Removed() {
		t.Fatal("unexpected removal")
	}
	if res.Node().Meta["second"] != true {
		t.Error("fold result missing second hook's change")
	}
}

func TestRunStage_PriorityOrderWithRegistrationTiebreak(t *testing.T) {
	var order []string
	record := func(name string) NodeHook {
		return func(n *ast.Node, ctx *Context) (Result, error) {
			order = append(order, name)
			return Keep(n), nil
		}
	}

	m := NewManager()
	m.OnStage(StagePreRender, 200, record("late"))
	m.OnStage(StagePreRender, 50, record("early"))
	m.OnStage(StagePreRender, 100, record("mid-a"))
	m.OnStage(StagePreRender, 100, record("mid-b"))

	doc := ast.NewDocument()
	if _, err := m.RunStage(StagePreRender, doc, NewContext(doc)); err != nil {
		t.Fatalf("RunStage error: %v", err)
	}

	want := []string{"early", "mid-a", "mid-b", "late"}
	if fmt.Sprint(order) != fmt.Sprint(want) {
		t.Errorf("execution order = %v, want %v", order, want)
	}
}

func TestRunStage_RemovalStopsFold(t *testing.T) {
	calls := 0
	m := NewManager()
	m.OnStage(StagePostIngest, 1, func(n *ast.Node, ctx *Context) (Result, error) {
		return Remove(), nil
	})
	m.OnStage(StagePostIngest, 2, func(n *ast.Node, ctx *Context) (Result, error) {
		calls++
		return Keep(n), nil
	})

	doc := ast.NewDocument()
	res, err := m.RunStage(StagePostIngest, doc, NewContext(doc))
	if err != nil {
		t.Fatalf("RunStage error: %v", err)
	}
	if !res.Removed() {
		t.Error("removal should propagate")
	}
	if calls != 0 {
		t.Errorf("later hook ran %d times after removal, want 0", calls)
	}
}

func TestRunStage_NonStrictIsolatesFailure(t *testing.T) {
	m := NewManager()
	m.OnStage(StagePostIngest, 1, func(n *ast.Node, ctx *Context) (Result, error) {
		return Result{}, fmt.Errorf("boom")
	})
	m.OnStage(StagePostIngest, 2, func(n *ast.Node, ctx *Context) (Result, error) {
		c := n.Clone()
		c.SetMeta("survived", true)
		return Keep(c), nil
	})

	doc := ast.NewDocument()
	res, err := m.RunStage(StagePostIngest, doc, NewContext(doc))
	if err != nil {
		t.Fatalf("non-strict RunStage should not fail: %v", err)
	}
	if res.Node().Meta["survived"] != true {
		t.Error("fold should continue from last successful value after a failure")
	}
}

func TestRunStage_StrictFailureIsFatal(t *testing.T) {
	m := NewManager(WithStrict())
	m.OnStage(StagePostIngest, 1, func(n *ast.Node, ctx *Context) (Result, error) {
		return Result{}, fmt.Errorf("boom")
	})

	doc := ast.NewDocument()
	_, err := m.RunStage(StagePostIngest, doc, NewContext(doc))
	if !errors.Is(err, errors.ErrCodeHookFailed) {
		t.Errorf("got %v, want HOOK_FAILED", err)
	}
}

func TestClassify(t *testing.T) {
	if kind, ok := Classify(ast.NewHeading(1)); !ok || kind != ast.KindHeading {
		t.Errorf("Classify(heading) = %v, %v", kind, ok)
	}
	if _, ok := Classify(nil); ok {
		t.Error("Classify(nil) should not resolve")
	}
	if _, ok := Classify(&ast.Node{}); ok {
		t.Error("Classify(zero node) should not resolve")
	}
}

func TestTraverse_AppliesKindHooks(t *testing.T) {
	m := NewManager()
	m.OnKind(ast.KindText, 100, func(n *ast.Node, ctx *Context) (Result, error) {
		c := *n
		c.Literal = "rewritten"
		return Keep(&c), nil
	})

	doc := ast.NewDocument(ast.NewParagraph(ast.NewText("original")))
	ctx := NewContext(doc)
	out, err := m.Traverse(doc, ctx)
	if err != nil {
		t.Fatalf("Traverse error: %v", err)
	}
	if got := out.Children[0].Children[0].Literal; got != "rewritten" {
		t.Errorf("text = %q, want %q", got, "rewritten")
	}
	if got := doc.Children[0].Children[0].Literal; got != "original" {
		t.Errorf("input tree mutated to %q", got)
	}
}

func TestTraverse_RemovalDropsSubtree(t *testing.T) {
	m := NewManager()
	m.OnKind(ast.KindBlockQuote, 100, func(n *ast.Node, ctx *Context) (Result, error) {
		return Remove(), nil
	})

	doc := ast.NewDocument(
		ast.NewBlockQuote(ast.NewParagraph(ast.NewText("quoted"))),
		ast.NewParagraph(ast.NewText("kept")),
	)
	out, err := m.Traverse(doc, NewContext(doc))
	if err != nil {
		t.Fatalf("Traverse error: %v", err)
	}
	if len(out.Children) != 1 || out.Children[0].Kind != ast.KindParagraph {
		t.Errorf("unexpected children after removal: %d", len(out.Children))
	}
}

func TestTraverse_RootRemovalRejected(t *testing.T) {
	m := NewManager()
	m.OnKind(ast.KindDocument, 100, func(n *ast.Node, ctx *Context) (Result, error) {
		return Remove(), nil
	})

	doc := ast.NewDocument()
	_, err := m.Traverse(doc, NewContext(doc))
	if !errors.Is(err, errors.ErrCodeProtectedRoot) {
		t.Errorf("got %v, want PROTECTED_ROOT", err)
	}
}

func TestTraverse_PathStack(t *testing.T) {
	m := NewManager()
	var depth int
	var parentKind ast.Kind
	m.OnKind(ast.KindText, 100, func(n *ast.Node, ctx *Context) (Result, error) {
		depth = ctx.Depth()
		if p := ctx.Parent(); p != nil {
			parentKind = p.Kind
		}
		return Keep(n), nil
	})

	doc := ast.NewDocument(ast.NewBlockQuote(ast.NewParagraph(ast.NewText("deep"))))
	ctx := NewContext(doc)
	if _, err := m.Traverse(doc, ctx); err != nil {
		t.Fatalf("Traverse error: %v", err)
	}
	if depth != 3 {
		t.Errorf("text depth = %d, want 3 (document > quote > paragraph)", depth)
	}
	if parentKind != ast.KindParagraph {
		t.Errorf("parent kind = %v, want paragraph", parentKind)
	}
	if ctx.Depth() != 0 {
		t.Errorf("path stack not drained after traversal: depth %d", ctx.Depth())
	}
}

func TestRunPostRender_RewritesText(t *testing.T) {
	m := NewManager()
	m.OnPostRender(100, func(text string, ctx *Context) (string, error) {
		return text + "\n<!-- generated -->", nil
	})

	doc := ast.NewDocument()
	out, err := m.RunPostRender("# Title", NewContext(doc))
	if err != nil {
		t.Fatalf("RunPostRender error: %v", err)
	}
	want := "# Title\n<!-- generated -->"
	if out != want {
		t.Errorf("RunPostRender = %q, want %q", out, want)
	}
}

func TestHasKindHooks(t *testing.T) {
	m := NewManager()
	if m.HasKindHooks() {
		t.Error("empty manager should report no kind hooks")
	}
	m.OnKind(ast.KindText, 100, func(n *ast.Node, ctx *Context) (Result, error) {
		return Keep(n), nil
	})
	if !m.HasKindHooks() {
		t.Error("manager should report kind hooks after registration")
	}
}

func TestHasAnyHooks(t *testing.T) {
	keep := func(n *ast.Node, ctx *Context) (Result, error) { return Keep(n), nil }

	m := NewManager()
	if m.HasAnyHooks() {
		t.Error("empty manager should report no hooks")
	}

	m.OnStage(StagePreRender, 100, keep)
	if !m.HasAnyHooks() {
		t.Error("stage hook not reported")
	}

	m = NewManager()
	m.OnKind(ast.KindHeading, 100, keep)
	if !m.HasAnyHooks() {
		t.Error("kind hook not reported")
	}

	m = NewManager()
	m.OnPostRender(100, func(text string, ctx *Context) (string, error) { return text, nil })
	if !m.HasAnyHooks() {
		t.Error("post-render hook not reported")
	}
}
