package builtin

import (
	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/transform"
)

func tightenListsMeta() transform.Meta {
	return transform.Meta{
		Name:        "tighten-lists",
		Description: "Mark lists tight when every item holds at most one paragraph.",
		Priority:    150,
		Tags:        []string{"structure"},
		Factory: func(transform.Params) (transform.Transform, error) {
			var t transform.Func
			t = func(n *ast.Node) (*ast.Node, error) {
				if n.Kind == ast.KindList && !n.Tight && tightenable(n) {
					c := *n
					c.Tight = true
					return transform.Children(t, &c)
				}
				return transform.Children(t, n)
			}
			return t, nil
		},
	}
}

// tightenable reports whether every item carries at most one paragraph
// plus optional nested lists, the shape a tight list can express.
func tightenable(list *ast.Node) bool {
	for _, item := range list.Children {
		paragraphs := 0
		for _, block := range item.Children {
			switch block.Kind {
			case ast.KindParagraph:
				paragraphs++
			case ast.KindList:
			default:
				return false
			}
		}
		if paragraphs > 1 {
			return false
		}
	}
	return true
}
