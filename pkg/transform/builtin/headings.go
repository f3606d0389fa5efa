package builtin

import (
	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/transform"
)

func headingOffsetMeta() transform.Meta {
	return transform.Meta{
		Name:        "heading-offset",
		Description: "Shift every heading level by a fixed offset, clamped to 1..6.",
		Tags:        []string{"headings"},
		Params: map[string]transform.ParamSpec{
			"offset": {
				Type:        transform.TypeInt,
				Description: "levels to add (negative promotes)",
				Required:    true,
			},
		},
		Factory: func(p transform.Params) (transform.Transform, error) {
			return shiftHeadings(p.Int("offset")), nil
		},
	}
}

func headingNormalizeMeta() transform.Meta {
	return transform.Meta{
		Name:        "heading-normalize",
		Description: "Shift all headings so the document's first heading is level 1.",
		Tags:        []string{"headings"},
		Factory: func(transform.Params) (transform.Transform, error) {
			return transform.Func(func(n *ast.Node) (*ast.Node, error) {
				first := n.FirstOfKind(ast.KindHeading)
				if first == nil || first.Level == 1 {
					return n, nil
				}
				return shiftHeadings(1 - first.Level).Apply(n)
			}), nil
		},
	}
}

func shiftHeadings(offset int) transform.Transform {
	var t transform.Func
	t = func(n *ast.Node) (*ast.Node, error) {
		if n.Kind == ast.KindHeading {
			level := clampLevel(n.Level + offset)
			if level == n.Level {
				return n, nil
			}
			c := *n
			c.Level = level
			return &c, nil
		}
		return transform.Children(t, n)
	}
	return t
}
