package builtin

import (
	"fmt"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/transform"
)

func stripMeta() transform.Meta {
	return transform.Meta{
		Name:        "strip",
		Description: "Remove every node of the named kinds, subtrees included.",
		Priority:    50,
		Tags:        []string{"structure"},
		Params: map[string]transform.ParamSpec{
			"kinds": {
				Type:        transform.TypeStringList,
				Description: "kind tags to remove, e.g. comment, html_block",
				Required:    true,
				Validate: func(v any) error {
					for _, name := range v.([]string) {
						kind, ok := ast.KindFromName(name)
						if !ok {
							return fmt.Errorf("unknown node kind %q", name)
						}
						if kind == ast.KindDocument {
							return fmt.Errorf("the document root cannot be stripped")
						}
					}
					return nil
				},
			},
		},
		Factory: func(p transform.Params) (transform.Transform, error) {
			drop := make(map[ast.Kind]bool)
			for _, name := range p.StringList("kinds") {
				kind, _ := ast.KindFromName(name)
				drop[kind] = true
			}
			var t transform.Func
			t = func(n *ast.Node) (*ast.Node, error) {
				if drop[n.Kind] {
					return nil, nil
				}
				return transform.Children(t, n)
			}
			return t, nil
		},
	}
}
