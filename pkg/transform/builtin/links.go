package builtin

import (
	"regexp"
	"strings"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/errors"
	"github.com/treemark/treemark/pkg/transform"
)

func linkRewriteMeta() transform.Meta {
	return transform.Meta{
		Name:        "link-rewrite",
		Description: "Rewrite link and image destinations by prefix or regular expression.",
		Tags:        []string{"links"},
		Params: map[string]transform.ParamSpec{
			"from": {
				Type:        transform.TypeString,
				Description: "prefix to replace, or a pattern when regex is set",
				Required:    true,
			},
			"to": {
				Type:        transform.TypeString,
				Description: "replacement text",
				Default:     "",
			},
			"regex": {
				Type:        transform.TypeBool,
				Description: "treat from as a regular expression",
				Default:     false,
			},
		},
		Factory: func(p transform.Params) (transform.Transform, error) {
			from, to := p.String("from"), p.String("to")

			rewrite := func(dest string) string {
				if strings.HasPrefix(dest, from) {
					return to + dest[len(from):]
				}
				return dest
			}
			if p.Bool("regex") {
				pattern, err := regexp.Compile(from)
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidParam, err,
						"link-rewrite: invalid pattern %q", from)
				}
				rewrite = func(dest string) string {
					return pattern.ReplaceAllString(dest, to)
				}
			}

			var t transform.Func
			t = func(n *ast.Node) (*ast.Node, error) {
				if n.Kind == ast.KindLink || n.Kind == ast.KindImage {
					if dest := rewrite(n.Destination); dest != n.Destination {
						c := *n
						c.Destination = dest
						return transform.Children(t, &c)
					}
				}
				return transform.Children(t, n)
			}
			return t, nil
		},
	}
}
