package builtin

import (
	"strings"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/transform"
)

func metaEnrichMeta() transform.Meta {
	return transform.Meta{
		Name:        "meta-enrich",
		Description: "Stamp document metadata: title from the first heading, word count, generator tag.",
		Priority:    200,
		Tags:        []string{"metadata"},
		Params: map[string]transform.ParamSpec{
			"generator": {
				Type:        transform.TypeString,
				Description: "generator tag value",
				Default:     "treemark",
			},
		},
		Factory: func(p transform.Params) (transform.Transform, error) {
			generator := p.String("generator")
			return transform.Func(func(root *ast.Node) (*ast.Node, error) {
				c := *root
				c.Meta = root.Meta.Clone()
				if c.Meta == nil {
					c.Meta = make(ast.Metadata)
				}
				if _, ok := c.Meta["title"]; !ok {
					if h := root.FirstOfKind(ast.KindHeading); h != nil {
						c.Meta["title"] = h.PlainText()
					}
				}
				c.Meta["word_count"] = countWords(root)
				c.Meta["generator"] = generator
				return &c, nil
			}), nil
		},
	}
}

// countWords sums words per text run so adjacent blocks do not merge their
// boundary words.
func countWords(root *ast.Node) int {
	words := 0
	ast.Walk(root, func(n *ast.Node) ast.WalkStatus {
		switch n.Kind {
		case ast.KindText, ast.KindCode:
			words += len(strings.Fields(n.Literal))
		}
		return ast.WalkContinue
	})
	return words
}
