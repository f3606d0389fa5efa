package builtin

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/treemark/treemark/pkg/ast"
	"github.com/treemark/treemark/pkg/transform"
)

// AnchorMetaKey is the metadata key carrying a heading's anchor id.
const AnchorMetaKey = "anchor"

func anchorIDsMeta() transform.Meta {
	return transform.Meta{
		Name:        "anchor-ids",
		Description: "Assign slugified anchor ids to headings, with random ids for empty or duplicate slugs.",
		Tags:        []string{"headings", "links"},
		Factory: func(transform.Params) (transform.Transform, error) {
			return anchorIDs{}, nil
		},
	}
}

type anchorIDs struct{}

// Apply runs one full pass per document so slug deduplication never leaks
// across conversions.
func (anchorIDs) Apply(root *ast.Node) (*ast.Node, error) {
	seen := make(map[string]bool)
	var t transform.Func
	t = func(n *ast.Node) (*ast.Node, error) {
		if n.Kind != ast.KindHeading {
			return transform.Children(t, n)
		}
		slug := slugify(n.PlainText())
		if slug == "" || seen[slug] {
			slug = uuid.NewString()
		}
		seen[slug] = true
		c := *n
		c.Meta = n.Meta.Clone()
		c.SetMeta(AnchorMetaKey, slug)
		return &c, nil
	}
	return t(root)
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, c := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(c) || unicode.IsDigit(c):
			b.WriteRune(c)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func tocMeta() transform.Meta {
	return transform.Meta{
		Name:        "toc",
		Description: "Insert a table of contents after the document's first heading.",
		Requires:    []string{"anchor-ids"},
		Tags:        []string{"headings", "structure"},
		Params: map[string]transform.ParamSpec{
			"max_depth": {
				Type:        transform.TypeInt,
				Description: "deepest heading level included",
				Default:     3,
			},
		},
		Factory: func(p transform.Params) (transform.Transform, error) {
			maxDepth := p.Int("max_depth")
			return transform.Func(func(root *ast.Node) (*ast.Node, error) {
				return insertTOC(root, maxDepth), nil
			}), nil
		},
	}
}

type tocEntry struct {
	level  int
	title  string
	anchor string
}

func insertTOC(root *ast.Node, maxDepth int) *ast.Node {
	var entries []tocEntry
	ast.Walk(root, func(n *ast.Node) ast.WalkStatus {
		if n.Kind == ast.KindHeading && n.Level <= maxDepth {
			if anchor := n.MetaString(AnchorMetaKey); anchor != "" {
				entries = append(entries, tocEntry{
					level:  n.Level,
					title:  n.PlainText(),
					anchor: anchor,
				})
			}
		}
		return ast.WalkContinue
	})
	if len(entries) == 0 {
		return root
	}

	list, _ := tocList(entries, 0, entries[0].level)

	at := 0
	for i, child := range root.Children {
		if child.Kind == ast.KindHeading {
			at = i + 1
			break
		}
	}
	children := make([]*ast.Node, 0, len(root.Children)+1)
	children = append(children, root.Children[:at]...)
	children = append(children, list)
	children = append(children, root.Children[at:]...)
	return root.WithChildren(children)
}

// tocList builds nested tight lists from the flat entry sequence, nesting
// one list per heading level.
func tocList(entries []tocEntry, i, level int) (*ast.Node, int) {
	list := ast.NewList(false, 0)
	list.Tight = true
	for i < len(entries) {
		e := entries[i]
		if e.level < level {
			break
		}
		if e.level > level {
			sub, next := tocList(entries, i, e.level)
			if len(list.Children) == 0 {
				list.Children = append(list.Children, ast.NewListItem(sub))
			} else {
				last := list.Children[len(list.Children)-1]
				last.Children = append(last.Children, sub)
			}
			i = next
			continue
		}
		item := ast.NewListItem(ast.NewParagraph(
			ast.NewLink("#"+e.anchor, "", ast.NewText(e.title)),
		))
		list.Children = append(list.Children, item)
		i++
	}
	return list, i
}
