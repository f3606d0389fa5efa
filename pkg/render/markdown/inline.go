package markdown

import (
	"html"
	"strconv"
	"strings"

	"github.com/treemark/treemark/pkg/ast"
)

func htmlEscape(s string) string { return html.EscapeString(s) }

func (r *renderer) inlines(nodes []*ast.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(r.inline(n))
	}
	return b.String()
}

func (r *renderer) inline(n *ast.Node) string {
	switch n.Kind {
	case ast.KindText:
		if r.opts.Autolink && !r.inLink {
			return autolinkText(n.Literal)
		}
		return escapeText(n.Literal)
	case ast.KindStrong:
		delim := strings.Repeat(string(r.opts.EmphasisDelimiter), 2)
		return delim + r.inlines(n.Children) + delim
	case ast.KindEmphasis:
		delim := string(r.opts.EmphasisDelimiter)
		return delim + r.inlines(n.Children) + delim
	case ast.KindCode:
		return codeSpan(n.Literal)
	case ast.KindLink:
		return r.link(n)
	case ast.KindImage:
		return r.image(n)
	case ast.KindLineBreak:
		return "  \n"
	case ast.KindFootnoteReference:
		return r.footnoteReference(n)
	case ast.KindMathInline:
		return r.mathInline(n)
	case ast.KindHTMLInline:
		return n.Literal
	case ast.KindCommentInline:
		return "<!-- " + n.Literal + " -->"
	case ast.KindStrikethrough:
		return r.styled(n, "~~", "del", r.feats.strikethrough)
	case ast.KindUnderline:
		// No Markdown syntax exists for underline; even "supported"
		// flavors get the HTML tag.
		return r.styled(n, "", "u", r.feats.underline)
	case ast.KindSuperscript:
		return r.styled(n, "^", "sup", r.feats.superscript)
	case ast.KindSubscript:
		return r.styled(n, "~", "sub", r.feats.subscript)
	default:
		return r.inlines(n.Children)
	}
}

// styled renders an extended inline construct, consulting the fallback
// mode when the active flavor cannot express it.
func (r *renderer) styled(n *ast.Node, delim, tag string, supported bool) string {
	inner := r.inlines(n.Children)
	if supported || r.opts.Fallback == FallbackForce {
		if delim == "" {
			return "<" + tag + ">" + inner + "</" + tag + ">"
		}
		return delim + inner + delim
	}
	switch r.opts.Fallback {
	case FallbackDrop:
		return ""
	case FallbackHTML:
		return "<" + tag + ">" + inner + "</" + tag + ">"
	default:
		return inner
	}
}

// linkText renders link or image children with autolinking off.
func (r *renderer) linkText(nodes []*ast.Node) string {
	saved := r.inLink
	r.inLink = true
	text := r.inlines(nodes)
	r.inLink = saved
	return text
}

func (r *renderer) link(n *ast.Node) string {
	text := r.linkText(n.Children)
	if r.opts.LinkStyle == LinkReference {
		id := r.refID(n.Destination, n.Title)
		return "[" + text + "][" + strconv.Itoa(id) + "]"
	}
	if n.Title == "" && text == n.Destination {
		return "<" + n.Destination + ">"
	}
	if n.Title != "" {
		return "[" + text + "](" + n.Destination + " \"" + n.Title + "\")"
	}
	return "[" + text + "](" + n.Destination + ")"
}

func (r *renderer) image(n *ast.Node) string {
	alt := r.linkText(n.Children)
	if r.opts.LinkStyle == LinkReference {
		id := r.refID(n.Destination, n.Title)
		return "![" + alt + "][" + strconv.Itoa(id) + "]"
	}
	if n.Title != "" {
		return "![" + alt + "](" + n.Destination + " \"" + n.Title + "\")"
	}
	return "![" + alt + "](" + n.Destination + ")"
}

func (r *renderer) footnoteReference(n *ast.Node) string {
	if r.feats.footnotes || r.opts.Fallback == FallbackForce {
		return "[^" + n.Literal + "]"
	}
	switch r.opts.Fallback {
	case FallbackDrop:
		return ""
	case FallbackHTML:
		return "<sup>" + htmlEscape(n.Literal) + "</sup>"
	default:
		return "\\[" + escapeRun(n.Literal, false) + "\\]"
	}
}

func (r *renderer) mathInline(n *ast.Node) string {
	if r.feats.math || r.opts.Fallback == FallbackForce {
		return "$" + n.Literal + "$"
	}
	switch r.opts.Fallback {
	case FallbackDrop:
		return ""
	case FallbackHTML:
		return "<span class=\"math\">" + htmlEscape(n.Literal) + "</span>"
	default:
		return escapeRun(n.Literal, false)
	}
}
