package markdown

import (
	"strings"
	"unicode/utf8"

	"github.com/treemark/treemark/pkg/ast"
)

// table renders a pipe table when the flavor supports tables, otherwise it
// degrades per the configured table fallback. The column count comes from
// the header row; without one the first data row is promoted to header.
func (r *renderer) table(n *ast.Node) string {
	header := n.Header
	rows := n.Children
	if header == nil && len(rows) > 0 {
		header = rows[0]
		rows = rows[1:]
	}
	if header == nil {
		return ""
	}

	cols := len(header.Children)
	if cols == 0 {
		return ""
	}

	if !r.feats.tables {
		switch r.opts.TableFallback {
		case TableFallbackASCII:
			return r.asciiTable(header, rows, cols)
		case TableFallbackHTML:
			return r.htmlTable(header, rows)
		default:
			return ""
		}
	}

	head := r.cells(header, cols, true)
	body := make([][]string, len(rows))
	for i, row := range rows {
		body[i] = r.cells(row, cols, true)
	}
	aligns := alignmentsFor(n.Alignments, cols)

	if !r.opts.PadTables {
		lines := make([]string, 0, len(body)+2)
		lines = append(lines, "| "+strings.Join(head, " | ")+" |")
		markers := make([]string, cols)
		for i, a := range aligns {
			markers[i] = alignMarker(a, 3)
		}
		lines = append(lines, "| "+strings.Join(markers, " | ")+" |")
		for _, row := range body {
			lines = append(lines, "| "+strings.Join(row, " | ")+" |")
		}
		return strings.Join(lines, "\n")
	}

	widths := columnWidths(head, body, cols)
	lines := make([]string, 0, len(body)+2)
	lines = append(lines, paddedRow(head, widths))
	markers := make([]string, cols)
	for i, a := range aligns {
		markers[i] = alignMarker(a, widths[i])
	}
	lines = append(lines, "| "+strings.Join(markers, " | ")+" |")
	for _, row := range body {
		lines = append(lines, paddedRow(row, widths))
	}
	return strings.Join(lines, "\n")
}

// cells renders a row's cells on single lines, padded or truncated to the
// canonical column count.
func (r *renderer) cells(row *ast.Node, cols int, escapePipes bool) []string {
	out := make([]string, cols)
	for i := 0; i < cols; i++ {
		if i >= len(row.Children) {
			out[i] = ""
			continue
		}
		text := r.inlines(row.Children[i].Children)
		text = strings.ReplaceAll(text, "\n", " ")
		if escapePipes {
			text = strings.ReplaceAll(text, "|", "\\|")
		}
		out[i] = text
	}
	return out
}

func alignmentsFor(declared []ast.Alignment, cols int) []ast.Alignment {
	out := make([]ast.Alignment, cols)
	copy(out, declared)
	return out
}

func alignMarker(a ast.Alignment, width int) string {
	if width < 3 {
		width = 3
	}
	switch a {
	case ast.AlignLeft:
		return ":" + strings.Repeat("-", width-1)
	case ast.AlignRight:
		return strings.Repeat("-", width-1) + ":"
	case ast.AlignCenter:
		return ":" + strings.Repeat("-", width-2) + ":"
	default:
		return strings.Repeat("-", width)
	}
}

func columnWidths(head []string, body [][]string, cols int) []int {
	widths := make([]int, cols)
	for i := range widths {
		widths[i] = 3
	}
	measure := func(row []string) {
		for i, cell := range row {
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(head)
	for _, row := range body {
		measure(row)
	}
	return widths
}

func paddedRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = pad(cell, widths[i])
	}
	return "| " + strings.Join(padded, " | ") + " |"
}

func pad(s string, width int) string {
	if gap := width - utf8.RuneCountInString(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// asciiTable draws a boxed grid using only plus and dash characters, with
// the same cell contents a pipe table would carry.
func (r *renderer) asciiTable(header *ast.Node, rows []*ast.Node, cols int) string {
	head := r.cells(header, cols, false)
	body := make([][]string, len(rows))
	for i, row := range rows {
		body[i] = r.cells(row, cols, false)
	}
	widths := columnWidths(head, body, cols)

	var rule strings.Builder
	rule.WriteString("+")
	for _, w := range widths {
		rule.WriteString(strings.Repeat("-", w+2))
		rule.WriteString("+")
	}

	line := func(cells []string) string {
		var b strings.Builder
		b.WriteString("+")
		for i, cell := range cells {
			b.WriteString(" ")
			b.WriteString(pad(cell, widths[i]))
			b.WriteString(" +")
		}
		return b.String()
	}

	lines := []string{rule.String(), line(head), rule.String()}
	for _, row := range body {
		lines = append(lines, line(row))
	}
	lines = append(lines, rule.String())
	return strings.Join(lines, "\n")
}

func (r *renderer) htmlTable(header *ast.Node, rows []*ast.Node) string {
	var b strings.Builder
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, cell := range header.Children {
		b.WriteString("<th>" + htmlEscape(cell.PlainText()) + "</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row.Children {
			b.WriteString("<td>" + htmlEscape(cell.PlainText()) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}
