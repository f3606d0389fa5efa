package markdown

import (
	"regexp"
	"strings"
	"unicode"
)

var urlPattern = regexp.MustCompile(`(?:https?|ftp)://[^\s<>` + "`" + `]+`)

// escapeText escapes Markdown syntax characters in a literal text run.
// Backslash, backtick, asterisk and brackets are always escaped. A hash is
// escaped only at the very start of the run, since a mid-run hash cannot
// open a heading. Underscores are escaped only when not flanked on both
// sides by alphanumerics, so identifiers like snake_case pass through
// while emphasis-triggering underscores at word boundaries do not.
func escapeText(s string) string {
	return escapeRun(s, true)
}

func escapeRun(s string, atStart bool) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	runes := []rune(s)
	for i, c := range runes {
		switch c {
		case '\\', '`', '*', '[', ']':
			b.WriteByte('\\')
		case '#':
			if i == 0 && atStart {
				b.WriteByte('\\')
			}
		case '_':
			flanked := i > 0 && isAlnum(runes[i-1]) &&
				i+1 < len(runes) && isAlnum(runes[i+1])
			if !flanked {
				b.WriteByte('\\')
			}
		}
		b.WriteRune(c)
	}
	return b.String()
}

func isAlnum(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c)
}

// splitURL trims sentence punctuation from the end of a greedy URL match
// and strips unbalanced trailing close-parens, so URLs containing balanced
// parens survive while trailing punctuation is not swallowed into the
// link. Returns the URL and whatever was trimmed off.
func splitURL(candidate string) (url, tail string) {
	url = candidate
	for len(url) > 0 {
		last := url[len(url)-1]
		if strings.IndexByte(".,;:!?'\"", last) >= 0 {
			url = url[:len(url)-1]
			continue
		}
		if last == ')' && strings.Count(url, ")") > strings.Count(url, "(") {
			url = url[:len(url)-1]
			continue
		}
		break
	}
	return url, candidate[len(url):]
}

// autolinkText escapes a text run while wrapping bare URLs in angle
// brackets, keeping the URLs themselves free of escaping.
func autolinkText(s string) string {
	matches := urlPattern.FindAllStringIndex(s, -1)
	if len(matches) == 0 {
		return escapeText(s)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		url, tail := splitURL(s[m[0]:m[1]])
		b.WriteString(escapeRun(s[last:m[0]], last == 0))
		b.WriteString("<")
		b.WriteString(url)
		b.WriteString(">")
		b.WriteString(escapeRun(tail, false))
		last = m[1]
	}
	b.WriteString(escapeRun(s[last:], false))
	return b.String()
}

// codeSpan wraps a literal in a backtick fence one longer than the longest
// backtick run inside it, padding with spaces when the content touches the
// fence.
func codeSpan(s string) string {
	fence := strings.Repeat("`", longestBacktickRun(s)+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

func longestBacktickRun(s string) int {
	longest, run := 0, 0
	for _, c := range s {
		if c == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}
