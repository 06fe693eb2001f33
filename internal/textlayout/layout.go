// Package textlayout turns arbitrary text into lines that are safe to place in
// a PDF content stream.
//
// Two guarantees are made about every line produced by [Layout]:
//
//   - it contains only printable ASCII (0x20-0x7E)
//   - it is no longer than the requested width
//
// Escaping of PDF string delimiters is not done here; that is the job of the
// document assembler, which runs after layout.
package textlayout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinWidth is the smallest usable wrap width. A hard-split chunk needs at
// least one character plus the hyphen.
const MinWidth = 2

// newFolder returns a transformer that decomposes runes and drops combining
// marks, so "é" becomes "e" instead of disappearing entirely.
// transform.Chain keeps internal buffers, so a fresh one is built per call.
func newFolder() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
}

// FoldAccents maps accented Latin letters to their base letters.
// Runes without a decomposition are returned unchanged.
func FoldAccents(s string) string {
	folded, _, err := transform.String(newFolder(), s)
	if err != nil {
		return s
	}
	return folded
}

// Sanitize reduces s to printable ASCII.
//
// Accents are folded first, any remaining rune outside 0x21-0x7E is dropped,
// and every run of whitespace (tabs and newlines included) becomes a single
// space. Leading and trailing whitespace is removed.
func Sanitize(s string) string {
	folded := FoldAccents(s)

	var b strings.Builder
	b.Grow(len(folded))

	pendingSpace := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case r > 0x20 && r <= 0x7E:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Wrap greedily packs the words of s into lines of at most width characters.
//
// Words are separated by single spaces. A word longer than width is split
// into chunks of width-1 characters followed by "-" until the remainder
// fits. Empty input yields one empty line, never zero lines.
func Wrap(s string, width int) []string {
	if width < MinWidth {
		width = MinWidth
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)

		if wordLen > width {
			flush()
			rs := []rune(word)
			for len(rs) > width {
				lines = append(lines, string(rs[:width-1])+"-")
				rs = rs[width-1:]
			}
			word = string(rs)
			wordLen = len(rs)
		}

		switch {
		case curLen == 0:
			cur.WriteString(word)
			curLen = wordLen
		case curLen+1+wordLen <= width:
			cur.WriteByte(' ')
			cur.WriteString(word)
			curLen += 1 + wordLen
		default:
			flush()
			cur.WriteString(word)
			curLen = wordLen
		}
	}
	flush()

	return lines
}

// Layout sanitizes s and wraps it to width.
func Layout(s string, width int) []string {
	return Wrap(Sanitize(s), width)
}

// LayoutAll lays out each paragraph in order and concatenates the results.
// An empty paragraph contributes one blank line, which keeps intentional
// spacing between sections of a report.
func LayoutAll(paragraphs []string, width int) []string {
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		lines = append(lines, Layout(p, width)...)
	}
	return lines
}
