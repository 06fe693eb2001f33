package textlayout

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii unchanged", "Members: 12", "Members: 12"},
		{"empty", "", ""},
		{"whitespace only", " \t\n\r ", ""},
		{"collapses runs", "a   b\t\tc\n\nd", "a b c d"},
		{"trims ends", "  padded  ", "padded"},
		{"folds accents", "Café Résumé", "Cafe Resume"},
		{"drops unfoldable runes", "price: 10€ ok", "price: 10 ok"},
		{"drops emoji between words", "hi 👋 there", "hi there"},
		{"drops control bytes", "a\x00b\x07c", "abc"},
		{"nbsp is a space", "a\u00a0b", "a b"},
		{"keeps delimiters for later escaping", `(x) \ y`, `(x) \ y`},
		{"tilde kept", "~/path", "~/path"},
		{"del dropped", "a\x7fb", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_OnlyPrintableASCII(t *testing.T) {
	inputs := []string{
		"Ωmega ∑ sum",
		"line1\r\nline2",
		"日本語 text",
		"tab\tseparated\tvalues",
		string([]byte{0xff, 0xfe, 'o', 'k'}),
	}
	for _, in := range inputs {
		out := Sanitize(in)
		for i := 0; i < len(out); i++ {
			if out[i] < 0x20 || out[i] > 0x7e {
				t.Errorf("Sanitize(%q) produced byte 0x%02x at %d", in, out[i], i)
			}
		}
		if strings.Contains(out, "  ") {
			t.Errorf("Sanitize(%q) = %q contains a double space", in, out)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  []string
	}{
		{
			name:  "empty input yields one empty line",
			input: "",
			width: 10,
			want:  []string{""},
		},
		{
			name:  "fits on one line",
			input: "short text",
			width: 20,
			want:  []string{"short text"},
		},
		{
			name:  "exact width",
			input: "abcde fghij",
			width: 11,
			want:  []string{"abcde fghij"},
		},
		{
			name:  "greedy break",
			input: "the quick brown fox jumps",
			width: 10,
			want:  []string{"the quick", "brown fox", "jumps"},
		},
		{
			name:  "long word hard split with hyphen",
			input: "abcdefghijklm",
			width: 5,
			want:  []string{"abcd-", "efgh-", "ijklm"},
		},
		{
			name:  "long word after short word",
			input: "hi abcdefghij",
			width: 6,
			want:  []string{"hi", "abcde-", "fghij"},
		},
		{
			name:  "word exactly width is not split",
			input: "abcdef",
			width: 6,
			want:  []string{"abcdef"},
		},
		{
			name:  "width clamped to minimum",
			input: "abc",
			width: 0,
			want:  []string{"a-", "bc"},
		},
		{
			name:  "extra spaces collapse",
			input: "a    b",
			width: 10,
			want:  []string{"a b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.input, tt.width)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Wrap(%q, %d) mismatch (-want +got):\n%s", tt.input, tt.width, diff)
			}
		})
	}
}

func TestWrap_LinesWithinWidth(t *testing.T) {
	text := "Projects: 3 (2 active) supercalifragilisticexpialidocious and a few more words to wrap around"
	for width := MinWidth; width <= 40; width++ {
		for _, line := range Wrap(text, width) {
			if n := utf8.RuneCountInString(line); n > width {
				t.Errorf("width %d: line %q has %d characters", width, line, n)
			}
		}
	}
}

func TestWrap_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Members: 12",
		"a reasonably long sentence that needs wrapping at small widths",
		"Ünïcödé téxt with áccents and averyveryverylongwordthatmustbesplit",
		"tabs\tand\nnewlines\r\neverywhere",
	}
	for _, in := range inputs {
		for _, width := range []int{2, 5, 8, 13, 30, 80} {
			once := Wrap(Sanitize(in), width)

			var twice []string
			for _, line := range once {
				twice = append(twice, Wrap(Sanitize(line), width)...)
			}

			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("Wrap not idempotent for %q at width %d (-once +twice):\n%s", in, width, diff)
			}
		}
	}
}

func TestLayoutAll(t *testing.T) {
	got := LayoutAll([]string{"Members: 12", "", "Projects: 3 (2 active)"}, 12)
	want := []string{"Members: 12", "", "Projects: 3", "(2 active)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LayoutAll mismatch (-want +got):\n%s", diff)
	}
}
