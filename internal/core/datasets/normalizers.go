package datasets

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/memberdesk/internal/core"
)

var titleCaser = cases.Title(language.English)

// NormalizeLower trims and lowercases enum-like values ("Active" -> "active").
func NormalizeLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail lowercases an address so it can serve as an identity.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePlace title-cases a place name and collapses inner whitespace
// ("  nairobi   city " -> "Nairobi City").
func NormalizePlace(s string) string {
	return titleCaser.String(strings.Join(strings.Fields(s), " "))
}

// NormalizePhone collapses formatting characters so the same number written
// two ways stores identically. "+254 (712) 345-678" -> "+254712345678".
// Values with characters other than digits and formatting are left alone
// for the validator to reject.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return s
		}
	}
	return b.String()
}

// NormalizeDate rewrites any accepted date spelling as YYYY-MM-DD.
// Unparseable values are returned unchanged.
func NormalizeDate(s string) string {
	t, ok := core.ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(core.DateLayout)
}

// NormalizeGender maps common abbreviations onto the enum values.
func NormalizeGender(s string) string {
	switch v := NormalizeLower(s); v {
	case "m":
		return "male"
	case "f":
		return "female"
	default:
		return v
	}
}
