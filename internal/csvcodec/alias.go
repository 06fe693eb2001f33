package csvcodec

import (
	"strings"

	"github.com/JonMunkholm/memberdesk/internal/textlayout"
)

// FieldAliases lists the accepted spellings of one canonical field.
// The canonical name always counts as one of its own aliases.
type FieldAliases struct {
	Canonical string
	Aliases   []string
}

// Resolver maps header cells to canonical field names.
// It is built once and only read afterwards, so it is safe for concurrent use.
type Resolver struct {
	canonical []string
	lookup    map[string]string
}

// NewResolver builds a Resolver from table. Aliases are normalized with
// NormalizeHeader. When two fields claim the same spelling, the field
// declared first keeps it.
func NewResolver(table []FieldAliases) *Resolver {
	r := &Resolver{
		canonical: make([]string, 0, len(table)),
		lookup:    make(map[string]string),
	}
	for _, fa := range table {
		canon := NormalizeHeader(fa.Canonical)
		if canon == "" {
			continue
		}
		r.canonical = append(r.canonical, canon)
		r.claim(canon, canon)
		for _, alias := range fa.Aliases {
			r.claim(NormalizeHeader(alias), canon)
		}
	}
	return r
}

func (r *Resolver) claim(key, canon string) {
	if key == "" {
		return
	}
	if _, taken := r.lookup[key]; !taken {
		r.lookup[key] = canon
	}
}

// Resolve normalizes cell and returns the canonical name that claims it,
// or the normalized cell when no field does. A nil Resolver only normalizes.
func (r *Resolver) Resolve(cell string) string {
	key := NormalizeHeader(cell)
	if r == nil {
		return key
	}
	if canon, ok := r.lookup[key]; ok {
		return canon
	}
	return key
}

// Canonical returns the canonical names in declared order.
func (r *Resolver) Canonical() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.canonical))
	copy(out, r.canonical)
	return out
}

// IsCanonical reports whether name is one of the resolver's canonical names.
func (r *Resolver) IsCanonical(name string) bool {
	if r == nil {
		return false
	}
	canon, ok := r.lookup[name]
	return ok && canon == name
}

// NormalizeHeader reduces a header cell to its lookup form: accents folded,
// lower case, every run of characters other than a-z and 0-9 replaced by a
// single underscore, and leading or trailing underscores removed.
//
// Letters outside the Latin alphabet count as separators, so a header
// written entirely in another script normalizes to "".
func NormalizeHeader(cell string) string {
	folded := strings.ToLower(textlayout.FoldAccents(strings.TrimSpace(cell)))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
