package core

import (
	"strings"
	"unicode"
)

// NormalizeSlug lowercases s, replaces every run of whitespace with a single
// hyphen and strips leading and trailing hyphens. All other runes are kept.
func NormalizeSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte('-')
			inSpace = false
		}
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "-")
}
