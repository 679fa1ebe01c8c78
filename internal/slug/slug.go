// Package slug derives URL-safe identifiers from publication titles.
package slug

import (
	"strings"
	"unicode"
)

// Generate lowercases s, keeps ASCII letters and digits, and joins word
// runs with single hyphens: "Hello, World! 2026" becomes "hello-world-2026".
func Generate(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	sep := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			sep = true
		}
	}
	return b.String()
}
