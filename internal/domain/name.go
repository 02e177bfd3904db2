package domain

import (
	"regexp"
	"strings"
	"unicode"
)

// suffixAnnotation is a trailing parenthetical mentioning a division or a rating.
var suffixAnnotation = regexp.MustCompile(`\s*\([^()]*\b(div|rated)\b[^()]*\)\s*$`)

// Normalize lowercases a contest name, removes periods and collapses
// whitespace outside parentheses.
func Normalize(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, ".", ""))

	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	pendingSpace := false
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		}

		if depth == 0 && unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// BaseName is Normalize with a trailing division or rating annotation removed.
// Example: BaseName("Codeforces Round 950 (Div. 3)") -> "codeforces round 950"
func BaseName(s string) string {
	return strings.TrimSpace(suffixAnnotation.ReplaceAllString(Normalize(s), ""))
}
