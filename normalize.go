package quizbank

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText converts paragraph text to NFC, drops zero-width characters,
// collapses runs of Unicode whitespace (non-breaking spaces included) and trims.
// Word frequently stores Vietnamese text decomposed, so markers such as
// "phụ lục" only compare equal after composition.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		if r == '\u200b' || r == '\ufeff' {
			continue
		}
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// foldCase returns the case-folded form used for all case-insensitive matching
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// foldAll normalizes and folds every entry, dropping blanks
func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if f := foldCase(NormalizeText(v)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
