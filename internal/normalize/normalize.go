// Package normalize provides utilities for normalizing and sanitizing letter text.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Text trims surrounding whitespace and drops null bytes. Other code points
// are kept as sent; Fold reconciles composed and decomposed forms when
// matching.
//
//	"  Te extraño \n" -> "Te extraño"
func Text(raw string) string {
	return strings.TrimSpace(sanitizeString(raw))
}

// Fold returns the case-folded NFC form of s, suitable for case-insensitive
// comparisons across the whole of Unicode.
//
//	"EXTRAÑO" -> "extraño"
//	"Straße"  -> "strasse"
func Fold(s string) string {
	// cases.Caser carries state and is not safe for concurrent use.
	return cases.Fold().String(norm.NFC.String(s))
}

// Tags trims every tag and drops the ones left empty. Order and duplicates
// are preserved. The result is never nil.
func Tags(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = Text(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// sanitizeString removes null bytes from strings, which can cause
// issues in databases and JSON parsing.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
