// Package identity canonicalizes person labels so the same individual compares
// equal across sources (face recognizer sub_labels vs the seating chart).
// Recognizers and chart authors disagree on width, case and stray whitespace
package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var folder = cases.Fold()

// Canonical returns the comparison form of a person label:
// NFKC-normalized, width-folded, case-folded, inner whitespace collapsed
func Canonical(s string) string {
	s = norm.NFKC.String(s)
	s = width.Fold.String(s)
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Equal reports whether two labels denote the same identity
func Equal(a, b string) bool {
	return a == b || Canonical(a) == Canonical(b)
}

// Display returns a presentable form of a label: trimmed, inner whitespace
// collapsed, title-cased per-word with Unicode rules. Used only when a raw
// recognizer label must be surfaced and no chart spelling exists for it
func Display(s string) string {
	s = strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
	return cases.Title(language.English, cases.NoLower).String(s)
}
