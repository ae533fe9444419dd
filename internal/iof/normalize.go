package iof

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeKey turns a display name into a natural-key component.
// Strings are NFC normalised, internal whitespace is collapsed and case is folded.
func NormalizeKey(s string) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// CleanText trims and NFC-normalises a value stored for display.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
