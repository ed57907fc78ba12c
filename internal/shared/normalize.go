package shared

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName canonicalizes a playlist name for comparison: NFKC, then surrounding whitespace trimmed.
//
// Case is preserved; callers compare with [strings.EqualFold].
func NormalizeName(name string) string {
	return strings.TrimSpace(norm.NFKC.String(name))
}

// SameName reports whether a and b are equal after normalization, ignoring case.
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}
