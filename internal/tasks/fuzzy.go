package tasks

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Score rates the similarity of two names from 0 to 100.
//
// Both inputs are lowercased, punctuation becomes whitespace, and runs of whitespace collapse.
// The result is the better of a plain edit-distance ratio and the ratio of the word-sorted forms,
// so reordered words still score high. Empty input scores 0.
func Score(a, b string) int {
	pa, pb := processName(a), processName(b)
	if pa == "" || pb == "" {
		return 0
	}
	return max(ratio(pa, pb), ratio(sortWords(pa), sortWords(pb)))
}

func processName(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func sortWords(s string) string {
	words := strings.Fields(s)
	slices.Sort(words)
	return strings.Join(words, " ")
}

// ratio is 100 * (1 - distance / longest length), rounded.
func ratio(a, b string) int {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}
	distance := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(distance)/float64(longest))))
}
