// Package match scores free-text questions against answer bank
// entries. The engine is a pure function of (query, snapshot, top_n):
// no persistence, no network, identical inputs produce identical
// ranked output.
package match

import (
	"sort"
	"strings"
	"unicode"
)

// Normalize lower-cases text, strips punctuation and collapses
// whitespace. The query and every entry pass through the same
// normalization before comparison.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the sorted, deduplicated token set of the normalized
// text. Sorting keeps every downstream comparison and explanation
// deterministic.
func Tokens(text string) []string {
	fields := strings.Fields(Normalize(text))
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// intersect returns the tokens present in both sorted sets, in order.
func intersect(a, b []string) []string {
	var out []string
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}
