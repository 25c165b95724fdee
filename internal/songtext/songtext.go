// Package songtext canonicalizes Korean/English song text and computes
// edit-distance similarity. Pure functions, no I/O.
package songtext

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a string for matching: Unicode NFKC, case folding,
// and removal of all whitespace. "Holy Forever" and "holy forever" normalize
// to the same value.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Clean canonicalizes a string for display and tokenization: Unicode NFKC,
// collapsed internal whitespace, trimmed ends.
func Clean(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Similarity returns a symmetric similarity in [0,1] between two strings
// after normalization: 1.0 for identical strings, 0.9 for pure substring
// containment in either direction, otherwise a Levenshtein-derived ratio.
// Strings with no character overlap score 0.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}

	la, lb := len([]rune(na)), len([]rune(nb))
	longest := la
	if lb > longest {
		longest = lb
	}
	d := levenshtein(na, nb)
	ratio := 1.0 - float64(d)/float64(longest)
	if ratio < 0 {
		return 0
	}
	return ratio
}

// levenshtein calculates the minimum number of single-character edits to turn
// a into b. Rune-based for correct Unicode handling; two rows only.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}
