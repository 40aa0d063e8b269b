package textutil

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// ClosestMatch returns the candidate nearest to input by edit distance when
// the distance is small enough to be a plausible typo. Case-insensitive
// exact matches win outright.
func ClosestMatch(input string, candidates []string) (string, bool) {
	lower := strings.ToLower(input)
	for _, c := range candidates {
		if strings.ToLower(c) == lower {
			return c, true
		}
	}
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c))
		if bestDist == -1 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist >= 0 && bestDist <= 3 && bestDist < len(input) {
		return best, true
	}
	return "", false
}

// ContainsMatch returns the candidate that input is a substring of, or that
// is a substring of input, when no closer match exists.
func ContainsMatch(input string, candidates []string) (string, bool) {
	lower := strings.ToLower(input)
	for _, c := range candidates {
		cl := strings.ToLower(c)
		if strings.Contains(cl, lower) || strings.Contains(lower, cl) {
			return c, true
		}
	}
	return "", false
}

// JaccardWords computes the Jaccard similarity of the word sets of two
// texts, counting only words longer than three characters.
func JaccardWords(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	inter := 0
	for w := range setA {
		if setB[w] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(w) > 3 {
			set[w] = true
		}
	}
	return set
}

// EstimateTokens approximates the token count of text as len/4, the rough
// byte-per-token ratio for English prose.
func EstimateTokens(s string) int {
	return len(s) / 4
}
