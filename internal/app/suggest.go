package app

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggest returns the closest candidate to name, or "" when nothing is
// near enough to be a plausible typo.
func suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > maxSuggestDistance(name) {
		return ""
	}
	return best
}

func maxSuggestDistance(name string) int {
	if n := len(name) / 3; n > 1 {
		return n
	}
	return 1
}
