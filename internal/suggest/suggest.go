// Package suggest finds "did you mean" candidates for misspelled names.
package suggest

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Closest returns the candidate closest to target, or "" when none is close.
// Candidates containing target as a subsequence are preferred; otherwise a
// candidate that is itself a subsequence of target is accepted.
func Closest(target string, candidates []string) string {
	if len(candidates) == 0 || target == "" {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	best, bestDist := "", -1
	for _, c := range candidates {
		if !fuzzy.MatchFold(c, target) {
			continue
		}
		d := fuzzy.LevenshteinDistance(c, target)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// Hint formats the closest candidate as a message suffix, or returns "".
func Hint(target string, candidates []string) string {
	if c := Closest(target, candidates); c != "" {
		return fmt.Sprintf(" (did you mean %q?)", c)
	}
	return ""
}
