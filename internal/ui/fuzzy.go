package ui

import (
	"sort"
	"strings"
)

type scoredIdx struct {
	idx   int
	score int
}

// fuzzyMatchScore reports whether needle is a case-insensitive subsequence of
// haystack. Lower scores mean the match starts earlier and is tighter.
func fuzzyMatchScore(needle, haystack string) (int, bool) {
	n := []rune(strings.ToLower(needle))
	h := []rune(strings.ToLower(haystack))
	if len(n) == 0 {
		return 0, true
	}

	score := 0
	j := 0
	for i := 0; i < len(h) && j < len(n); i++ {
		if h[i] == n[j] {
			score += i
			j++
		}
	}
	if j != len(n) {
		return 0, false
	}
	return score, true
}

// rankOptions returns the indexes of options matching needle, best first.
// Ties keep the original order.
func rankOptions(needle string, options []string) []int {
	needle = strings.TrimSpace(needle)
	out := make([]int, 0, len(options))
	if needle == "" {
		for i := range options {
			out = append(out, i)
		}
		return out
	}

	var scored []scoredIdx
	for i, opt := range options {
		if s, ok := fuzzyMatchScore(needle, opt); ok {
			scored = append(scored, scoredIdx{idx: i, score: s})
		}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score == scored[j].score {
			return scored[i].idx < scored[j].idx
		}
		return scored[i].score < scored[j].score
	})
	for _, s := range scored {
		out = append(out, s.idx)
	}
	return out
}
