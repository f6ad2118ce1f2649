// Package similarity scores how alike two team names are.
package similarity

import "strings"

// Similarity returns the normalized Levenshtein similarity of a and b in [0,1],
// ignoring case. Either input empty yields 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}

	return 1 - float64(Distance(ra, rb))/float64(maxLen)
}

// Distance is the unit-cost edit distance between two rune slices.
func Distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
