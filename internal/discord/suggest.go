package discord

// closestMatch returns the candidate with the smallest edit distance to name,
// or "" when nothing is close enough to be a plausible typo.
func closestMatch(name string, candidates []string) string {
	best := ""
	bestDist := maxSuggestDistance(name) + 1
	for _, c := range candidates {
		if d := editDistance(name, c); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// maxSuggestDistance scales the suggestion threshold with the input length so
// short commands do not match arbitrary typos.
func maxSuggestDistance(name string) int {
	d := len(name) / 2
	if d > 3 {
		d = 3
	}
	return d
}

// editDistance computes the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	if a == b {
		return 0
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
