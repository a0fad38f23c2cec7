package similarity

// Blend weights for the three score terms. Alignment dominates; the exact
// split matches the tuning the category keyword sets were calibrated
// against, so changing one means re-validating the other.
const (
	alignmentWeight = 0.60
	overlapWeight   = 0.25
	lengthWeight    = 0.15
)

// Score computes a combined similarity between a and b in [0, 1].
// Equal non-empty strings score exactly 1; an empty operand scores 0.
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra := []rune(a)
	rb := []rune(b)

	combined := alignmentWeight*alignmentRatio(ra, rb) +
		overlapWeight*charOverlap(ra, rb) +
		lengthWeight*lengthSimilarity(len(ra), len(rb))

	if combined < 0 {
		return 0
	}
	if combined > 1 {
		return 1
	}
	return combined
}

// PrefixScore returns the similarity of the two strings' aligned prefixes
// alongside the overall score. The prefix length is the shorter string's
// length; filenames put the identifying tokens early, so fuzzy matching
// weights this term up.
func PrefixScore(a, b string) (prefix, overall float64) {
	if a == "" || b == "" {
		return 0, 0
	}
	overall = Score(a, b)

	ra := []rune(a)
	rb := []rune(b)
	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	prefix = Score(string(ra[:n]), string(rb[:n]))
	return prefix, overall
}

// alignmentRatio is the classic longest-matching-block ratio: twice the
// total length of the matching blocks divided by the combined length.
func alignmentRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	matched := matchedRunes(a, b, 0, len(a), 0, len(b))
	return 2 * float64(matched) / float64(total)
}

// matchedRunes sums the sizes of the matching blocks found by recursively
// splitting around the longest common block, mirroring sequence-matcher
// alignment.
func matchedRunes(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchedRunes(a, b, alo, i, blo, j)
	matched += matchedRunes(a, b, i+size, ahi, j+size, bhi)
	return matched
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size] within
// the given windows. Ties prefer the earliest block in a, then in b, which
// keeps the ratio deterministic.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	b2j := make(map[rune][]int, bhi-blo)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj = alo, blo
	// j2len[j] is the length of the longest match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}

// charOverlap is the Jaccard index of the two strings' rune sets.
func charOverlap(a, b []rune) float64 {
	setA := make(map[rune]struct{}, len(a))
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{}, len(b))
	for _, r := range b {
		setB[r] = struct{}{}
	}

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// lengthSimilarity shrinks as the length difference grows relative to the
// longer string.
func lengthSimilarity(la, lb int) float64 {
	if la == 0 && lb == 0 {
		return 1
	}
	if la == 0 || lb == 0 {
		return 0
	}
	max := la
	if lb > max {
		max = lb
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/float64(max)
}
