package extract

import (
	"sort"
	"strings"
)

// cityRescueDepth is how many of the highest name-scored candidates are
// scanned for a city-confirmed address when the top match's address does
// not mention the target city.
const cityRescueDepth = 5

// NameScore is a normalized similarity ratio between two display names:
// case-insensitive, punctuation collapsed, 0 for no resemblance and 1 for
// an exact normalized match.
func NameScore(a, b string) float64 {
	na, nb := NormText(a), NormText(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	dist := editDistance(na, nb)
	longest := len(na)
	if len(nb) > longest {
		longest = len(nb)
	}
	return 1 - float64(dist)/float64(longest)
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// displayName is the first non-empty of the name then title fields.
func displayName(rec Record) string {
	return rec.FirstStr("name", "title")
}

// candidateAddress is the first non-empty address-like field.
func candidateAddress(rec Record) string {
	return rec.FirstStr("formatted_address", "address")
}

func addressMentionsCity(addr, city string) bool {
	return strings.Contains(strings.ToLower(addr), strings.ToLower(city))
}

// BestMatch picks the candidate that best matches the target hotel identity.
// The highest fuzzy name score wins (ties keep the first encountered), but a
// name match whose address does not mention the target city is not accepted
// outright: the top cityRescueDepth candidates by name score are scanned for
// one whose address does, and if none qualifies the match is rejected.
// Candidates with no address field at all skip the city check, since some
// ad entries omit it.
func BestMatch(candidates []Record, targetName, targetCity string) Record {
	var best Record
	bestScore := 0.0
	scores := make([]float64, len(candidates))

	for i, cand := range candidates {
		score := NameScore(displayName(cand), targetName)
		scores[i] = score
		if score > bestScore {
			best = cand
			bestScore = score
		}
	}

	if best == nil || bestScore == 0 {
		return nil
	}

	addr := candidateAddress(best)
	if addr == "" {
		return best
	}
	if addressMentionsCity(addr, targetCity) {
		return best
	}

	// Name matched but the city did not. Re-rank by name score and look for
	// a city-confirmed candidate near the top; precision over recall.
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	depth := cityRescueDepth
	if depth > len(order) {
		depth = len(order)
	}
	for _, idx := range order[:depth] {
		cand := candidates[idx]
		if addressMentionsCity(candidateAddress(cand), targetCity) {
			return cand
		}
	}

	return nil
}
