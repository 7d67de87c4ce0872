package concentration

import (
	"math"
	"sort"
)

// MajorityShare is the fraction of total weight a coalition must strictly exceed
const MajorityShare = 0.5

// Group is one owner and its accumulated weight
type Group struct {
	Owner  string
	Weight float64
}

// rankGroups returns the positive groups ordered by weight descending,
// ties broken by owner name so results are stable across map iteration
func rankGroups(grouped map[string]float64) ([]Group, float64) {
	groups := make([]Group, 0, len(grouped))
	total := 0.0
	for owner, w := range grouped {
		if w > 0 && !math.IsInf(w, 0) {
			groups = append(groups, Group{Owner: owner, Weight: w})
			total += w
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Weight != groups[j].Weight {
			return groups[i].Weight > groups[j].Weight
		}
		return groups[i].Owner < groups[j].Owner
	})
	return groups, total
}

// MajoritySet returns the smallest prefix of largest owners whose combined
// weight strictly exceeds half of the total. Empty input yields nil.
func MajoritySet(grouped map[string]float64) []string {
	groups, total := rankGroups(grouped)
	if total <= 0 || math.IsInf(total, 0) {
		return nil
	}

	threshold := total * MajorityShare
	cumulative := 0.0
	owners := make([]string, 0, len(groups))
	for _, g := range groups {
		cumulative += g.Weight
		owners = append(owners, g.Owner)
		if cumulative > threshold {
			break
		}
	}
	return owners
}

// Nakamoto returns the minimum number of owners that together control more
// than half of the total weight. Empty or zero-weight input yields 0.
func Nakamoto(grouped map[string]float64) int {
	return len(MajoritySet(grouped))
}
