// Package concentration computes decentralization metrics over weight
// distributions: the Gini coefficient and the Nakamoto coefficient.
package concentration

import (
	"math"
	"sort"
)

// giniEpsilon absorbs float rounding so equal weights report exactly zero
const giniEpsilon = 1e-12

// Gini returns the Gini coefficient of the strictly positive, finite weights.
// Fewer than two such weights, or a zero total, yields 0.
// The result is always in [0, 1).
func Gini(weights []float64) float64 {
	positive := make([]float64, 0, len(weights))
	total := 0.0
	for _, w := range weights {
		if w > 0 && !math.IsInf(w, 0) {
			positive = append(positive, w)
			total += w
		}
	}
	n := len(positive)
	if n < 2 || total <= 0 || math.IsInf(total, 0) {
		return 0
	}

	sort.Float64s(positive)

	ranked := 0.0
	for i, w := range positive {
		ranked += float64(i+1) * w
	}
	nf := float64(n)
	g := (2*ranked)/(nf*total) - (nf+1)/nf

	switch {
	case g < giniEpsilon:
		return 0
	case g >= 1:
		return math.Nextafter(1, 0)
	default:
		return g
	}
}
