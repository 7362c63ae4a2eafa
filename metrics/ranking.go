package metrics

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// NDCG returns the normalized discounted cumulative gain of ordering items
// by descending scores, with graded relevance and gain 2^rel - 1. k < 0
// evaluates the full list. Items with equal scores keep their input order.
func NDCG(relevance, scores []float64, k int) (float64, error) {
	if err := checkPair("NDCG", relevance, scores); err != nil {
		return 0, err
	}
	if k == 0 {
		return 0, errors.NewConfigurationError("k", "must be positive or negative for the full list", k)
	}
	for _, r := range relevance {
		if r < 0 {
			return 0, errors.NewValidationError("relevance", "NDCG requires non-negative relevance", r)
		}
	}
	if k < 0 || k > len(relevance) {
		k = len(relevance)
	}

	ideal := dcg(relevance, relevance, k)
	if ideal == 0 {
		return 0, nil
	}
	return dcg(relevance, scores, k) / ideal, nil
}

// dcg is the discounted gain of the first k items ordered by order.
func dcg(relevance, order []float64, k int) float64 {
	idx := make([]int, len(order))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return order[idx[a]] > order[idx[b]] })

	var sum float64
	for pos, i := range idx[:k] {
		sum += (math.Pow(2, relevance[i]) - 1) / math.Log2(float64(pos)+2)
	}
	return sum
}
