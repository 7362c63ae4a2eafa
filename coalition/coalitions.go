package coalition

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

const (
	// maxExact is the largest coalition count indexed exactly through combin.
	maxExact = 1 << 52
	// exactCandidates bounds m for integer binomials without overflow.
	exactCandidates = 50
)

// Candidates returns the features a coalition may be drawn from for target:
// every index in 0..d-1 except target and the held-fixed indices.
func Candidates(d, target int, heldFixed []int) ([]int, error) {
	if target < 0 || target >= d {
		return nil, errors.NewConfigurationError("feature", "feature index out of range", target)
	}
	skip := make(map[int]struct{}, len(heldFixed)+1)
	skip[target] = struct{}{}
	for _, j := range heldFixed {
		if j < 0 || j >= d {
			return nil, errors.NewConfigurationError("held_fixed", "feature index out of range", j)
		}
		if j == target {
			return nil, errors.NewConfigurationError("held_fixed", "cannot contain the target feature", j)
		}
		skip[j] = struct{}{}
	}
	out := make([]int, 0, d-len(skip))
	for j := 0; j < d; j++ {
		if _, ok := skip[j]; !ok {
			out = append(out, j)
		}
	}
	return out, nil
}

// Count returns the number of coalitions of the given size that can be
// drawn from m candidates, as a float to survive large m.
func Count(m, size int) float64 {
	if size < 0 || size > m {
		return 0
	}
	if m <= exactCandidates {
		return float64(combin.Binomial(m, size))
	}
	return combin.GeneralizedBinomial(float64(m), float64(size))
}

// Enumerate lists every coalition of the given size over candidates in
// lexicographic order.
func Enumerate(candidates []int, size int) [][]int {
	m := len(candidates)
	if size < 0 || size > m {
		return nil
	}
	if size == 0 {
		return [][]int{{}}
	}
	combos := combin.Combinations(m, size)
	for _, c := range combos {
		for i, k := range c {
			c[i] = candidates[k]
		}
	}
	return combos
}

// Sample returns up to n coalitions of the given size. When there are no
// more than n of them they are all enumerated; otherwise n distinct
// coalitions are drawn uniformly.
func Sample(candidates []int, size, n int, rng *rand.Rand) [][]int {
	m := len(candidates)
	total := Count(m, size)
	if total == 0 {
		return nil
	}
	if total <= float64(n) {
		return Enumerate(candidates, size)
	}

	out := make([][]int, 0, n)
	if total < maxExact {
		count := int(math.Round(total))
		seen := make(map[int]struct{}, n)
		for len(out) < n {
			idx := rng.IntN(count)
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			c := combin.IndexToCombination(nil, idx, m, size)
			for i, k := range c {
				c[i] = candidates[k]
			}
			out = append(out, c)
		}
		return out
	}
	// The index space is too large to address; duplicates are negligible.
	for len(out) < n {
		out = append(out, subset(candidates, size, rng))
	}
	return out
}

// SampleUniform returns up to n coalitions drawn uniformly from all subsets
// of candidates with at most maxSize members. When the family has no more
// than n members it is enumerated instead, smallest coalitions first.
func SampleUniform(candidates []int, maxSize, n int, rng *rand.Rand) [][]int {
	m := len(candidates)
	if maxSize > m {
		maxSize = m
	}
	if maxSize < 0 {
		return nil
	}
	weights := make([]float64, maxSize+1)
	var total float64
	for s := range weights {
		weights[s] = Count(m, s)
		total += weights[s]
	}
	if total <= float64(n) {
		var out [][]int
		for s := 0; s <= maxSize; s++ {
			out = append(out, Enumerate(candidates, s)...)
		}
		return out
	}

	out := make([][]int, n)
	for i := range out {
		u := rng.Float64() * total
		s := 0
		for s < maxSize && u >= weights[s] {
			u -= weights[s]
			s++
		}
		out[i] = subset(candidates, s, rng)
	}
	return out
}

// subset draws a uniform subset of the given size, sorted ascending.
func subset(candidates []int, size int, rng *rand.Rand) []int {
	pool := append([]int(nil), candidates...)
	for i := 0; i < size; i++ {
		k := i + rng.IntN(len(pool)-i)
		pool[i], pool[k] = pool[k], pool[i]
	}
	out := pool[:size:size]
	sort.Ints(out)
	return out
}
