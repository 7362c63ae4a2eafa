// Package coalition builds the perturbed rows an influence estimate is
// computed from, and the coalitions of features held fixed in them.
//
// Every feature outside a coalition is replaced by a value drawn from the
// same column of a reference set. Columns are drawn independently of each
// other, so a perturbed row mixes values from different reference rows.
package coalition

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Draws samples sampleSize values from every column of reference.
//
// Without replacement each column is an independent random selection of
// distinct reference rows, which requires sampleSize <= the reference size.
func Draws(reference *mat.Dense, sampleSize int, replace bool, rng *rand.Rand) (*mat.Dense, error) {
	n, d := reference.Dims()
	if sampleSize < 1 {
		return nil, errors.NewConfigurationError("sample_size", "must be at least 1", sampleSize)
	}
	if !replace && sampleSize > n {
		return nil, errors.NewConfigurationError("sample_size",
			"cannot exceed the reference size when sampling without replacement", sampleSize)
	}

	out := mat.NewDense(sampleSize, d, nil)
	idx := make([]int, n)
	for j := 0; j < d; j++ {
		if replace {
			for i := 0; i < sampleSize; i++ {
				out.Set(i, j, reference.At(rng.IntN(n), j))
			}
			continue
		}
		// partial Fisher-Yates over the row indices
		for i := range idx {
			idx[i] = i
		}
		for i := 0; i < sampleSize; i++ {
			k := i + rng.IntN(n-i)
			idx[i], idx[k] = idx[k], idx[i]
			out.Set(i, j, reference.At(idx[i], j))
		}
	}
	return out, nil
}

// Fill returns a copy of draws in which the fixed columns carry the values
// of row.
func Fill(row []float64, fixed []int, draws *mat.Dense) *mat.Dense {
	out := mat.DenseCopyOf(draws)
	n, _ := out.Dims()
	for _, j := range fixed {
		v := row[j]
		for i := 0; i < n; i++ {
			out.Set(i, j, v)
		}
	}
	return out
}

// Perturb returns sampleSize copies of row where every feature outside
// fixed is replaced by a value drawn from reference.
func Perturb(row []float64, fixed []int, reference *mat.Dense, sampleSize int, replace bool, rng *rand.Rand) (*mat.Dense, error) {
	if err := checkRow(row, fixed, reference); err != nil {
		return nil, err
	}
	draws, err := Draws(reference, sampleSize, replace, rng)
	if err != nil {
		return nil, err
	}
	return Fill(row, fixed, draws), nil
}

// Pair builds the two perturbation batches of a marginal contribution over
// one shared set of draws: with has coalition and target fixed, without has
// only coalition fixed. The batches differ in the target column alone.
func Pair(row []float64, coalition []int, target int, draws *mat.Dense) (with, without *mat.Dense) {
	without = Fill(row, coalition, draws)
	with = mat.DenseCopyOf(without)
	n, _ := with.Dims()
	for i := 0; i < n; i++ {
		with.Set(i, target, row[target])
	}
	return with, without
}

func checkRow(row []float64, fixed []int, reference *mat.Dense) error {
	_, d := reference.Dims()
	if len(row) != d {
		return errors.NewDimensionError("coalition.Perturb", d, len(row), 1)
	}
	for _, j := range fixed {
		if j < 0 || j >= d {
			return errors.NewConfigurationError("coalition", "feature index out of range", j)
		}
	}
	return nil
}
