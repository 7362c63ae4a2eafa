package sharp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Sample is one row to explain: either explicit values or a positional
// index into the dataset of the call.
type Sample struct {
	values  []float64
	index   int
	indexed bool
}

// Values is a sample given by its feature values.
func Values(v ...float64) Sample {
	return Sample{values: append([]float64(nil), v...)}
}

// Row is a sample given by its position in the dataset of the call.
func Row(i int) Sample {
	return Sample{index: i, indexed: true}
}

func (s Sample) resolve(op string, X *mat.Dense) ([]float64, error) {
	n, d := X.Dims()
	if s.indexed {
		if s.index < 0 || s.index >= n {
			return nil, errors.NewConfigurationError("sample", "row index out of range", s.index)
		}
		return mat.Row(nil, s.index, X), nil
	}
	if len(s.values) != d {
		return nil, errors.NewDimensionError(op, d, len(s.values), 1)
	}
	return append([]float64(nil), s.values...), nil
}

// Samples is a set of rows used as the comparison side of Pairwise.
type Samples struct {
	table   mat.Matrix
	rows    []Sample
	indices []int
}

// Table is a comparison set given as a matrix.
func Table(X mat.Matrix) Samples {
	return Samples{table: X}
}

// Rows is a comparison set given by positions in the dataset of the call.
func Rows(idx ...int) Samples {
	return Samples{indices: append([]int(nil), idx...)}
}

// Of is a comparison set made of the given samples.
func Of(samples ...Sample) Samples {
	return Samples{rows: append([]Sample(nil), samples...)}
}

func (s Samples) resolve(op string, X *mat.Dense) (*mat.Dense, error) {
	_, d := X.Dims()
	if s.table != nil {
		r, c := s.table.Dims()
		if r == 0 {
			return nil, errors.NewValidationError("sample2", "comparison set is empty", 0)
		}
		if c != d {
			return nil, errors.NewDimensionError(op, d, c, 1)
		}
		return mat.DenseCopyOf(s.table), nil
	}

	rows := s.rows
	if len(s.indices) > 0 {
		rows = make([]Sample, len(s.indices))
		for i, idx := range s.indices {
			rows[i] = Row(idx)
		}
	}
	if len(rows) == 0 {
		return nil, errors.NewValidationError("sample2", "comparison set is empty", 0)
	}
	out := mat.NewDense(len(rows), d, nil)
	for i, r := range rows {
		v, err := r.resolve(op, X)
		if err != nil {
			return nil, err
		}
		out.SetRow(i, v)
	}
	return out, nil
}
