// Package dataset holds the tabular inputs of an attribution run: a numeric
// matrix of rows, optional per-row labels and the resolved feature names.
package dataset

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Dataset is an immutable collection of rows with optional labels.
type Dataset struct {
	x     *mat.Dense
	y     []float64
	names []string
}

// New validates X and y and returns a Dataset that owns copies of them.
// names may be nil, in which case positional names are generated.
func New(X mat.Matrix, y []float64, names []string) (*Dataset, error) {
	xd, yd, err := CheckInputs(X, y)
	if err != nil {
		return nil, err
	}
	_, d := xd.Dims()
	fn, err := FeatureNames(names, d)
	if err != nil {
		return nil, err
	}
	return &Dataset{x: xd, y: yd, names: fn}, nil
}

// FromRows builds a Dataset from row slices.
func FromRows(rows [][]float64, y []float64, names []string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.NewValidationError("X", "at least one row is required", 0)
	}
	d := len(rows[0])
	data := make([]float64, 0, len(rows)*d)
	for i, r := range rows {
		if len(r) != d {
			return nil, errors.NewValidationError("X",
				"row "+strconv.Itoa(i)+" has a different number of columns", len(r))
		}
		data = append(data, r...)
	}
	if d == 0 {
		return nil, errors.NewValidationError("X", "at least one feature is required", 0)
	}
	return New(mat.NewDense(len(rows), d, data), y, names)
}

// CheckInputs validates a reference table and its optional labels and
// returns private copies. It fails with a ValidationError when the table is
// empty, contains non-finite values, or when the label count does not match
// the row count.
func CheckInputs(X mat.Matrix, y []float64) (*mat.Dense, []float64, error) {
	if X == nil {
		return nil, nil, errors.NewValidationError("X", "input table is required", nil)
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, nil, errors.NewValidationError("X", "input table must have at least one row and one column", []int{r, c})
	}
	xd := mat.DenseCopyOf(X)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := xd.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, errors.NewValidationError("X",
					"non-finite value at row "+strconv.Itoa(i)+", column "+strconv.Itoa(j), v)
			}
		}
	}
	var yd []float64
	if y != nil {
		if len(y) != r {
			return nil, nil, errors.NewValidationError("y", "label count does not match row count", len(y))
		}
		yd = append([]float64(nil), y...)
	}
	return xd, yd, nil
}

// FeatureNames returns names when it has one entry per feature, or
// positional names "0".."d-1" when names is empty. Duplicate names are
// rejected since resolution by name would be ambiguous.
func FeatureNames(names []string, d int) ([]string, error) {
	if len(names) == 0 {
		out := make([]string, d)
		for i := range out {
			out[i] = strconv.Itoa(i)
		}
		return out, nil
	}
	if len(names) != d {
		return nil, errors.NewValidationError("feature_names", "one name per feature is required", len(names))
	}
	seen := make(map[string]struct{}, d)
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return nil, errors.NewValidationError("feature_names", "duplicate feature name", n)
		}
		seen[n] = struct{}{}
	}
	return append([]string(nil), names...), nil
}

// Dims returns the number of rows and features.
func (d *Dataset) Dims() (rows, features int) {
	return d.x.Dims()
}

// Matrix returns the underlying matrix. Callers must not modify it.
func (d *Dataset) Matrix() *mat.Dense {
	return d.x
}

// Labels returns the optional labels, or nil.
func (d *Dataset) Labels() []float64 {
	return d.y
}

// Names returns the feature names in positional order.
func (d *Dataset) Names() []string {
	return d.names
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []float64 {
	return mat.Row(nil, i, d.x)
}

// Select returns a new Dataset holding the given rows in the given order.
func (d *Dataset) Select(idx ...int) (*Dataset, error) {
	r, c := d.x.Dims()
	if len(idx) == 0 {
		return nil, errors.NewValidationError("rows", "at least one row index is required", idx)
	}
	out := mat.NewDense(len(idx), c, nil)
	var y []float64
	if d.y != nil {
		y = make([]float64, len(idx))
	}
	for k, i := range idx {
		if i < 0 || i >= r {
			return nil, errors.NewValidationError("rows", "row index out of range", i)
		}
		out.SetRow(k, d.x.RawRowView(i))
		if y != nil {
			y[k] = d.y[i]
		}
	}
	return &Dataset{x: out, y: y, names: d.names}, nil
}
