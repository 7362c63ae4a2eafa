// Package ranker provides reference ranking functions: a fixed weighted sum
// of features and an ordinary least squares fit of such a sum from labels.
package ranker

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Linear scores a row as Intercept + Σ Weights[j]·x[j].
type Linear struct {
	weights   []float64
	intercept float64
}

// NewLinear returns a Linear ranker owning a copy of weights.
func NewLinear(weights []float64, intercept float64) (*Linear, error) {
	if len(weights) == 0 {
		return nil, errors.NewValidationError("weights", "at least one weight is required", 0)
	}
	if err := errors.CheckNumericalStability("ranker.NewLinear", weights); err != nil {
		return nil, err
	}
	return &Linear{weights: append([]float64(nil), weights...), intercept: intercept}, nil
}

// FromWeights builds a Linear ranker from serialized weights.
func FromWeights(mw *model.ModelWeights) (*Linear, error) {
	if err := mw.Validate(); err != nil {
		return nil, err
	}
	return NewLinear(mw.Coefficients, mw.Intercept)
}

// Weights returns a copy of the weights.
func (l *Linear) Weights() []float64 {
	return append([]float64(nil), l.weights...)
}

// Intercept returns the intercept.
func (l *Linear) Intercept() float64 {
	return l.intercept
}

// Scores evaluates every row of X.
func (l *Linear) Scores(X *mat.Dense) ([]float64, error) {
	rows, cols := X.Dims()
	if cols != len(l.weights) {
		return nil, errors.NewDimensionError("ranker.Linear", len(l.weights), cols, 1)
	}
	out := make([]float64, rows)
	for i := range out {
		out[i] = l.intercept + floats.Dot(l.weights, X.RawRowView(i))
	}
	return out, nil
}

// Func returns l as a ranking function.
func (l *Linear) Func() model.RankingFunc {
	return l.Scores
}

// ExportWeights returns the serializable form of l.
func (l *Linear) ExportWeights(features []string) *model.ModelWeights {
	return &model.ModelWeights{
		ModelType:    "Linear",
		Version:      "1.0.0",
		Coefficients: l.Weights(),
		Intercept:    l.intercept,
		Features:     append([]string(nil), features...),
	}
}
