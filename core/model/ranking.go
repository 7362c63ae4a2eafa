// Package model defines how an external model is bound as the ranking
// function whose output is being explained.
package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// RankingFunc scores every row of X. A larger score ranks higher.
//
// Implementations must be pure: the same rows always produce the same
// scores, and X must not be modified. They are called concurrently from
// several workers.
type RankingFunc func(X *mat.Dense) ([]float64, error)

// FromPredictor adapts a Predictor into a RankingFunc. The first output
// column of Predict is used as the score.
func FromPredictor(p Predictor) RankingFunc {
	return func(X *mat.Dense) ([]float64, error) {
		out, err := p.Predict(X)
		if err != nil {
			return nil, err
		}
		rows, _ := X.Dims()
		r, c := out.Dims()
		if r != rows {
			return nil, errors.NewDimensionError("model.FromPredictor", rows, r, 0)
		}
		if c == 0 {
			return nil, errors.NewDimensionError("model.FromPredictor", 1, c, 1)
		}
		return mat.Col(nil, 0, out), nil
	}
}

// FromFunc adapts a row-wise scoring function.
func FromFunc(score func(row []float64) float64) RankingFunc {
	return func(X *mat.Dense) ([]float64, error) {
		rows, _ := X.Dims()
		out := make([]float64, rows)
		for i := range out {
			out[i] = score(X.RawRowView(i))
		}
		return out, nil
	}
}
