package main

import (
	"github.com/YuminosukeSato/sharp/core/dataset"
	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/ranker"
)

// loadLinear reads a weights file and aligns it with the dataset columns.
// Weights that name their features are reordered to the dataset order.
func loadLinear(path string, data *dataset.Dataset) (*ranker.Linear, error) {
	mw, err := model.LoadWeights(path)
	if err != nil {
		return nil, err
	}
	names := data.Names()
	if len(mw.Coefficients) != len(names) {
		return nil, errors.NewDimensionError("ranker.weights", len(names), len(mw.Coefficients), 1)
	}
	if len(mw.Features) == 0 {
		return ranker.FromWeights(mw)
	}

	aligned := make([]float64, len(names))
	for i, f := range mw.Features {
		j, err := dataset.ByName(f).Resolve(names)
		if err != nil {
			return nil, err
		}
		aligned[j] = mw.Coefficients[i]
	}
	return ranker.NewLinear(aligned, mw.Intercept)
}
