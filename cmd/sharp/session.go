package main

import (
	"context"

	"github.com/YuminosukeSato/sharp"
	"github.com/YuminosukeSato/sharp/core/dataset"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/ranker"
)

// loadData reads the configured reference dataset.
func (a *app) loadData() (*dataset.Dataset, error) {
	if a.cfg.Data.Path == "" {
		return nil, errors.NewConfigurationError("data.path", "a dataset is required (--data)", nil)
	}
	return dataset.Load(a.cfg.Data.Path, dataset.LoadOptions{
		LabelColumn: a.cfg.Data.LabelColumn,
		Sheet:       a.cfg.Data.Sheet,
	})
}

// loadRanker returns the ranking function: the weights file when given,
// otherwise a least squares fit on the dataset labels.
func (a *app) loadRanker(data *dataset.Dataset) (*ranker.Linear, error) {
	if a.cfg.Ranker.Weights != "" {
		return loadLinear(a.cfg.Ranker.Weights, data)
	}
	if !a.cfg.Ranker.FitFromLabels || data.Labels() == nil {
		return nil, errors.NewConfigurationError("ranker",
			"no ranking function: pass --weights or a --label column to fit one", nil)
	}
	l, err := ranker.FitLinear(data.Matrix(), data.Labels())
	if err != nil {
		return nil, err
	}
	a.logger.Info("Fitted least squares ranker", "weights", l.Weights(), "intercept", l.Intercept())
	return l, nil
}

// openSession loads the dataset and ranker and fits an explainer.
func (a *app) openSession(ctx context.Context) (*sharp.Session, *dataset.Dataset, error) {
	data, err := a.loadData()
	if err != nil {
		return nil, nil, err
	}
	rank, err := a.loadRanker(data)
	if err != nil {
		return nil, nil, err
	}
	e, err := sharp.New(
		sharp.WithConfig(a.cfg.Explainer),
		sharp.WithTargetFunction(rank.Func()),
		sharp.WithFeatureNames(data.Names()...),
		sharp.WithLogger(a.logger),
	)
	if err != nil {
		return nil, nil, err
	}
	s, err := e.Fit(ctx, data.Matrix(), data.Labels())
	if err != nil {
		return nil, nil, err
	}
	return s, data, nil
}
