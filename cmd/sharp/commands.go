package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/sharp"
	"github.com/YuminosukeSato/sharp/core/dataset"
	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/metrics"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/pkg/log"
	"github.com/YuminosukeSato/sharp/qoi"
	"github.com/YuminosukeSato/sharp/ranker"
)

// parseFeature resolves a feature given by name or, failing that, by index.
func parseFeature(s string, names []string) (int, error) {
	if i, err := dataset.ByName(s).Resolve(names); err == nil {
		return i, nil
	}
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewConfigurationError("feature", "unknown feature name", s)
	}
	return dataset.ByIndex(idx).Resolve(names)
}

func heldFixed(features []string, names []string) ([]int, error) {
	out := make([]int, 0, len(features))
	for _, f := range features {
		j, err := parseFeature(f, names)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

// sampleFlags select a single row to explain.
type sampleFlags struct {
	row    int
	values []float64
}

func (f *sampleFlags) register(cmd *cobra.Command, name string) {
	cmd.Flags().IntVar(&f.row, name, -1, "row index in the dataset")
	cmd.Flags().Float64SliceVar(&f.values, "values", nil, "explicit feature values, comma separated")
}

func (f *sampleFlags) sample() (sharp.Sample, []int, error) {
	switch {
	case len(f.values) > 0 && f.row >= 0:
		return sharp.Sample{}, nil, errors.NewConfigurationError("sample", "use either a row index or --values", nil)
	case len(f.values) > 0:
		return sharp.Values(f.values...), nil, nil
	case f.row >= 0:
		return sharp.Row(f.row), []int{f.row}, nil
	}
	return sharp.Sample{}, nil, errors.NewConfigurationError("sample", "a row index or --values is required", nil)
}

func newIndividualCommand(a *app) *cobra.Command {
	var (
		sf   sampleFlags
		held []string
	)
	cmd := &cobra.Command{
		Use:   "individual",
		Short: "Explain one row against the reference dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, rows, err := sf.sample()
			if err != nil {
				return err
			}
			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			fixed, err := heldFixed(held, s.FeatureNames())
			if err != nil {
				return err
			}
			infl, err := s.Individual(cmd.Context(), sample, sharp.Overrides{HeldFixed: fixed})
			if err != nil {
				return err
			}
			res := newResult(log.OperationIndividual, s)
			res.Rows = rows
			res.Influences = [][]float64{infl}
			return a.write(res)
		},
	}
	sf.register(cmd, "row")
	cmd.Flags().StringSliceVar(&held, "held-fixed", nil, "features held fixed in every perturbation")
	return cmd
}

func newFeatureCommand(a *app) *cobra.Command {
	var (
		feature string
		held    []string
	)
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Mean influence of one feature over the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if feature == "" {
				return errors.NewConfigurationError("feature", "--feature is required", nil)
			}
			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			target, err := parseFeature(feature, s.FeatureNames())
			if err != nil {
				return err
			}
			fixed, err := heldFixed(held, s.FeatureNames())
			if err != nil {
				return err
			}
			mean, err := s.Feature(cmd.Context(), dataset.ByIndex(target), sharp.Overrides{HeldFixed: fixed})
			if err != nil {
				return err
			}
			res := newResult(log.OperationFeature, s)
			res.Features = []string{s.FeatureNames()[target]}
			res.Mean = &mean
			return a.write(res)
		},
	}
	cmd.Flags().StringVarP(&feature, "feature", "f", "", "feature name or index")
	cmd.Flags().StringSliceVar(&held, "held-fixed", nil, "features held fixed in every perturbation")
	return cmd
}

func newAllCommand(a *app) *cobra.Command {
	var (
		summary bool
		held    []string
	)
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Explain every row of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			fixed, err := heldFixed(held, s.FeatureNames())
			if err != nil {
				return err
			}
			infl, err := s.All(cmd.Context(), sharp.Overrides{HeldFixed: fixed})
			if err != nil {
				return err
			}
			res := newResult(log.OperationAll, s)
			res.Influences = matrixRows(infl)
			if summary {
				sum, err := sharp.Summarize(infl, s.FeatureNames())
				if err != nil {
					return err
				}
				res.Summary = sharp.ByImportance(sum)
			}
			return a.write(res)
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "add per-feature summary statistics ordered by importance")
	cmd.Flags().StringSliceVar(&held, "held-fixed", nil, "features held fixed in every perturbation")
	return cmd
}

func newPairwiseCommand(a *app) *cobra.Command {
	var (
		sf      sampleFlags
		against []int
	)
	cmd := &cobra.Command{
		Use:   "pairwise",
		Short: "Explain the preference of one row over a comparison set",
		Long: `Explain the preference of one row over a comparison set.

The comparison set is given by --against row indices and defaults to the
whole dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, rows, err := sf.sample()
			if err != nil {
				return err
			}
			s, data, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			comparison := sharp.Table(data.Matrix())
			if len(against) > 0 {
				comparison = sharp.Rows(against...)
			}
			infl, err := s.Pairwise(cmd.Context(), sample, comparison, sharp.Overrides{})
			if err != nil {
				return err
			}
			res := newResult(log.OperationPairwise, s)
			res.Rows = rows
			res.Influences = [][]float64{infl}
			return a.write(res)
		},
	}
	sf.register(cmd, "row")
	cmd.Flags().IntSliceVar(&against, "against", nil, "row indices of the comparison set")
	return cmd
}

func newPairwiseSetCommand(a *app) *cobra.Command {
	var first, second []int
	cmd := &cobra.Command{
		Use:   "pairwise-set",
		Short: "Explain aligned pairs of rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(first) == 0 || len(second) == 0 {
				return errors.NewConfigurationError("pairs", "--first and --second are required", nil)
			}
			s, _, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			infl, err := s.PairwiseSet(cmd.Context(), rowSamples(first), rowSamples(second), sharp.Overrides{})
			if err != nil {
				return err
			}
			res := newResult(log.OperationPairwiseSet, s)
			res.Rows = first[:min(len(first), len(second))]
			res.Influences = matrixRows(infl)
			return a.write(res)
		},
	}
	cmd.Flags().IntSliceVar(&first, "first", nil, "row indices of the first item of each pair")
	cmd.Flags().IntSliceVar(&second, "second", nil, "row indices of the second item of each pair")
	return cmd
}

func rowSamples(idx []int) []sharp.Sample {
	out := make([]sharp.Sample, len(idx))
	for i, j := range idx {
		out[i] = sharp.Row(j)
	}
	return out
}

func newFitRankerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fit-ranker",
		Short: "Fit linear ranker weights to the label column",
		Long: `Fit a least squares linear ranker to the label column of the dataset and
write its weights. The weights file can then be passed to --weights.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.loadData()
			if err != nil {
				return err
			}
			if data.Labels() == nil {
				return errors.NewConfigurationError("data.label_column", "a label column is required to fit a ranker", nil)
			}
			l, err := ranker.FitLinear(data.Matrix(), data.Labels())
			if err != nil {
				return err
			}
			mw := l.ExportWeights(data.Names())
			mw.ModelType = "LeastSquares"
			n, _ := data.Dims()
			mw.Metadata = map[string]interface{}{"samples": n, "source": a.cfg.Data.Path}
			if err := fitQuality(l, data, mw.Metadata); err != nil {
				return err
			}

			if p := a.cfg.Output.Path; p != "" {
				if err := model.SaveWeights(mw, p); err != nil {
					return err
				}
				a.logger.Info("Ranker weights saved", "path", p, log.FeaturesKey, len(mw.Coefficients))
				return nil
			}
			return a.write(mw)
		},
	}
}

// fitQuality records how well the fitted scores reproduce the labels. NDCG
// is only recorded for non-negative labels.
func fitQuality(l *ranker.Linear, data *dataset.Dataset, meta map[string]interface{}) error {
	scores, err := l.Scores(data.Matrix())
	if err != nil {
		return err
	}
	y := data.Labels()
	if rmse, err := metrics.RMSE(y, scores); err == nil {
		meta["rmse"] = rmse
	}
	if r2, err := metrics.R2Score(y, scores); err == nil {
		meta["r2"] = r2
	}
	if ndcg, err := metrics.NDCG(y, scores, qoi.DefaultK); err == nil {
		meta["ndcg_at_10"] = ndcg
	}
	return nil
}
