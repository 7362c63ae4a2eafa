package sharp

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/core/dataset"
	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// FeatureSummary describes the distribution of one feature's influences
// over the rows of an influence matrix.
type FeatureSummary struct {
	Feature string  `json:"feature"`
	Mean    float64 `json:"mean"`
	MeanAbs float64 `json:"mean_abs"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Q25     float64 `json:"q25"`
	Median  float64 `json:"median"`
	Q75     float64 `json:"q75"`
	Max     float64 `json:"max"`
}

// Summarize returns one FeatureSummary per column of influences, in column
// order. names may be nil.
func Summarize(influences mat.Matrix, names []string) ([]FeatureSummary, error) {
	if influences == nil {
		return nil, errors.ErrEmptyData
	}
	r, c := influences.Dims()
	if r == 0 || c == 0 {
		return nil, errors.ErrEmptyData
	}
	names, err := dataset.FeatureNames(names, c)
	if err != nil {
		return nil, err
	}

	out := make([]FeatureSummary, c)
	for j := 0; j < c; j++ {
		col := stats.Float64Data(mat.Col(nil, j, influences))
		abs := make(stats.Float64Data, len(col))
		for i, v := range col {
			abs[i] = math.Abs(v)
		}
		s, err := describe(col)
		if err != nil {
			return nil, errors.Wrapf(err, "summarize feature %s", names[j])
		}
		if s.MeanAbs, err = stats.Mean(abs); err != nil {
			return nil, errors.Wrapf(err, "summarize feature %s", names[j])
		}
		s.Feature = names[j]
		out[j] = s
	}
	return out, nil
}

func describe(data stats.Float64Data) (FeatureSummary, error) {
	var s FeatureSummary
	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return s, err
	}
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	if s.Q25, err = data.PercentileNearestRank(25); err != nil {
		return s, err
	}
	if s.Q75, err = data.PercentileNearestRank(75); err != nil {
		return s, err
	}
	return s, nil
}

// ByImportance orders summaries by decreasing mean absolute influence.
// Ties keep their feature order.
func ByImportance(summaries []FeatureSummary) []FeatureSummary {
	out := append([]FeatureSummary(nil), summaries...)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].MeanAbs > out[b].MeanAbs
	})
	return out
}
