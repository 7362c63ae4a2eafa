package sharp

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sharp/core/dataset"
	"github.com/YuminosukeSato/sharp/core/parallel"
	"github.com/YuminosukeSato/sharp/core/random"
	"github.com/YuminosukeSato/sharp/measure"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/pkg/log"
)

// Individual returns the influence of every feature on the QoI of sample,
// in feature order. The reference set is ov.X or the fitted reference, and
// an indexed sample is taken from it. Features are computed in parallel.
func (s *Session) Individual(ctx context.Context, sample Sample, ov Overrides) (influences []float64, err error) {
	if err := s.check("Individual"); err != nil {
		return nil, err
	}
	defer s.trace(log.OperationIndividual, time.Now(), &err)

	ref, err := s.table("Individual", ov.X, ov.Y)
	if err != nil {
		return nil, err
	}
	st, err := s.settings(ov, ref)
	if err != nil {
		return nil, err
	}
	row, err := sample.resolve("Individual", ref)
	if err != nil {
		return nil, err
	}
	return s.explain(ctx, row, ref, st, s.source, s.cfg.NJobs, s.progress(st.verbose, log.OperationIndividual))
}

// Feature returns the mean influence of one feature over every row of the
// dataset of the call, which also serves as the reference set.
func (s *Session) Feature(ctx context.Context, feature dataset.Feature, ov Overrides) (mean float64, err error) {
	if err := s.check("Feature"); err != nil {
		return 0, err
	}
	defer s.trace(log.OperationFeature, time.Now(), &err)

	target, err := feature.Resolve(s.data.Names())
	if err != nil {
		return 0, err
	}
	X, err := s.table("Feature", ov.X, ov.Y)
	if err != nil {
		return 0, err
	}
	st, err := s.settings(ov, X)
	if err != nil {
		return 0, err
	}
	n, _ := X.Dims()
	opts := parallel.Options{
		NJobs:    s.cfg.NJobs,
		Progress: s.progress(st.verbose, log.OperationFeature),
		Name:     "sharp.Feature",
	}
	cells, err := parallel.Map(ctx, n, opts, func(ctx context.Context, i int) (float64, error) {
		return s.estimate(X.RawRowView(i), target, X, st, s.source.Derive(i, target))
	})
	if err != nil {
		return 0, err
	}
	return stat.Mean(cells, nil), nil
}

// All returns the influence matrix of every row of ov.X (or of the fitted
// reference) against one fixed reference set: ov.Reference when given,
// the fitted reference otherwise. Rows are computed in parallel.
func (s *Session) All(ctx context.Context, ov Overrides) (influences *mat.Dense, err error) {
	if err := s.check("All"); err != nil {
		return nil, err
	}
	defer s.trace(log.OperationAll, time.Now(), &err)

	X, err := s.table("All", ov.X, ov.Y)
	if err != nil {
		return nil, err
	}
	ref, err := s.table("All", ov.Reference, nil)
	if err != nil {
		return nil, err
	}
	st, err := s.settings(ov, ref)
	if err != nil {
		return nil, err
	}
	n, d := X.Dims()
	opts := parallel.Options{
		NJobs:    s.cfg.NJobs,
		Progress: s.progress(st.verbose, log.OperationAll),
		Name:     "sharp.All",
	}
	rows, err := parallel.Map(ctx, n, opts, func(ctx context.Context, i int) ([]float64, error) {
		return s.explain(ctx, mat.Row(nil, i, X), ref, st, s.source.Derive(i), 1, nil)
	})
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(n, d, nil)
	for i, r := range rows {
		out.SetRow(i, r)
	}
	return out, nil
}

// Pairwise returns the influence of every feature of sample1 on the QoI
// evaluated against sample2, which becomes the reference set. Indexed
// samples are resolved against ov.X or the fitted reference. A configured
// sample size larger than the comparison set is reduced to its size.
func (s *Session) Pairwise(ctx context.Context, sample1 Sample, sample2 Samples, ov Overrides) (influences []float64, err error) {
	if err := s.check("Pairwise"); err != nil {
		return nil, err
	}
	defer s.trace(log.OperationPairwise, time.Now(), &err)

	return s.pairwise(ctx, sample1, sample2, ov, s.source, s.cfg.NJobs)
}

// PairwiseSet returns one row of pairwise influences for each aligned pair
// (samples1[i], samples2[i]). Extra samples in the longer sequence are
// ignored. Pairs are computed in parallel.
func (s *Session) PairwiseSet(ctx context.Context, samples1, samples2 []Sample, ov Overrides) (influences *mat.Dense, err error) {
	if err := s.check("PairwiseSet"); err != nil {
		return nil, err
	}
	defer s.trace(log.OperationPairwiseSet, time.Now(), &err, log.PairsKey, min(len(samples1), len(samples2)))

	n := min(len(samples1), len(samples2))
	if n == 0 {
		return nil, errors.NewValidationError("samples", "at least one pair is required", 0)
	}
	verbose := s.cfg.Verbose
	if ov.Verbose != nil {
		verbose = *ov.Verbose
	}
	inner := ov
	inner.Verbose = Int(0)
	opts := parallel.Options{
		NJobs:    s.cfg.NJobs,
		Progress: s.progress(verbose, log.OperationPairwiseSet),
		Name:     "sharp.PairwiseSet",
	}
	rows, err := parallel.Map(ctx, n, opts, func(ctx context.Context, i int) ([]float64, error) {
		return s.pairwise(ctx, samples1[i], Of(samples2[i]), inner, s.source.Derive(i), 1)
	})
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(n, s.features(), nil)
	for i, r := range rows {
		out.SetRow(i, r)
	}
	return out, nil
}

func (s *Session) pairwise(ctx context.Context, sample1 Sample, sample2 Samples, ov Overrides, src random.Source, nJobs int) ([]float64, error) {
	X, err := s.table("Pairwise", ov.X, ov.Y)
	if err != nil {
		return nil, err
	}
	row, err := sample1.resolve("Pairwise", X)
	if err != nil {
		return nil, err
	}
	ref, err := sample2.resolve("Pairwise", X)
	if err != nil {
		return nil, err
	}

	n, _ := ref.Dims()
	if ov.SampleSize == nil {
		size := n
		if cfg := s.cfg.SampleSize; cfg != nil && *cfg < n {
			size = *cfg
		} else if cfg != nil && *cfg > n {
			errors.Warn(errors.NewSampleSizeWarning(*cfg, n, "comparison set is smaller than sample_size"))
		}
		ov.SampleSize = Int(size)
	}
	st, err := s.settings(ov, ref)
	if err != nil {
		return nil, err
	}
	return s.explain(ctx, row, ref, st, src, nJobs, s.progress(st.verbose, log.OperationPairwise))
}

// explain maps the measure over every feature of row. Task j draws from
// src.Derive(j).
func (s *Session) explain(ctx context.Context, row []float64, ref *mat.Dense, st settings, src random.Source, nJobs int, progress parallel.Progress) ([]float64, error) {
	opts := parallel.Options{NJobs: nJobs, Progress: progress, Name: "sharp.explain"}
	return parallel.Map(ctx, s.features(), opts, func(ctx context.Context, j int) (float64, error) {
		return s.estimate(row, j, ref, st, src.Derive(j))
	})
}

// estimate computes one cell. The target is never held fixed for its own
// estimate.
func (s *Session) estimate(row []float64, target int, ref *mat.Dense, st settings, src random.Source) (float64, error) {
	held := make([]int, 0, len(st.heldFixed))
	for _, j := range st.heldFixed {
		if j != target {
			held = append(held, j)
		}
	}
	return s.measure.Compute(measure.Params{
		Row:              row,
		Target:           target,
		HeldFixed:        held,
		Reference:        ref,
		QoI:              s.qoi,
		SampleSize:       st.sampleSize,
		CoalitionSize:    st.coalitionSize,
		CoalitionSamples: s.cfg.CoalitionSamples,
		Replace:          s.cfg.Replace,
		Rand:             src.Rand(),
	})
}

func (s *Session) progress(verbose int, op string) parallel.Progress {
	if verbose <= 0 {
		return nil
	}
	return parallel.NewLogProgress(s.logger, op)
}

func (s *Session) trace(op string, start time.Time, err *error, fields ...any) {
	if *err != nil {
		s.logger.Error("Influence computation failed", append([]any{*err, log.OperationKey, op}, fields...)...)
		return
	}
	s.logger.Debug("Influence computation finished",
		append([]any{log.OperationKey, op, log.DurationMsKey, time.Since(start).Milliseconds()}, fields...)...)
}
