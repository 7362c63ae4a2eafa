package sharp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sharp/core/dataset"
	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/pkg/log"
)

func scoreOf(row []float64) float64 { return floats.Dot(weights, row) }

func TestTwoFeatureScenario(t *testing.T) {
	ctx := context.Background()
	X := twoFeatureReference()

	t.Run("score", func(t *testing.T) {
		s := fit(t, X, WithQoI("score"), WithTargetFunction(twoFeature), WithRandomState(0))
		phi, err := s.Individual(ctx, Row(0), Overrides{})
		require.NoError(t, err)

		assert.Zero(t, phi[1])
		assert.InDelta(t, 2*(5-8.0/3), phi[0], 1e-9)
		assert.InDelta(t, 10-16.0/3, floats.Sum(phi), 1e-9)
	})

	t.Run("rank", func(t *testing.T) {
		s := fit(t, X, WithQoI("rank"), WithTargetFunction(twoFeature), WithRandomState(0))
		for i := 0; i < 3; i++ {
			phi, err := s.Individual(ctx, Row(i), Overrides{})
			require.NoError(t, err)
			assert.Zero(t, phi[1], "row %d", i)
		}
	})
}

func TestEfficiency(t *testing.T) {
	s := fit(t, reference(), WithQoI("score"), WithTargetFunction(linear), WithRandomState(9), WithNJobs(-1))

	X := reference()
	n, _ := X.Dims()
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = scoreOf(X.RawRowView(i))
	}
	mean := stat.Mean(scores, nil)

	for i := 0; i < n; i++ {
		phi, err := s.Individual(context.Background(), Row(i), Overrides{})
		require.NoError(t, err)
		assert.InDelta(t, scores[i]-mean, floats.Sum(phi), 1e-9, "row %d", i)
	}
}

func TestSymmetricFeatures(t *testing.T) {
	// Both columns hold the same values and enter the score identically.
	X := mat.NewDense(4, 2, []float64{1, 4, 2, 3, 3, 2, 4, 1})
	sum := model.FromFunc(func(r []float64) float64 { return r[0] + r[1] })
	s := fit(t, X, WithQoI("score"), WithTargetFunction(sum), WithRandomState(2))

	phi, err := s.Individual(context.Background(), Values(3, 3), Overrides{})
	require.NoError(t, err)
	assert.InDelta(t, phi[0], phi[1], 1e-12)
}

func TestDummyFeatureEveryMeasure(t *testing.T) {
	for _, m := range []string{"set", "marginal", "shapley", "banzhaf"} {
		for _, q := range []string{"score", "rank", "top-k"} {
			t.Run(m+"/"+q, func(t *testing.T) {
				s := fit(t, reference(), WithMeasure(m), WithQoI(q), WithTopK(3),
					WithTargetFunction(linear), WithRandomState(4), WithReplace(true), WithSampleSize(16))
				M, err := s.All(context.Background(), Overrides{})
				require.NoError(t, err)
				n, _ := M.Dims()
				for i := 0; i < n; i++ {
					assert.Zero(t, M.At(i, 3), "row %d", i)
				}
			})
		}
	}
}

func TestDeterministicAcrossWorkers(t *testing.T) {
	ctx := context.Background()
	opts := []Option{
		WithTargetFunction(linear), WithRandomState(42), WithReplace(true),
		WithSampleSize(20), WithCoalitionSamples(1),
	}
	seq := fit(t, reference(), append(opts, WithNJobs(1))...)
	par := fit(t, reference(), append(opts, WithNJobs(-1))...)

	a, err := seq.Individual(ctx, Row(2), Overrides{})
	require.NoError(t, err)
	b, err := par.Individual(ctx, Row(2), Overrides{})
	require.NoError(t, err)
	again, err := seq.Individual(ctx, Row(2), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, a, again)

	ma, err := seq.All(ctx, Overrides{})
	require.NoError(t, err)
	mb, err := par.All(ctx, Overrides{})
	require.NoError(t, err)
	assert.True(t, mat.Equal(ma, mb))
}

func TestShapeContracts(t *testing.T) {
	ctx := context.Background()
	s := fit(t, reference(), WithTargetFunction(linear), WithRandomState(5),
		WithReplace(true), WithSampleSize(10), WithCoalitionSamples(1), WithNJobs(2),
		WithFeatureNames("a", "b", "c", "d"))

	phi, err := s.Individual(ctx, Row(0), Overrides{})
	require.NoError(t, err)
	assert.Len(t, phi, 4)

	M, err := s.All(ctx, Overrides{})
	require.NoError(t, err)
	r, c := M.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 4, c)

	for j, name := range []string{"a", "b", "c", "d"} {
		f, err := s.Feature(ctx, dataset.ByName(name), Overrides{})
		require.NoError(t, err)
		assert.InDelta(t, stat.Mean(mat.Col(nil, j, M), nil), f, 1e-12, name)
	}

	sub := mat.NewDense(3, 4, nil)
	sub.Copy(reference().Slice(0, 3, 0, 4))
	M, err = s.All(ctx, Overrides{X: sub})
	require.NoError(t, err)
	r, c = M.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
}

func TestPairwiseAntisymmetry(t *testing.T) {
	ctx := context.Background()
	s := fit(t, reference(), WithQoI("pairwise"), WithTargetFunction(linear), WithRandomState(1))

	ab, err := s.Pairwise(ctx, Row(0), Rows(1), Overrides{})
	require.NoError(t, err)
	ba, err := s.Pairwise(ctx, Row(1), Rows(0), Overrides{})
	require.NoError(t, err)

	require.Len(t, ab, 4)
	for j := range ab {
		assert.InDelta(t, -ba[j], ab[j], 1e-12, "feature %d", j)
	}
	assert.Zero(t, ab[3])

	// Explicit rows give the same result as indices.
	X := reference()
	byValue, err := s.Pairwise(ctx, Values(X.RawRowView(0)...), Of(Values(X.RawRowView(1)...)), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ab, byValue)
}

func TestPairwiseAgainstSet(t *testing.T) {
	s := fit(t, reference(), WithQoI("pairwise"), WithTargetFunction(linear), WithRandomState(1))

	phi, err := s.Pairwise(context.Background(), Row(0), Rows(1, 2, 3), Overrides{})
	require.NoError(t, err)
	assert.Len(t, phi, 4)

	set := mat.NewDense(2, 4, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	phi, err = s.Pairwise(context.Background(), Row(0), Table(set), Overrides{})
	require.NoError(t, err)
	assert.Len(t, phi, 4)

	_, err = s.Pairwise(context.Background(), Row(0), Table(mat.NewDense(1, 2, nil)), Overrides{})
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	_, err = s.Pairwise(context.Background(), Row(0), Rows(), Overrides{})
	assert.Error(t, err)
}

func TestPairwiseCapsSampleSize(t *testing.T) {
	var warned error
	errors.SetZerologWarnFunc(func(w error) { warned = w })
	defer errors.SetZerologWarnFunc(nil)

	s := fit(t, reference(), WithQoI("pairwise"), WithTargetFunction(linear), WithSampleSize(5), WithRandomState(1))
	_, err := s.Pairwise(context.Background(), Row(0), Rows(1, 2), Overrides{})
	require.NoError(t, err)

	var w *errors.SampleSizeWarning
	require.True(t, errors.As(warned, &w))
	assert.Equal(t, 5, w.Requested)
	assert.Equal(t, 2, w.Used)
}

func TestPairwiseSet(t *testing.T) {
	ctx := context.Background()
	s := fit(t, reference(), WithQoI("pairwise"), WithTargetFunction(linear), WithRandomState(1), WithNJobs(-1))

	M, err := s.PairwiseSet(ctx, []Sample{Row(0), Row(2), Row(4)}, []Sample{Row(1), Row(3)}, Overrides{})
	require.NoError(t, err)
	r, c := M.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 4, c)

	first, err := s.Pairwise(ctx, Row(0), Rows(1), Overrides{})
	require.NoError(t, err)
	assert.Equal(t, first, mat.Row(nil, 0, M))

	_, err = s.PairwiseSet(ctx, nil, []Sample{Row(1)}, Overrides{})
	assert.Error(t, err)
}

func TestHeldFixedMarginal(t *testing.T) {
	s := fit(t, reference(), WithMeasure("marginal"), WithQoI("score"), WithTargetFunction(linear), WithRandomState(1))
	phi, err := s.Individual(context.Background(), Row(0), Overrides{HeldFixed: []int{0, 2}})
	require.NoError(t, err)

	X := reference()
	for j := range phi {
		want := weights[j] * (X.At(0, j) - stat.Mean(mat.Col(nil, j, X), nil))
		assert.InDelta(t, want, phi[j], 1e-9, "feature %d", j)
	}
}

func TestOperationErrors(t *testing.T) {
	ctx := context.Background()
	s := fit(t, reference(), WithTargetFunction(linear), WithRandomState(1))
	var ce *errors.ConfigurationError

	tests := []struct {
		name string
		run  func() error
	}{
		{"row index out of range", func() error {
			_, err := s.Individual(ctx, Row(8), Overrides{})
			return err
		}},
		{"row width mismatch", func() error {
			_, err := s.Individual(ctx, Values(1, 2), Overrides{})
			return err
		}},
		{"sample size exceeds reference", func() error {
			_, err := s.Individual(ctx, Row(0), Overrides{SampleSize: Int(9)})
			return err
		}},
		{"coalition size too large", func() error {
			_, err := s.All(ctx, Overrides{CoalitionSize: Int(4)})
			return err
		}},
		{"held fixed out of range", func() error {
			_, err := s.Individual(ctx, Row(0), Overrides{HeldFixed: []int{7}})
			return err
		}},
		{"unknown feature", func() error {
			_, err := s.Feature(ctx, dataset.ByName("zzz"), Overrides{})
			return err
		}},
		{"table width mismatch", func() error {
			_, err := s.All(ctx, Overrides{X: mat.NewDense(2, 3, nil)})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			assert.True(t, errors.As(err, &ce), "got %v", err)
		})
	}

	_, err := s.All(ctx, Overrides{X: mat.NewDense(1, 4, []float64{1, 2, 3, 4}), Y: []float64{1, 2}})
	var ve *errors.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestNotFitted(t *testing.T) {
	var s *Session
	_, err := s.Individual(context.Background(), Row(0), Overrides{})
	var nf *errors.NotFittedError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Individual", nf.Method)

	_, err = s.All(context.Background(), Overrides{})
	assert.True(t, errors.As(err, &nf))
}

func TestRankingFunctionErrorsAbort(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("model offline")
	failing := func(*mat.Dense) ([]float64, error) { return nil, sentinel }

	logger, _ := log.NewTestLogger(log.LevelDebug)
	s := fit(t, reference(), WithQoI("score"), WithTargetFunction(failing), WithNJobs(-1), WithLogger(logger))
	_, err := s.All(ctx, Overrides{})
	assert.True(t, errors.Is(err, sentinel))
	assert.True(t, logger.ContainsMessage("Influence computation failed"))

	panicking := func(*mat.Dense) ([]float64, error) { panic("boom") }
	s = fit(t, reference(), WithQoI("score"), WithTargetFunction(panicking), WithNJobs(-1))
	_, err = s.Individual(ctx, Row(0), Overrides{})
	var pe *errors.PanicError
	assert.True(t, errors.As(err, &pe))
}

func TestVerboseReportsProgress(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	s := fit(t, reference(), WithTargetFunction(linear), WithRandomState(1), WithVerbose(1), WithLogger(logger))

	_, err := s.All(context.Background(), Overrides{})
	require.NoError(t, err)
	assert.True(t, logger.ContainsMessage("Tasks finished"))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationAll))

	logger.Clear()
	_, err = s.Individual(context.Background(), Row(0), Overrides{Verbose: Int(0)})
	require.NoError(t, err)
	assert.False(t, logger.ContainsMessage("Tasks finished"))
}

func TestCancelledContext(t *testing.T) {
	s := fit(t, reference(), WithTargetFunction(linear), WithRandomState(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.All(ctx, Overrides{})
	assert.ErrorIs(t, err, context.Canceled)
}
