package qoi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// score = 2*f0 + 0*f1
var linear = model.FromFunc(func(row []float64) float64 { return 2 * row[0] })

func reference() *mat.Dense {
	return mat.NewDense(3, 2, []float64{
		5, 1,
		2.5, 7,
		0.5, 3,
	})
}

func TestRankOfReferenceRows(t *testing.T) {
	X := reference()
	q, err := NewRank(linear, X)
	require.NoError(t, err)

	ranks, err := q.Payoffs(X, X)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, ranks)
	assert.Equal(t, NameRank, q.Name())
}

func TestRankTiesGoAhead(t *testing.T) {
	q, err := NewRank(linear, reference())
	require.NoError(t, err)

	// Score 5 ties with the second reference row and ranks ahead of it.
	v, err := Value(q, []float64{2.5, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = Value(q, []float64{100, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = Value(q, []float64{-1, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestRanks(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, Ranks([]float64{10, 5, 1}))
	assert.Equal(t, []int{3, 1, 2}, Ranks([]float64{1, 5, 5}))
	assert.Empty(t, Ranks(nil))
}

func TestScore(t *testing.T) {
	q := NewScore(linear)
	out, err := q.Payoffs(reference(), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 5, 1}, out)

	m, err := Mean(q, reference(), nil)
	require.NoError(t, err)
	assert.InDelta(t, 16.0/3, m, 1e-12)
}

func TestTopK(t *testing.T) {
	X := reference()
	q, err := NewTopK(linear, X, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, q.K())

	out, err := q.Payoffs(X, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0}, out)

	_, err = NewTopK(linear, X, 0)
	var ce *errors.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestPairwise(t *testing.T) {
	q := NewPairwise(linear)
	rows := mat.NewDense(3, 2, []float64{5, 0, 1, 0, 0, 0})
	other := mat.NewDense(1, 2, []float64{1, 9})

	out, err := q.Payoffs(rows, other)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, -1}, out)

	// Mean outcome over a comparison set.
	out, err = q.Payoffs(mat.NewDense(1, 2, []float64{2.5, 0}), reference())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, out[0], 1e-12)

	_, err = q.Payoffs(rows, nil)
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	X := reference()
	tests := []struct {
		name string
		want string
	}{
		{"", NameRank},
		{"score", NameScore},
		{"rank", NameRank},
		{"top-k", NameTopK},
		{"TopK", NameTopK},
		{"pairwise", NamePairwise},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Resolve(tt.name, Options{Target: linear, Reference: X})
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Name())
		})
	}

	q, err := Resolve("top-k", Options{Target: linear, Reference: X})
	require.NoError(t, err)
	assert.Equal(t, DefaultK, q.(*TopK).K())
}

func TestResolveErrors(t *testing.T) {
	var ce *errors.ConfigurationError

	_, err := Resolve("rank", Options{Reference: reference()})
	assert.True(t, errors.Is(err, errors.ErrNoQoI))
	assert.True(t, errors.As(err, &ce))

	_, err = Resolve("", Options{})
	assert.True(t, errors.Is(err, errors.ErrNoQoI))

	_, err = Resolve("custom", Options{Target: linear})
	assert.True(t, errors.Is(err, errors.ErrNoQoI))

	_, err = Resolve("ndcg", Options{Target: linear})
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "ndcg", ce.Value)

	_, err = Resolve("rank", Options{Target: linear})
	assert.True(t, errors.As(err, &ce))
}

func TestCustom(t *testing.T) {
	fn := func(rows, _ *mat.Dense) ([]float64, error) {
		n, _ := rows.Dims()
		return make([]float64, n), nil
	}
	q, err := Resolve("", Options{Payoff: fn})
	require.NoError(t, err)
	assert.Equal(t, NameCustom, q.Name())

	out, err := q.Payoffs(reference(), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, out)
}

func TestRankingFunctionFailures(t *testing.T) {
	var ce *errors.ComputationError

	short := func(X *mat.Dense) ([]float64, error) { return []float64{1}, nil }
	_, err := NewScore(short).Payoffs(reference(), nil)
	assert.True(t, errors.As(err, &ce))

	nan := model.FromFunc(func([]float64) float64 { return math.NaN() })
	_, err = NewScore(nan).Payoffs(reference(), nil)
	assert.True(t, errors.As(err, &ce))

	_, err = NewRank(nan, reference())
	assert.True(t, errors.As(err, &ce))

	panicky := func(X *mat.Dense) ([]float64, error) { panic("boom") }
	_, err = NewScore(panicky).Payoffs(reference(), nil)
	var pe *errors.PanicError
	assert.True(t, errors.As(err, &pe))

	badCustom := NewCustom(func(rows, _ *mat.Dense) ([]float64, error) { return []float64{math.Inf(1)}, nil })
	_, err = badCustom.Payoffs(mat.NewDense(1, 1, nil), nil)
	assert.True(t, errors.As(err, &ce))
}
