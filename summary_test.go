package sharp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

func TestSummarize(t *testing.T) {
	M := mat.NewDense(4, 2, []float64{
		1, -4,
		2, 0,
		3, 4,
		4, -8,
	})
	got, err := Summarize(M, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, "a", a.Feature)
	assert.InDelta(t, 2.5, a.Mean, 1e-12)
	assert.InDelta(t, 2.5, a.MeanAbs, 1e-12)
	assert.InDelta(t, 2.5, a.Median, 1e-12)
	assert.Equal(t, 1.0, a.Min)
	assert.Equal(t, 4.0, a.Max)
	assert.Equal(t, 1.0, a.Q25)
	assert.Equal(t, 3.0, a.Q75)

	b := got[1]
	assert.InDelta(t, -2.0, b.Mean, 1e-12)
	assert.InDelta(t, 4.0, b.MeanAbs, 1e-12)

	ranked := ByImportance(got)
	assert.Equal(t, "b", ranked[0].Feature)
	assert.Equal(t, "a", got[0].Feature)
}

func TestSummarizeDefaultsAndErrors(t *testing.T) {
	got, err := Summarize(mat.NewDense(1, 2, []float64{1, 2}), nil)
	require.NoError(t, err)
	assert.Equal(t, "0", got[0].Feature)
	assert.Equal(t, 2.0, got[1].Q75)

	_, err = Summarize(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = Summarize(mat.NewDense(2, 2, nil), []string{"x"})
	assert.Error(t, err)
}
