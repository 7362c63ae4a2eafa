package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/core/random"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/qoi"
)

var weights = []float64{2, 0, -1, 0.5}

func linear(row []float64) float64 { return floats.Dot(weights, row) }

func reference() *mat.Dense {
	return mat.NewDense(6, 4, []float64{
		1, 5, 2, 0,
		3, 1, 4, 1,
		0, 2, 2, 3,
		2, 8, 1, 1,
		5, 0, 0, 2,
		4, 3, 6, 0,
	})
}

func params(m Measure, row []float64, target int) Params {
	ref := reference()
	_, d := ref.Dims()
	return Params{
		Row:           row,
		Target:        target,
		Reference:     ref,
		QoI:           qoi.NewScore(model.FromFunc(linear)),
		SampleSize:    6,
		CoalitionSize: d - 1,
		Rand:          random.New(7).Derive(target).Rand(),
	}
}

func influences(t *testing.T, m Measure, row []float64) []float64 {
	out := make([]float64, len(row))
	for j := range row {
		v, err := m.Compute(params(m, row, j))
		require.NoError(t, err)
		out[j] = v
	}
	return out
}

func TestShapleyEfficiency(t *testing.T) {
	row := []float64{3, 2, 5, 1}
	phi := influences(t, Shapley{}, row)

	ref := reference()
	n, _ := ref.Dims()
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = linear(ref.RawRowView(i))
	}
	want := linear(row) - stat.Mean(scores, nil)
	assert.InDelta(t, want, floats.Sum(phi), 1e-9)
}

func TestLinearScoreInfluence(t *testing.T) {
	// For an additive score every rule recovers w_j * (x_j - mean_j).
	row := []float64{3, 2, 5, 1}
	ref := reference()
	for _, m := range []Measure{Set{}, Marginal{}, Shapley{}, Banzhaf{}} {
		t.Run(m.Name(), func(t *testing.T) {
			phi := influences(t, m, row)
			for j := range row {
				want := weights[j] * (row[j] - stat.Mean(mat.Col(nil, j, ref), nil))
				assert.InDelta(t, want, phi[j], 1e-9, "feature %d", j)
			}
		})
	}
}

func TestDummyFeature(t *testing.T) {
	row := []float64{3, 2, 5, 1}
	for _, m := range []Measure{Set{}, Marginal{}, Shapley{}, Banzhaf{}} {
		t.Run(m.Name(), func(t *testing.T) {
			p := params(m, row, 1)
			var err error
			p.QoI, err = qoi.NewRank(model.FromFunc(linear), p.Reference)
			require.NoError(t, err)

			v, err := m.Compute(p)
			require.NoError(t, err)
			assert.Zero(t, v)
		})
	}
}

func TestSymmetry(t *testing.T) {
	ref := mat.NewDense(4, 2, []float64{
		1, 4,
		2, 3,
		3, 2,
		4, 1,
	})
	sum := model.FromFunc(func(r []float64) float64 { return r[0] + r[1] })
	q, err := qoi.NewRank(sum, ref)
	require.NoError(t, err)

	row := []float64{3, 3}
	phi := make([]float64, 2)
	for j := range phi {
		phi[j], err = Shapley{}.Compute(Params{
			Row: row, Target: j, Reference: ref, QoI: qoi.NewScore(sum),
			SampleSize: 4, CoalitionSize: 1, Rand: random.New(1).Derive(j).Rand(),
		})
		require.NoError(t, err)
	}
	assert.InDelta(t, phi[0], phi[1], 1e-12)

	// The rank QoI only sees the score, which is symmetric in both columns.
	_, err = Shapley{}.Compute(Params{
		Row: row, Target: 0, Reference: ref, QoI: q,
		SampleSize: 4, CoalitionSize: 1, Rand: random.New(1).Rand(),
	})
	assert.NoError(t, err)
}

func TestMarginalUsesHeldFixed(t *testing.T) {
	// score = x0 * x1 makes the contribution depend on the coalition.
	prod := qoi.NewScore(model.FromFunc(func(r []float64) float64 { return r[0] * r[1] }))
	ref := mat.NewDense(2, 2, []float64{0, 1, 2, 1})
	row := []float64{4, 4}

	p := Params{Row: row, Target: 0, Reference: ref, QoI: prod, SampleSize: 2, CoalitionSize: 1, Rand: random.New(1).Rand()}
	alone, err := Marginal{}.Compute(p)
	require.NoError(t, err)
	// mean(4*x1) - mean(x0*x1) = 4 - 1
	assert.InDelta(t, 3.0, alone, 1e-12)

	p.HeldFixed = []int{1}
	p.Rand = random.New(1).Rand()
	withOther, err := Marginal{}.Compute(p)
	require.NoError(t, err)
	// 4*4 - mean(x0*4) = 16 - 4
	assert.InDelta(t, 12.0, withOther, 1e-12)

	// Set fixes every other feature, which here equals holding x1 fixed.
	p.HeldFixed = nil
	p.Rand = random.New(1).Rand()
	set, err := Set{}.Compute(p)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, set, 1e-12)

	// Shapley averages the two.
	p.Rand = random.New(1).Rand()
	sh, err := Shapley{}.Compute(p)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, sh, 1e-12)
}

func TestDeterministic(t *testing.T) {
	row := []float64{3, 2, 5, 1}
	for _, m := range []Measure{Shapley{}, Banzhaf{}} {
		p := params(m, row, 0)
		p.Replace = true
		p.SampleSize = 20
		p.CoalitionSamples = 2

		p.Rand = random.New(11).Rand()
		a, err := m.Compute(p)
		require.NoError(t, err)
		p.Rand = random.New(11).Rand()
		b, err := m.Compute(p)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestResolve(t *testing.T) {
	tests := map[string]string{
		"set":      NameSet,
		"marginal": NameMarginal,
		"shapley":  NameShapley,
		"":         NameShapley,
		"banzhaf":  NameBanzhaf,
		"banzhaff": NameBanzhaf,
		"Shapley":  NameShapley,
	}
	for in, want := range tests {
		m, err := Resolve(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, m.Name())
	}

	_, err := Resolve("owen")
	var ce *errors.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}

func TestComputeValidation(t *testing.T) {
	row := []float64{3, 2, 5, 1}
	var ce *errors.ConfigurationError

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"coalition size too large", func(p *Params) { p.CoalitionSize = 4 }},
		{"negative coalition size", func(p *Params) { p.CoalitionSize = -1 }},
		{"target out of range", func(p *Params) { p.Target = 4 }},
		{"sample size exceeds reference", func(p *Params) { p.SampleSize = 7 }},
		{"row width mismatch", func(p *Params) { p.Row = []float64{1, 2} }},
		{"held fixed contains target", func(p *Params) { p.HeldFixed = []int{0} }},
		{"no qoi", func(p *Params) { p.QoI = nil }},
		{"no generator", func(p *Params) { p.Rand = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(Shapley{}, row, 0)
			tt.mutate(&p)
			_, err := Shapley{}.Compute(p)
			require.Error(t, err)
			assert.True(t, errors.As(err, &ce))
		})
	}
}
