// Package measure estimates the influence of one feature on the QoI of one
// row under a value-allocation rule: set, marginal, shapley or banzhaf.
package measure

import (
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/coalition"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/qoi"
)

// Names of the built-in measures.
const (
	NameSet      = "set"
	NameMarginal = "marginal"
	NameShapley  = "shapley"
	NameBanzhaf  = "banzhaf"
)

// DefaultCoalitionSamples bounds the coalitions evaluated per size
// (shapley) or in total (banzhaf) when Params leaves it unset.
const DefaultCoalitionSamples = 32

// Params is the input of one influence estimate.
type Params struct {
	// Row is the row being explained.
	Row []float64
	// Target is the column whose influence is estimated.
	Target int
	// HeldFixed columns keep the row's values in every perturbation.
	HeldFixed []int
	// Reference supplies replacement values and is passed to the QoI.
	Reference *mat.Dense
	QoI       qoi.QoI
	// SampleSize is the number of perturbed rows per batch.
	SampleSize int
	// CoalitionSize is the largest coalition considered.
	CoalitionSize int
	// CoalitionSamples bounds how many coalitions are evaluated.
	CoalitionSamples int
	Replace          bool
	Rand             *rand.Rand
}

// Measure computes one feature's influence on one row.
type Measure interface {
	Name() string
	Compute(p Params) (float64, error)
}

// Resolve returns the measure called name. "banzhaff" is accepted as an
// alternative spelling of "banzhaf".
func Resolve(name string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameSet:
		return Set{}, nil
	case NameMarginal:
		return Marginal{}, nil
	case NameShapley, "":
		return Shapley{}, nil
	case NameBanzhaf, "banzhaff":
		return Banzhaf{}, nil
	}
	return nil, errors.NewConfigurationError("measure", "unknown measure", name)
}

func (p Params) validate() error {
	if p.QoI == nil {
		return errors.Mark(errors.NewConfigurationError("qoi", "a QoI is required", nil), errors.ErrNoQoI)
	}
	if p.Reference == nil {
		return errors.NewConfigurationError("X", "a reference set is required", nil)
	}
	if p.Rand == nil {
		return errors.NewConfigurationError("random_state", "a random generator is required", nil)
	}
	_, d := p.Reference.Dims()
	if len(p.Row) != d {
		return errors.NewDimensionError("measure", d, len(p.Row), 1)
	}
	if p.Target < 0 || p.Target >= d {
		return errors.NewConfigurationError("feature", "feature index out of range", p.Target)
	}
	if p.CoalitionSize < 0 || p.CoalitionSize > d-1 {
		return errors.NewConfigurationError("coalition_size", "must be between 0 and the number of features - 1", p.CoalitionSize)
	}
	if p.CoalitionSamples < 0 {
		return errors.NewConfigurationError("coalition_samples", "must not be negative", p.CoalitionSamples)
	}
	return nil
}

func (p Params) coalitionSamples() int {
	if p.CoalitionSamples == 0 {
		return DefaultCoalitionSamples
	}
	return p.CoalitionSamples
}

// contribution is the payoff difference between fixing coalition ∪ {target}
// and fixing coalition alone, averaged over draws.
func contribution(p Params, coalitionIdx []int, draws *mat.Dense) (float64, error) {
	with, without := coalition.Pair(p.Row, coalitionIdx, p.Target, draws)
	a, err := qoi.Mean(p.QoI, with, p.Reference)
	if err != nil {
		return 0, err
	}
	b, err := qoi.Mean(p.QoI, without, p.Reference)
	if err != nil {
		return 0, err
	}
	return a - b, nil
}

// prepare validates p and draws the shared perturbation batch.
func prepare(p Params) ([]int, *mat.Dense, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}
	_, d := p.Reference.Dims()
	candidates, err := coalition.Candidates(d, p.Target, p.HeldFixed)
	if err != nil {
		return nil, nil, err
	}
	draws, err := coalition.Draws(p.Reference, p.SampleSize, p.Replace, p.Rand)
	if err != nil {
		return nil, nil, err
	}
	return candidates, draws, nil
}

func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
