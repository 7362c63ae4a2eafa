package measure

import (
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sharp/coalition"
)

// Set fixes every feature except the target, so the influence is the
// payoff of the row minus the expected payoff when only the target is
// replaced.
type Set struct{}

// Name implements Measure.
func (Set) Name() string { return NameSet }

// Compute implements Measure.
func (Set) Compute(p Params) (float64, error) {
	candidates, draws, err := prepare(p)
	if err != nil {
		return 0, err
	}
	return contribution(p, union(p.HeldFixed, candidates), draws)
}

// Marginal is the contribution of the target to the held-fixed coalition.
type Marginal struct{}

// Name implements Measure.
func (Marginal) Name() string { return NameMarginal }

// Compute implements Measure.
func (Marginal) Compute(p Params) (float64, error) {
	_, draws, err := prepare(p)
	if err != nil {
		return 0, err
	}
	return contribution(p, p.HeldFixed, draws)
}

// Shapley averages marginal contributions within each coalition size
// 0..CoalitionSize and then across sizes with equal weight. With every size
// enumerated this is the exact Shapley weighting s!(m-s)!/(m+1)!.
type Shapley struct{}

// Name implements Measure.
func (Shapley) Name() string { return NameShapley }

// Compute implements Measure.
func (Shapley) Compute(p Params) (float64, error) {
	candidates, draws, err := prepare(p)
	if err != nil {
		return 0, err
	}
	maxSize := min(p.CoalitionSize, len(candidates))

	strata := make([]float64, 0, maxSize+1)
	for s := 0; s <= maxSize; s++ {
		coalitions := coalition.Sample(candidates, s, p.coalitionSamples(), p.Rand)
		deltas := make([]float64, len(coalitions))
		for i, c := range coalitions {
			deltas[i], err = contribution(p, union(p.HeldFixed, c), draws)
			if err != nil {
				return 0, err
			}
		}
		strata = append(strata, stat.Mean(deltas, nil))
	}
	return stat.Mean(strata, nil), nil
}

// Banzhaf averages marginal contributions over coalitions of at most
// CoalitionSize features, every coalition weighted equally.
type Banzhaf struct{}

// Name implements Measure.
func (Banzhaf) Name() string { return NameBanzhaf }

// Compute implements Measure.
func (Banzhaf) Compute(p Params) (float64, error) {
	candidates, draws, err := prepare(p)
	if err != nil {
		return 0, err
	}
	coalitions := coalition.SampleUniform(candidates, p.CoalitionSize, p.coalitionSamples(), p.Rand)
	deltas := make([]float64, len(coalitions))
	for i, c := range coalitions {
		deltas[i], err = contribution(p, union(p.HeldFixed, c), draws)
		if err != nil {
			return 0, err
		}
	}
	return stat.Mean(deltas, nil), nil
}
