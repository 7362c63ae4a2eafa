package qoi

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Score is the ranking function's raw score.
type Score struct {
	scorer
}

// NewScore returns the score QoI.
func NewScore(target model.RankingFunc) *Score {
	return &Score{scorer{op: "qoi.Score", target: target}}
}

// Name implements QoI.
func (q *Score) Name() string { return NameScore }

// Payoffs implements QoI.
func (q *Score) Payoffs(rows, _ *mat.Dense) ([]float64, error) {
	return q.scores(rows)
}

// Rank is the position a row would take in the ranking reference:
// 1 + the number of reference rows scoring strictly higher. A row tied
// with reference rows is placed ahead of them.
type Rank struct {
	scorer
	desc []float64
}

// NewRank scores reference once and binds it as the ranking reference.
func NewRank(target model.RankingFunc, reference *mat.Dense) (*Rank, error) {
	return newRank("qoi.Rank", target, reference)
}

func newRank(op string, target model.RankingFunc, reference *mat.Dense) (*Rank, error) {
	if reference == nil {
		return nil, errors.NewConfigurationError("X", "a ranking reference is required", nil)
	}
	s := scorer{op: op, target: target}
	ref, err := s.scores(reference)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ref)))
	return &Rank{scorer: s, desc: ref}, nil
}

// Name implements QoI.
func (q *Rank) Name() string { return NameRank }

// Payoffs implements QoI.
func (q *Rank) Payoffs(rows, _ *mat.Dense) ([]float64, error) {
	scores, err := q.scores(rows)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = float64(q.position(s))
	}
	return out, nil
}

func (q *Rank) position(score float64) int {
	above := sort.Search(len(q.desc), func(i int) bool { return q.desc[i] <= score })
	return above + 1
}

// TopK is 1 when a row's rank is within the first K positions, else 0.
type TopK struct {
	rank *Rank
	k    int
}

// NewTopK returns the top-k QoI against reference.
func NewTopK(target model.RankingFunc, reference *mat.Dense, k int) (*TopK, error) {
	if k < 1 {
		return nil, errors.NewConfigurationError("k", "top-k cutoff must be positive", k)
	}
	r, err := newRank("qoi.TopK", target, reference)
	if err != nil {
		return nil, err
	}
	return &TopK{rank: r, k: k}, nil
}

// Name implements QoI.
func (q *TopK) Name() string { return NameTopK }

// K returns the cutoff.
func (q *TopK) K() int { return q.k }

// Payoffs implements QoI.
func (q *TopK) Payoffs(rows, _ *mat.Dense) ([]float64, error) {
	scores, err := q.rank.scores(rows)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		if q.rank.position(s) <= q.k {
			out[i] = 1
		}
	}
	return out, nil
}

// Pairwise compares a row against every row of the comparison set:
// +1 when it scores strictly higher, -1 when lower, 0 on a tie. The payoff
// is the mean outcome over the set.
type Pairwise struct {
	scorer
}

// NewPairwise returns the pairwise preference QoI.
func NewPairwise(target model.RankingFunc) *Pairwise {
	return &Pairwise{scorer{op: "qoi.Pairwise", target: target}}
}

// Name implements QoI.
func (q *Pairwise) Name() string { return NamePairwise }

// Payoffs implements QoI.
func (q *Pairwise) Payoffs(rows, reference *mat.Dense) ([]float64, error) {
	if reference == nil {
		return nil, errors.NewConfigurationError("X", "pairwise QoI requires a comparison set", nil)
	}
	scores, err := q.scores(rows)
	if err != nil {
		return nil, err
	}
	others, err := q.scores(reference)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		var sum float64
		for _, o := range others {
			switch {
			case s > o:
				sum++
			case s < o:
				sum--
			}
		}
		out[i] = sum / float64(len(others))
	}
	return out, nil
}

// Custom wraps an externally supplied payoff function.
type Custom struct {
	fn PayoffFunc
}

// NewCustom returns a QoI backed by fn.
func NewCustom(fn PayoffFunc) *Custom {
	return &Custom{fn: fn}
}

// Name implements QoI.
func (q *Custom) Name() string { return NameCustom }

// Payoffs implements QoI.
func (q *Custom) Payoffs(rows, reference *mat.Dense) (out []float64, err error) {
	defer errors.Recover(&err, "qoi.Custom")

	out, err = q.fn(rows, reference)
	if err != nil {
		return nil, errors.Wrap(err, "qoi.Custom")
	}
	n, _ := rows.Dims()
	if err := errors.CheckLength("qoi.Custom", n, len(out)); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability("qoi.Custom", out); err != nil {
		return nil, err
	}
	return out, nil
}
