// Package qoi turns a ranking function into the payoff whose value is
// attributed to features: an item's score, its rank, its membership in the
// top k, or its pairwise preference against a comparison set.
//
// Every QoI is read-only after construction and safe for concurrent use.
package qoi

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Names of the built-in quantities of interest.
const (
	NameScore    = "score"
	NameRank     = "rank"
	NameTopK     = "top-k"
	NamePairwise = "pairwise"
	NameCustom   = "custom"
)

// DefaultK is the cutoff used by the top-k QoI when none is given.
const DefaultK = 10

// QoI evaluates a payoff for each row of rows.
//
// reference is the set the rows are perturbed against at evaluation time.
// Only the pairwise QoI compares against it; rank and top-k compare against
// the ranking reference bound at construction.
type QoI interface {
	Name() string
	Payoffs(rows, reference *mat.Dense) ([]float64, error)
}

// PayoffFunc is a fully custom payoff.
type PayoffFunc func(rows, reference *mat.Dense) ([]float64, error)

// Options carries what Resolve may need to build a QoI.
type Options struct {
	// Target is the ranking function. Required by every named QoI.
	Target model.RankingFunc
	// Payoff is a custom payoff, used by the "custom" QoI.
	Payoff PayoffFunc
	// Reference is the ranking reference for rank and top-k.
	Reference *mat.Dense
	// K is the top-k cutoff. Zero means DefaultK.
	K int
}

// Resolve builds the QoI called name. An empty name resolves to "custom"
// when a payoff function is given and to "rank" otherwise.
func Resolve(name string, opts Options) (QoI, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = NameRank
		if opts.Payoff != nil {
			name = NameCustom
		}
	}

	if name == NameCustom {
		if opts.Payoff == nil {
			return nil, errors.Mark(
				errors.NewConfigurationError("qoi", "custom QoI requires a payoff function", nil),
				errors.ErrNoQoI)
		}
		return NewCustom(opts.Payoff), nil
	}

	switch name {
	case NameScore, NameRank, NameTopK, "topk", NamePairwise:
	default:
		return nil, errors.NewConfigurationError("qoi", "unknown quantity of interest", name)
	}
	if opts.Target == nil {
		return nil, errors.Mark(
			errors.NewConfigurationError("target_function", "named QoI requires a ranking function", name),
			errors.ErrNoQoI)
	}

	switch name {
	case NameScore:
		return NewScore(opts.Target), nil
	case NameRank:
		return NewRank(opts.Target, opts.Reference)
	case NamePairwise:
		return NewPairwise(opts.Target), nil
	default:
		k := opts.K
		if k == 0 {
			k = DefaultK
		}
		return NewTopK(opts.Target, opts.Reference, k)
	}
}

// Mean returns the average payoff of q over rows.
func Mean(q QoI, rows, reference *mat.Dense) (float64, error) {
	payoffs, err := q.Payoffs(rows, reference)
	if err != nil {
		return 0, err
	}
	return stat.Mean(payoffs, nil), nil
}

// Value returns the payoff of a single row.
func Value(q QoI, row []float64, reference *mat.Dense) (float64, error) {
	payoffs, err := q.Payoffs(mat.NewDense(1, len(row), append([]float64(nil), row...)), reference)
	if err != nil {
		return 0, err
	}
	return payoffs[0], nil
}

// Ranks returns the 1-based rank of every score, highest first. Equal
// scores are ordered by position.
func Ranks(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	ranks := make([]int, len(scores))
	for pos, i := range order {
		ranks[i] = pos + 1
	}
	return ranks
}

// scorer wraps a ranking function with the checks every payoff needs.
type scorer struct {
	op     string
	target model.RankingFunc
}

func (s scorer) scores(rows *mat.Dense) (out []float64, err error) {
	defer errors.Recover(&err, s.op)

	out, err = s.target(rows)
	if err != nil {
		return nil, errors.Wrap(err, s.op)
	}
	n, _ := rows.Dims()
	if err := errors.CheckLength(s.op, n, len(out)); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability(s.op, out); err != nil {
		return nil, err
	}
	return out, nil
}
