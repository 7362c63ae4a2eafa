// Package sharp explains rankings with Shapley values.
//
// SHARP attributes an outcome of a ranking procedure to the features of the
// ranked items. The outcome, the quantity of interest (QoI), is one of an
// item's score, its rank, its membership in the top k, or its pairwise
// preference over other items. Influences are estimated by perturbing
// coalitions of features with values drawn from a reference dataset and
// combining the payoff differences under a value-allocation rule: set,
// marginal, shapley or banzhaf.
//
// # Quick Start
//
//	rank, _ := ranker.NewLinear([]float64{2, 0, 1}, 0)
//
//	explainer, err := sharp.New(
//	    sharp.WithQoI("rank"),
//	    sharp.WithTargetFunction(rank.Func()),
//	    sharp.WithMeasure("shapley"),
//	    sharp.WithRandomState(42),
//	    sharp.WithNJobs(-1),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	session, err := explainer.Fit(ctx, X, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Influence of every feature on the rank of row 0.
//	row, err := session.Individual(ctx, sharp.Row(0), sharp.Overrides{})
//
//	// Influence matrix over all rows.
//	matrix, err := session.All(ctx, sharp.Overrides{})
//
// # Packages
//
//   - qoi: quantities of interest over a ranking function
//   - coalition: perturbations and coalition enumeration/sampling
//   - measure: set, marginal, shapley and banzhaf estimators
//   - ranker: reference ranking functions (weighted sum, least squares)
//   - core/dataset: reference tables, feature resolution, CSV/XLSX loading
//   - core/parallel: positional parallel map with progress reporting
//   - core/random: per-task deterministic sub-seeding
//   - pkg/errors, pkg/log: structured errors and logging
//
// # Reproducibility
//
// A Session never shares a generator between tasks. Every task derives its
// own generator from the base seed and its position (feature, row, pair),
// so a fixed RandomState yields identical results for any NJobs.
package sharp
