package sharp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// Overrides are per-call settings. Every unset field falls back to the
// session configuration; nothing here mutates the session.
type Overrides struct {
	// X is the dataset of the call. Individual and Feature use it as the
	// reference set, All explains its rows, and Pairwise resolves indexed
	// samples against it. nil uses the fitted reference.
	X mat.Matrix
	Y []float64

	// Reference replaces the fitted reference set in All.
	Reference mat.Matrix

	SampleSize    *int
	CoalitionSize *int

	// HeldFixed lists feature indices fixed in every perturbation. The
	// marginal measure uses it as its coalition.
	HeldFixed []int

	Verbose *int
}

// Int returns a pointer to v, for Overrides fields.
func Int(v int) *int {
	return &v
}

// settings are the resolved knobs of one call.
type settings struct {
	sampleSize    int
	coalitionSize int
	heldFixed     []int
	verbose       int
}

func (s *Session) settings(ov Overrides, reference *mat.Dense) (settings, error) {
	n, d := reference.Dims()
	st := settings{
		sampleSize:    n,
		coalitionSize: d - 1,
		heldFixed:     ov.HeldFixed,
		verbose:       s.cfg.Verbose,
	}
	switch {
	case ov.SampleSize != nil:
		st.sampleSize = *ov.SampleSize
	case s.cfg.SampleSize != nil:
		st.sampleSize = *s.cfg.SampleSize
	}
	switch {
	case ov.CoalitionSize != nil:
		st.coalitionSize = *ov.CoalitionSize
	case s.cfg.CoalitionSize != nil:
		st.coalitionSize = *s.cfg.CoalitionSize
	}
	if ov.Verbose != nil {
		st.verbose = *ov.Verbose
	}

	if st.sampleSize < 1 {
		return st, errors.NewConfigurationError("sample_size", "must be at least 1", st.sampleSize)
	}
	if !s.cfg.Replace && st.sampleSize > n {
		return st, errors.NewConfigurationError("sample_size",
			"cannot exceed the reference size when sampling without replacement", st.sampleSize)
	}
	if st.coalitionSize < 0 || st.coalitionSize > d-1 {
		return st, errors.NewConfigurationError("coalition_size",
			"must be between 0 and the number of features - 1", st.coalitionSize)
	}
	seen := make(map[int]struct{}, len(st.heldFixed))
	for _, j := range st.heldFixed {
		if j < 0 || j >= d {
			return st, errors.NewConfigurationError("held_fixed", "feature index out of range", j)
		}
		if _, dup := seen[j]; dup {
			return st, errors.NewConfigurationError("held_fixed", "duplicate feature index", j)
		}
		seen[j] = struct{}{}
	}
	return st, nil
}
