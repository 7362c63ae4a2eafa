package sharp

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/core/dataset"
	"github.com/YuminosukeSato/sharp/core/random"
	"github.com/YuminosukeSato/sharp/measure"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/pkg/log"
	"github.com/YuminosukeSato/sharp/qoi"
)

// Session is the fitted state produced by Explainer.Fit. It is read-only
// and safe for concurrent use; per-call settings are passed as Overrides.
type Session struct {
	id      string
	cfg     Config
	data    *dataset.Dataset
	qoi     qoi.QoI
	measure measure.Measure
	source  random.Source
	logger  log.Logger
}

// ID identifies the session in log records.
func (s *Session) ID() string { return s.id }

// QoI returns the resolved quantity of interest.
func (s *Session) QoI() qoi.QoI { return s.qoi }

// Measure returns the resolved measure.
func (s *Session) Measure() measure.Measure { return s.measure }

// FeatureNames returns the resolved feature names.
func (s *Session) FeatureNames() []string {
	return append([]string(nil), s.data.Names()...)
}

// Reference returns the fitted reference dataset.
func (s *Session) Reference() *dataset.Dataset { return s.data }

// Seed returns the base seed every task generator is derived from.
func (s *Session) Seed() uint64 { return s.source.Seed() }

func (s *Session) check(method string) error {
	if s == nil || s.data == nil {
		return errors.NewNotFittedError("Explainer", method)
	}
	return nil
}

// features returns the fitted feature count.
func (s *Session) features() int {
	_, d := s.data.Dims()
	return d
}

// table validates an explicit table against the fitted feature count, or
// returns the fitted reference when X is nil.
func (s *Session) table(op string, X mat.Matrix, y []float64) (*mat.Dense, error) {
	if X == nil {
		return s.data.Matrix(), nil
	}
	xd, _, err := dataset.CheckInputs(X, y)
	if err != nil {
		return nil, err
	}
	if _, d := xd.Dims(); d != s.features() {
		return nil, errors.NewDimensionError(op, s.features(), d, 1)
	}
	return xd, nil
}
