package sharp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/core/dataset"
	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/core/random"
	"github.com/YuminosukeSato/sharp/measure"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/pkg/log"
	"github.com/YuminosukeSato/sharp/qoi"
)

// Explainer is an immutable attribution configuration. Fit binds it to a
// reference dataset and returns a Session that computes influences.
type Explainer struct {
	cfg    Config
	target model.RankingFunc
	payoff qoi.PayoffFunc
	logger log.Logger
	names  []string
	refX   mat.Matrix
	refY   []float64
}

// New returns an Explainer with DefaultConfig modified by opts.
func New(opts ...Option) (*Explainer, error) {
	e := &Explainer{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if e.logger == nil {
		e.logger = log.GetLogger()
	}
	return e, nil
}

// Config returns a copy of the configuration.
func (e *Explainer) Config() Config {
	return e.cfg
}

// Fit validates the reference dataset, resolves the QoI, the measure and
// the feature names, and fixes the random source. X may be nil when a
// reference was bound with WithReference.
func (e *Explainer) Fit(ctx context.Context, X mat.Matrix, y []float64) (*Session, error) {
	start := time.Now()
	logger := e.logger.With(log.ModelNameKey, "Explainer", log.OperationKey, log.OperationFit)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if X == nil {
		X, y = e.refX, e.refY
	}
	if X == nil {
		return nil, errors.Mark(errors.NewValidationError("X", "a reference dataset is required", nil), errors.ErrEmptyData)
	}

	data, err := dataset.New(X, y, e.names)
	if err != nil {
		logger.Error("Reference validation failed", err)
		return nil, err
	}
	n, d := data.Dims()

	if cs := e.cfg.CoalitionSize; cs != nil && *cs > d-1 {
		return nil, errors.NewConfigurationError("coalition_size", "must be between 0 and the number of features - 1", *cs)
	}

	q, err := qoi.Resolve(e.cfg.QoI, qoi.Options{
		Target:    e.target,
		Payoff:    e.payoff,
		Reference: data.Matrix(),
		K:         e.cfg.TopK,
	})
	if err != nil {
		logger.Error("QoI resolution failed", err)
		return nil, err
	}
	m, err := measure.Resolve(e.cfg.Measure)
	if err != nil {
		return nil, err
	}

	source := random.FromState(e.cfg.RandomState)
	s := &Session{
		id:      uuid.NewString(),
		cfg:     e.cfg,
		data:    data,
		qoi:     q,
		measure: m,
		source:  source,
	}
	s.logger = e.logger.With(log.ModelNameKey, "Explainer", log.SessionIDKey, s.id)
	s.logger.Info("Explainer fitted",
		log.OperationKey, log.OperationFit,
		log.ReferenceSizeKey, n,
		log.FeaturesKey, d,
		log.QoIKey, q.Name(),
		log.MeasureKey, m.Name(),
		log.NJobsKey, e.cfg.NJobs,
		log.RandomSeedKey, source.Seed(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return s, nil
}
