package sharp

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/sharp/core/model"
	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/pkg/log"
	"github.com/YuminosukeSato/sharp/qoi"
)

// Config holds the settings of an Explainer. The zero value of every
// pointer field means "derive from the data".
type Config struct {
	// QoI names the quantity of interest. Empty resolves to "rank", or to
	// "custom" when a payoff function is supplied.
	QoI string `koanf:"qoi" validate:"omitempty,oneof=score rank top-k topk pairwise custom"`

	// Measure names the value-allocation rule.
	Measure string `koanf:"measure" validate:"required,oneof=set marginal shapley banzhaf banzhaff"`

	// SampleSize is the number of perturbations per estimate. nil uses the
	// reference set size.
	SampleSize *int `koanf:"sample_size" validate:"omitempty,gte=1"`

	// CoalitionSize is the largest coalition considered. nil uses the
	// number of features - 1.
	CoalitionSize *int `koanf:"coalition_size" validate:"omitempty,gte=0"`

	// CoalitionSamples bounds the coalitions evaluated per size (shapley)
	// or in total (banzhaf). 0 uses measure.DefaultCoalitionSamples.
	CoalitionSamples int `koanf:"coalition_samples" validate:"gte=0"`

	// TopK is the cutoff of the top-k QoI. 0 uses qoi.DefaultK.
	TopK int `koanf:"top_k" validate:"gte=0"`

	// Replace samples reference values with replacement.
	Replace bool `koanf:"replace"`

	// RandomState seeds every draw. nil draws a seed at Fit.
	RandomState *int64 `koanf:"random_state"`

	// NJobs is the degree of parallelism: 1 sequential, -1 all CPUs.
	NJobs int `koanf:"n_jobs"`

	// Verbose > 0 reports progress through the logger.
	Verbose int `koanf:"verbose" validate:"gte=0"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Measure: "shapley",
		NJobs:   1,
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks c and reports the first invalid field as a
// ConfigurationError.
func (c Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "sharp: config validation")
	}
	fe := fieldErrs[0]
	reason := "failed '" + fe.Tag() + "' validation"
	if fe.Param() != "" {
		reason = "must satisfy " + fe.Tag() + "=" + fe.Param()
	}
	return errors.NewConfigurationError(fe.Field(), reason, fe.Value())
}

// Option configures an Explainer.
type Option func(*Explainer)

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(e *Explainer) {
		e.cfg = cfg
	}
}

// WithQoI selects the quantity of interest by name.
func WithQoI(name string) Option {
	return func(e *Explainer) {
		e.cfg.QoI = name
	}
}

// WithTargetFunction sets the ranking function explained by named QoIs.
func WithTargetFunction(fn model.RankingFunc) Option {
	return func(e *Explainer) {
		e.target = fn
	}
}

// WithPayoff sets a fully custom payoff function.
func WithPayoff(fn qoi.PayoffFunc) Option {
	return func(e *Explainer) {
		e.payoff = fn
	}
}

// WithMeasure selects the value-allocation rule.
func WithMeasure(name string) Option {
	return func(e *Explainer) {
		e.cfg.Measure = name
	}
}

// WithSampleSize sets the number of perturbations per estimate.
func WithSampleSize(n int) Option {
	return func(e *Explainer) {
		e.cfg.SampleSize = &n
	}
}

// WithCoalitionSize sets the largest coalition considered.
func WithCoalitionSize(n int) Option {
	return func(e *Explainer) {
		e.cfg.CoalitionSize = &n
	}
}

// WithCoalitionSamples bounds the number of coalitions evaluated.
func WithCoalitionSamples(n int) Option {
	return func(e *Explainer) {
		e.cfg.CoalitionSamples = n
	}
}

// WithTopK sets the cutoff of the top-k QoI.
func WithTopK(k int) Option {
	return func(e *Explainer) {
		e.cfg.TopK = k
	}
}

// WithReplace enables sampling with replacement.
func WithReplace(replace bool) Option {
	return func(e *Explainer) {
		e.cfg.Replace = replace
	}
}

// WithRandomState fixes the seed.
func WithRandomState(seed int64) Option {
	return func(e *Explainer) {
		e.cfg.RandomState = &seed
	}
}

// WithNJobs は並列ジョブ数を設定 (1: 逐次, -1: 全CPU)
func WithNJobs(n int) Option {
	return func(e *Explainer) {
		e.cfg.NJobs = n
	}
}

// WithVerbose sets the verbosity level.
func WithVerbose(level int) Option {
	return func(e *Explainer) {
		e.cfg.Verbose = level
	}
}

// WithLogger sets the logger. The process default (log.GetLogger) is used
// otherwise.
func WithLogger(logger log.Logger) Option {
	return func(e *Explainer) {
		e.logger = logger
	}
}

// WithReference binds a reference dataset used by Fit when it is called
// without one.
func WithReference(X mat.Matrix, y []float64) Option {
	return func(e *Explainer) {
		e.refX = X
		e.refY = y
	}
}

// WithFeatureNames names the features positionally.
func WithFeatureNames(names ...string) Option {
	return func(e *Explainer) {
		e.names = append([]string(nil), names...)
	}
}
