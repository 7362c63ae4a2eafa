// Package log defines standard attribute keys for attribution runs.
//
// Keys follow a hierarchical naming convention ("data.samples",
// "sharp.measure") so that log records can be filtered and aggregated.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the component type emitting the record.
	// Examples: "Explainer", "Session"
	ModelNameKey = "model.name"

	// SessionIDKey identifies one fitted session.
	SessionIDKey = "session.id"

	// OperationKey specifies the operation being performed.
	// Standard values: see the Operation* constants below.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "qoi", "measure", "parallel"
	ComponentKey = "ml.component"
)

// Data Shape
const (
	// SamplesKey indicates the number of rows being explained.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features per row.
	FeaturesKey = "data.features"

	// ReferenceSizeKey indicates the number of rows in the reference set.
	ReferenceSizeKey = "data.reference_size"

	// PairsKey indicates the number of row pairs in a pairwise run.
	PairsKey = "data.pairs"
)

// Attribution Configuration
const (
	QoIKey              = "sharp.qoi"
	MeasureKey          = "sharp.measure"
	SampleSizeKey       = "sharp.sample_size"
	CoalitionSizeKey    = "sharp.coalition_size"
	CoalitionSamplesKey = "sharp.coalition_samples"
	ReplaceKey          = "sharp.replace"
	NJobsKey            = "sharp.n_jobs"

	// RandomSeedKey records the base seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Progress and Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// TaskKey is the positional index of a parallel task.
	TaskKey = "task.index"

	// CompletedKey and TotalKey describe progress of a parallel map.
	CompletedKey = "task.completed"
	TotalKey     = "task.total"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard operation names.
const (
	OperationFit         = "fit"
	OperationIndividual  = "individual"
	OperationFeature     = "feature"
	OperationAll         = "all"
	OperationPairwise    = "pairwise"
	OperationPairwiseSet = "pairwise_set"
)
