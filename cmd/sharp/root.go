package main

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/sharp/pkg/errors"
	"github.com/YuminosukeSato/sharp/pkg/log"
)

var version = "dev"

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	envFile    string
	flags      flagValues

	cfg    *Config
	logger log.Logger
	stdout io.Writer
}

// flagValues mirror the configuration keys that can be set on the command
// line. A flag only overrides the configuration when it was given.
type flagValues struct {
	data          string
	label         string
	sheet         string
	weights       string
	qoi           string
	measure       string
	sampleSize    int
	coalitionSize int
	coalitions    int
	topK          int
	replace       bool
	seed          int64
	nJobs         int
	verbose       int
	logLevel      string
	output        string
}

func newRootCommand() *cobra.Command {
	a := &app{stdout: os.Stdout}

	cmd := &cobra.Command{
		Use:   "sharp",
		Short: "SHARP - Shapley values for rankings and preferences",
		Long: `SHARP explains a ranking of tabular data.

It attributes an item's score, rank, top-k membership or pairwise preference
to its features, using set, marginal, Shapley or Banzhaf values estimated
from perturbations against a reference dataset.`,
		Version:      version,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file (default: $SHARP_CONFIG or ./sharp.yaml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading SHARP_ variables")
	pf.StringVarP(&a.flags.data, "data", "d", "", "reference dataset (.csv or .xlsx)")
	pf.StringVar(&a.flags.label, "label", "", "label column in the dataset")
	pf.StringVar(&a.flags.sheet, "sheet", "", "worksheet of an .xlsx dataset")
	pf.StringVarP(&a.flags.weights, "weights", "w", "", "JSON file with linear ranker weights")
	pf.StringVar(&a.flags.qoi, "qoi", "", "quantity of interest: score, rank, top-k, pairwise")
	pf.StringVar(&a.flags.measure, "measure", "", "measure: set, marginal, shapley, banzhaf")
	pf.IntVar(&a.flags.sampleSize, "sample-size", 0, "perturbations per estimate (default: reference size)")
	pf.IntVar(&a.flags.coalitionSize, "coalition-size", 0, "largest coalition (default: features - 1)")
	pf.IntVar(&a.flags.coalitions, "coalition-samples", 0, "coalitions evaluated per size")
	pf.IntVar(&a.flags.topK, "top-k", 0, "cutoff of the top-k QoI")
	pf.BoolVar(&a.flags.replace, "replace", false, "sample reference values with replacement")
	pf.Int64Var(&a.flags.seed, "seed", 0, "random seed")
	pf.IntVarP(&a.flags.nJobs, "n-jobs", "j", 1, "parallel workers (-1: all CPUs)")
	pf.CountVarP(&a.flags.verbose, "verbose", "v", "report progress")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&a.flags.output, "output", "o", "", "result file (default: stdout)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return a.setup(cmd)
	}

	cmd.AddCommand(newIndividualCommand(a))
	cmd.AddCommand(newFeatureCommand(a))
	cmd.AddCommand(newAllCommand(a))
	cmd.AddCommand(newPairwiseCommand(a))
	cmd.AddCommand(newPairwiseSetCommand(a))
	cmd.AddCommand(newFitRankerCommand(a))

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			if cmd.Flags().Changed("env-file") || !os.IsNotExist(err) {
				return errors.Wrapf(err, "failed to load %s", a.envFile)
			}
		}
	}

	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.applyFlags(cmd, cfg)
	a.cfg = cfg

	a.logger = log.New(log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	log.SetLogger(a.logger)
	errors.SetZerologWarnFunc(func(w error) {
		a.logger.Warn("SHARP warning", w)
	})
	a.stdout = cmd.OutOrStdout()
	return nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *Config) {
	f := cmd.Flags()
	changed := f.Changed
	if changed("data") {
		cfg.Data.Path = a.flags.data
	}
	if changed("label") {
		cfg.Data.LabelColumn = a.flags.label
	}
	if changed("sheet") {
		cfg.Data.Sheet = a.flags.sheet
	}
	if changed("weights") {
		cfg.Ranker.Weights = a.flags.weights
	}
	if changed("qoi") {
		cfg.Explainer.QoI = a.flags.qoi
	}
	if changed("measure") {
		cfg.Explainer.Measure = a.flags.measure
	}
	if changed("sample-size") {
		v := a.flags.sampleSize
		cfg.Explainer.SampleSize = &v
	}
	if changed("coalition-size") {
		v := a.flags.coalitionSize
		cfg.Explainer.CoalitionSize = &v
	}
	if changed("coalition-samples") {
		cfg.Explainer.CoalitionSamples = a.flags.coalitions
	}
	if changed("top-k") {
		cfg.Explainer.TopK = a.flags.topK
	}
	if changed("replace") {
		cfg.Explainer.Replace = a.flags.replace
	}
	if changed("seed") {
		v := a.flags.seed
		cfg.Explainer.RandomState = &v
	}
	if changed("n-jobs") {
		cfg.Explainer.NJobs = a.flags.nJobs
	}
	if changed("verbose") {
		cfg.Explainer.Verbose = a.flags.verbose
	}
	if changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if changed("output") {
		cfg.Output.Path = a.flags.output
	}
}

func execute() error {
	return newRootCommand().Execute()
}
