package main

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/YuminosukeSato/sharp"
	"github.com/YuminosukeSato/sharp/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by the CLI. Nested keys
// are separated by a double underscore: SHARP_EXPLAINER__SAMPLE_SIZE sets
// explainer.sample_size.
const EnvPrefix = "SHARP_"

// ConfigPathEnvVar names the variable holding the config file path.
const ConfigPathEnvVar = "SHARP_CONFIG"

// DefaultConfigPaths are searched when no config file is given.
var DefaultConfigPaths = []string{"sharp.yaml", "sharp.yml"}

// Config is the complete CLI configuration.
type Config struct {
	Explainer sharp.Config `koanf:"explainer"`
	Data      DataConfig   `koanf:"data"`
	Ranker    RankerConfig `koanf:"ranker"`
	Log       LogConfig    `koanf:"log"`
	Output    OutputConfig `koanf:"output"`
}

// DataConfig locates the reference dataset.
type DataConfig struct {
	Path        string `koanf:"path"`
	LabelColumn string `koanf:"label_column"`
	Sheet       string `koanf:"sheet"`
}

// RankerConfig selects the ranking function being explained.
type RankerConfig struct {
	// Weights is a JSON file of linear weights.
	Weights string `koanf:"weights"`
	// FitFromLabels fits a least squares ranker on the label column when no
	// weights file is given.
	FitFromLabels bool `koanf:"fit_from_labels"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// OutputConfig configures result output.
type OutputConfig struct {
	// Path is the result file. Empty writes to stdout.
	Path   string `koanf:"path"`
	Indent bool   `koanf:"indent"`
}

func defaultConfig() Config {
	return Config{
		Explainer: sharp.DefaultConfig(),
		Ranker:    RankerConfig{FitFromLabels: true},
		Log:       LogConfig{Level: "info", Format: "console"},
		Output:    OutputConfig{Indent: true},
	}
}

// loadConfig layers defaults, an optional YAML file and SHARP_ environment
// variables, in increasing precedence.
func loadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load defaults")
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}
	return cfg, nil
}

// envTransformFunc maps SHARP_EXPLAINER__SAMPLE_SIZE to explainer.sample_size.
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	if key == "CONFIG" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
