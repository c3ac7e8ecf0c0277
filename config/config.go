// Package config loads the experiment configuration from YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/neurlang/pneumonia/datasets/xray"
)

// ErrInvalid is returned by Validate
var ErrInvalid = errors.New("config: invalid")

// Config holds every knob of a run
type Config struct {
	DataDir    string `yaml:"data_dir"`
	Checkpoint string `yaml:"checkpoint"`
	History    string `yaml:"history"`
	LabelMode  string `yaml:"label_mode"`

	BatchSize    int     `yaml:"batch_size"`
	Workers      int     `yaml:"workers"`
	Augment      bool    `yaml:"augment_minority"`
	ValRatio     float64 `yaml:"val_ratio"`
	LearningRate float64 `yaml:"learning_rate"`
	Classes      int     `yaml:"num_classes"`
	MaxEpochs    int     `yaml:"max_epochs"`
	Device       int     `yaml:"device"`
	Seed         int64   `yaml:"seed"`

	Bank     int    `yaml:"bank"`
	Buckets  uint32 `yaml:"buckets"`
	Attempts int    `yaml:"attempts"`
	Threads  int    `yaml:"threads"`
}

// Default returns the configuration used when no file overrides it
func Default() Config {
	return Config{
		DataDir:      "./chest_xray",
		Checkpoint:   "model.json.lzw",
		History:      "runs.db",
		LabelMode:    string(xray.LabelSubtype),
		BatchSize:    32,
		Workers:      4,
		Augment:      true,
		ValRatio:     0.1,
		LearningRate: 0.25,
		Classes:      3,
		MaxEpochs:    8,
		Device:       0,
		Seed:         42,
		Bank:         64,
		Buckets:      1 << 14,
		Attempts:     2,
		Threads:      runtime.NumCPU(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, c.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, c.Validate()
}

// Validate rejects out of range values
func (c Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}
	check(c.DataDir != "", "data_dir is empty")
	check(c.Checkpoint != "", "checkpoint is empty")
	check(c.LabelMode == string(xray.LabelFolder) || c.LabelMode == string(xray.LabelSubtype),
		"label_mode %q is not folder or subtype", c.LabelMode)
	check(c.BatchSize > 0, "batch_size %d must be positive", c.BatchSize)
	check(c.Workers > 0, "workers %d must be positive", c.Workers)
	check(c.ValRatio >= 0 && c.ValRatio < 1, "val_ratio %v out of [0,1)", c.ValRatio)
	check(c.LearningRate > 0 && c.LearningRate <= 1, "learning_rate %v out of (0,1]", c.LearningRate)
	check(c.Classes >= 2, "num_classes %d must be at least 2", c.Classes)
	check(c.MaxEpochs > 0, "max_epochs %d must be positive", c.MaxEpochs)
	check(c.Device >= 0, "device %d must not be negative", c.Device)
	check(c.Bank > 0, "bank %d must be positive", c.Bank)
	check(c.Buckets > 0, "buckets must be positive")
	check(c.Attempts > 0, "attempts %d must be positive", c.Attempts)
	check(c.Threads > 0, "threads %d must be positive", c.Threads)
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
}
