// Package config defines the structures to configure an evaluation run.
package config

import (
	"github.com/pkg/errors"

	"go.viam.com/motioneval/logging"
	"go.viam.com/motioneval/motion"
	"go.viam.com/motioneval/spatialmath"
	"go.viam.com/motioneval/utils"
)

// A Config describes how reference and candidate sequences are compared.
type Config struct {
	ConfigFilePath string `json:"-"`

	// MinFrame is the number of warm-up frames skipped at the start of every pair.
	MinFrame          int     `json:"min_frame"`
	PositionTolerance float64 `json:"position_tolerance"`
	RotationTolerance float64 `json:"rotation_tolerance"`
	// ReferenceOrder and CandidateOrder are the Euler orders the rotation channels of each side are
	// read in. They are dataset wide, never inferred per file.
	ReferenceOrder string `json:"reference_order"`
	CandidateOrder string `json:"candidate_order"`
	RotationMetric string `json:"rotation_metric"`
	RotationUnits  string `json:"rotation_units"`
	// Parallelism bounds how many pairs are evaluated at once. Zero uses every available CPU.
	Parallelism int    `json:"parallelism"`
	RootJoint   string `json:"root_joint,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
	HistoryDB   string `json:"history_db,omitempty"`
}

// Default returns the configuration matching the evaluation dataset.
func Default() *Config {
	opts := motion.DefaultOptions()
	return &Config{
		MinFrame:          opts.MinFrame,
		PositionTolerance: opts.PositionTolerance,
		RotationTolerance: opts.RotationTolerance,
		ReferenceOrder:    string(opts.ReferenceOrder),
		CandidateOrder:    string(opts.CandidateOrder),
		RotationMetric:    string(opts.RotationMetric),
		RotationUnits:     string(opts.RotationUnits),
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.ReferenceOrder == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "reference_order")
	}
	if c.CandidateOrder == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "candidate_order")
	}
	if c.Parallelism < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("parallelism must be non-negative, got %d", c.Parallelism))
	}
	if c.LogLevel != "" {
		if _, err := logging.LevelFromString(c.LogLevel); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	if _, err := c.Options(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// Options converts the config into comparison options.
func (c *Config) Options() (motion.Options, error) {
	opts := motion.Options{
		MinFrame:          c.MinFrame,
		PositionTolerance: c.PositionTolerance,
		RotationTolerance: c.RotationTolerance,
		ReferenceOrder:    spatialmath.EulerOrder(c.ReferenceOrder),
		CandidateOrder:    spatialmath.EulerOrder(c.CandidateOrder),
		RotationMetric:    motion.RotationMetric(c.RotationMetric),
		RotationUnits:     motion.AngleUnit(c.RotationUnits),
	}
	if err := opts.Validate(); err != nil {
		return motion.Options{}, err
	}
	return opts, nil
}

// Level is the configured log level, INFO if unset.
func (c *Config) Level() logging.Level {
	if c.LogLevel == "" {
		return logging.INFO
	}
	level, err := logging.LevelFromString(c.LogLevel)
	if err != nil {
		return logging.INFO
	}
	return level
}
