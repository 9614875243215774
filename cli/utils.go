package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/motioneval/bvh"
	"go.viam.com/motioneval/config"
	"go.viam.com/motioneval/logging"
	"go.viam.com/motioneval/motion"
	"go.viam.com/motioneval/store"
)

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	warningColor.Fprint(w, "Warning: ")
	printf(w, format, a...)
}

var warningColor = color.New(color.Bold, color.FgYellow)

// loadConfig reads the --config file, or the defaults, and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(configFlag); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet(minFrameFlag) {
		cfg.MinFrame = c.Int(minFrameFlag)
	}
	if c.IsSet(positionToleranceFlag) {
		cfg.PositionTolerance = c.Float64(positionToleranceFlag)
	}
	if c.IsSet(rotationToleranceFlag) {
		cfg.RotationTolerance = c.Float64(rotationToleranceFlag)
	}
	for flag, field := range map[string]*string{
		referenceOrderFlag: &cfg.ReferenceOrder,
		candidateOrderFlag: &cfg.CandidateOrder,
		rotationMetricFlag: &cfg.RotationMetric,
		rotationUnitsFlag:  &cfg.RotationUnits,
		rootJointFlag:      &cfg.RootJoint,
	} {
		if c.IsSet(flag) {
			*field = c.String(flag)
		}
	}
	if c.IsSet(parallelismFlag) {
		cfg.Parallelism = c.Int(parallelismFlag)
	}
	if c.IsSet(dbFlag) {
		cfg.HistoryDB = c.String(dbFlag)
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to the app's error writer at the configured level, or DEBUG with --debug.
func newLogger(c *cli.Context, cfg *config.Config) logging.Logger {
	logger := logging.NewWriterLogger("motioneval", cfg.Level(), c.App.ErrWriter)
	if c.Bool(debugFlag) {
		logger.SetLevel(logging.DEBUG)
	}
	return logger
}

func openStore(c *cli.Context, cfg *config.Config) (*store.Store, error) {
	if cfg.HistoryDB == "" {
		return nil, errors.Errorf("no history database, pass --%s or set history_db in the config", dbFlag)
	}
	return store.Open(c.Context, cfg.HistoryDB)
}

// requireArgs checks the positional argument count of the current command.
func requireArgs(c *cli.Context, n int) error {
	if c.Args().Len() != n {
		return errors.Errorf("expected %d arguments (%s), got %d", n, c.Command.ArgsUsage, c.Args().Len())
	}
	return nil
}

// comparePair loads two BVH files and compares them. The skeleton is taken from the reference file.
func comparePair(
	ctx context.Context,
	cfg *config.Config,
	referencePath, candidatePath string,
) (*motion.Result, *motion.Comparison, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, nil, err
	}
	reference, err := bvh.Load(referencePath)
	if err != nil {
		return nil, nil, err
	}
	candidate, err := bvh.Load(candidatePath)
	if err != nil {
		return nil, nil, err
	}
	skeleton, err := motion.SkeletonFromProvider(reference, cfg.RootJoint)
	if err != nil {
		return nil, nil, err
	}
	return motion.Evaluate(ctx, skeleton, reference, candidate, opts)
}
