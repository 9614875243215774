package cli

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/motioneval/config"
	"go.viam.com/motioneval/evaluate"
	"go.viam.com/motioneval/plotting"
)

const (
	histogramBins  = 10
	histogramWidth = 40
)

// EvaluateAction compares every file pair of two directories and writes the report.
func EvaluateAction(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	referenceDir, candidateDir := c.Args().Get(0), c.Args().Get(1)
	format := c.String(formatFlag)
	if format != formatCSV && format != formatJSON {
		return errors.Errorf("unknown report format %q", format)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	elapsed, err := evaluate.LoadElapsed(c.String(timeFlag))
	if err != nil {
		return err
	}

	evaluator, err := evaluate.NewEvaluator(evaluate.Params{
		Options:     opts,
		RootJoint:   cfg.RootJoint,
		Parallelism: cfg.Parallelism,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	report, pairErr := evaluator.Run(c.Context, referenceDir, candidateDir, elapsed)
	if report == nil {
		return pairErr
	}

	if err := writeReport(c, report, format); err != nil {
		return multierr.Combine(pairErr, err)
	}
	if cfg.HistoryDB != "" {
		if err := saveHistory(c, cfg, report, referenceDir, candidateDir); err != nil {
			return multierr.Combine(pairErr, err)
		}
		logger.Infow("run saved", "run", report.RunID.String(), "db", cfg.HistoryDB)
	}

	summary, err := evaluate.Summarize(report)
	if err != nil {
		return multierr.Combine(pairErr, err)
	}
	summaryOut := c.App.Writer
	if c.String(outputFlag) == "-" {
		summaryOut = c.App.ErrWriter
	}
	printf(summaryOut, "%s", summary.Table())
	if err := summary.WriteHistogram(summaryOut, histogramBins, histogramWidth); err != nil {
		return multierr.Combine(pairErr, err)
	}
	if summary.Errored > 0 {
		warningf(c.App.ErrWriter, "%d of %d pairs could not be evaluated", summary.Errored, summary.Pairs)
	}
	return pairErr
}

func writeReport(c *cli.Context, report *evaluate.Report, format string) (err error) {
	var w io.Writer = c.App.Writer
	if path := c.String(outputFlag); path != "-" {
		//nolint:gosec
		f, createErr := os.Create(path)
		if createErr != nil {
			return errors.Wrap(createErr, "cannot create report")
		}
		defer func() {
			err = multierr.Combine(err, f.Close())
		}()
		w = f
	}
	if format == formatJSON {
		return report.WriteJSON(w)
	}
	return report.WriteCSV(w)
}

func saveHistory(c *cli.Context, cfg *config.Config, report *evaluate.Report, referenceDir, candidateDir string) (err error) {
	s, err := openStore(c, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close())
	}()
	return s.SaveReport(c.Context, report, referenceDir, candidateDir)
}

// CompareAction compares a single pair and prints the verdict and per joint errors. It fails when
// the pair does not pass.
func CompareAction(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(c, cfg)
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	res, cmp, err := comparePair(c.Context, cfg, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	logger.Debugw("compared", "window", res.Window, "max_angle", cmp.MaxAngularDiff())

	if c.Bool(jsonFlag) {
		report := &evaluate.Report{Joints: cmp.Skeleton.Joints(), Options: opts}
		report.Rows = []evaluate.Row{{
			FileName: c.Args().Get(1),
			Success:  res.Success,
			Result:   res,
		}}
		if err := report.WriteJSON(c.App.Writer); err != nil {
			return err
		}
	} else {
		printf(c.App.Writer, "%s", evaluate.ResultTable(res))
	}
	if !res.Success {
		return cli.Exit("candidate exceeds tolerance", 1)
	}
	return nil
}

// PlotAction writes a PNG of per frame errors of a single pair.
func PlotAction(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	_, cmp, err := comparePair(c.Context, cfg, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	out := c.String(outputFlag)
	if err := plotting.Save(out, cmp, plotting.Options{
		Joints: c.StringSlice(jointFlag),
		Metric: opts.RotationMetric,
		Units:  opts.RotationUnits,
		Title:  c.Args().Get(1),
	}); err != nil {
		return err
	}
	printf(c.App.Writer, "wrote %s", out)
	return nil
}
