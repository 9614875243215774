package cli

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/motioneval/store"
)

func withStore(c *cli.Context, f func(s *store.Store) error) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	s, err := openStore(c, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, s.Close())
	}()
	return f(s)
}

func runIDArg(c *cli.Context) (uuid.UUID, error) {
	if err := requireArgs(c, 1); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(c.Args().First())
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "invalid run id %q", c.Args().First())
	}
	return id, nil
}

// HistoryListAction lists stored runs, most recent first.
func HistoryListAction(c *cli.Context) error {
	return withStore(c, func(s *store.Store) error {
		runs, err := s.ListRuns(c.Context, c.Int(limitFlag))
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			printf(c.App.Writer, "no runs recorded in %s", s.Path())
			return nil
		}
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Run", "Created", "Truth", "Test", "Pairs", "Passed", "Errored"})
		for _, run := range runs {
			tw.AppendRow(table.Row{
				run.ID.String(),
				run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				run.ReferenceDir,
				run.CandidateDir,
				run.Pairs,
				run.Passed,
				run.Errored,
			})
		}
		printf(c.App.Writer, "%s", tw.Render())
		return nil
	})
}

// HistoryShowAction prints the stored results of one run.
func HistoryShowAction(c *cli.Context) error {
	id, err := runIDArg(c)
	if err != nil {
		return err
	}
	return withStore(c, func(s *store.Store) error {
		results, err := s.Results(c.Context, id)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return errors.Errorf("no results for run %s", id)
		}
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.SetTitle(id.String())
		tw.AppendHeader(table.Row{"File", "Success", "Frames", "Mean MPJPE", "Mean MPJRE", "Error"})
		for _, res := range results {
			tw.AppendRow(table.Row{
				res.FileName,
				res.Success,
				res.NumFrames,
				optionalFloat(res.MeanMPJPE),
				optionalFloat(res.MeanMPJRE),
				res.Error,
			})
		}
		printf(c.App.Writer, "%s", tw.Render())
		return nil
	})
}

// HistoryDeleteAction removes a run.
func HistoryDeleteAction(c *cli.Context) error {
	id, err := runIDArg(c)
	if err != nil {
		return err
	}
	return withStore(c, func(s *store.Store) error {
		if err := s.DeleteRun(c.Context, id); err != nil {
			return err
		}
		printf(c.App.Writer, "deleted run %s", id)
		return nil
	})
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
