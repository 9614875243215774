// Package cli contains the command line interface for evaluating motion sequences.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"

	"go.viam.com/motioneval/bvh"
)

const (
	// Global flags.
	configFlag = "config"
	debugFlag  = "debug"
	dbFlag     = "db"

	// Comparison flags, overriding the config file.
	minFrameFlag          = "min-frame"
	positionToleranceFlag = "position-tolerance"
	rotationToleranceFlag = "rotation-tolerance"
	referenceOrderFlag    = "reference-order"
	candidateOrderFlag    = "candidate-order"
	rotationMetricFlag    = "rotation-metric"
	rotationUnitsFlag     = "rotation-units"
	rootJointFlag         = "root-joint"
	parallelismFlag       = "parallelism"

	timeFlag          = "time"
	outputFlag        = "output"
	formatFlag        = "format"
	jsonFlag          = "json"
	jointFlag         = "joint"
	deleteColumnsFlag = "delete-columns"
	limitFlag         = "limit"

	formatCSV  = "csv"
	formatJSON = "json"
)

func comparisonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  minFrameFlag,
			Usage: "number of warm-up frames skipped before comparing",
		},
		&cli.Float64Flag{
			Name:  positionToleranceFlag,
			Usage: "largest accepted per axis position error",
		},
		&cli.Float64Flag{
			Name:  rotationToleranceFlag,
			Usage: "largest accepted per axis rotation error, in rotation units",
		},
		&cli.StringFlag{
			Name:  referenceOrderFlag,
			Usage: "Euler order of the reference rotation channels (upper case intrinsic, lower case extrinsic)",
		},
		&cli.StringFlag{
			Name:  candidateOrderFlag,
			Usage: "Euler order of the candidate rotation channels",
		},
		&cli.StringFlag{
			Name:  rotationMetricFlag,
			Usage: "rotation difference metric: euler or geodesic",
		},
		&cli.StringFlag{
			Name:  rotationUnitsFlag,
			Usage: "unit of rotation errors and tolerance: radians or degrees",
		},
		&cli.StringFlag{
			Name:  rootJointFlag,
			Usage: "joint to use as the skeleton root, defaults to the first joint of the hierarchy",
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "motioneval",
		Usage:           "compare generated motion against ground truth",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      configFlag,
				Aliases:   []string{"c"},
				Usage:     "load configuration from `FILE`",
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:      dbFlag,
				Usage:     "SQLite history database `FILE`",
				TakesFile: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "evaluate",
				Usage:     "compare every file of a test directory against the truth directory",
				ArgsUsage: "<truth-dir> <test-dir>",
				Description: `Pairs files by name, compares each pair and writes one report row per pair.
	The command fails without evaluating anything when the two directories do not hold
	the same file names.`,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:      timeFlag,
						Usage:     "JSON `FILE` mapping file names to generation time in seconds",
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:      outputFlag,
						Aliases:   []string{"o"},
						Usage:     "report `FILE`, - for stdout",
						Value:     "evaluation_results.csv",
						TakesFile: true,
					},
					&cli.StringFlag{
						Name:  formatFlag,
						Usage: "report format: csv or json",
						Value: formatCSV,
					},
					&cli.IntFlag{
						Name:  parallelismFlag,
						Usage: "pairs evaluated at once, 0 for one per CPU",
					},
				}, comparisonFlags()...),
				Action: EvaluateAction,
			},
			{
				Name:      "compare",
				Usage:     "compare a single pair of files and print per joint errors",
				ArgsUsage: "<truth.bvh> <test.bvh>",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  jsonFlag,
						Usage: "print the result as JSON",
					},
				}, comparisonFlags()...),
				Action: CompareAction,
			},
			{
				Name:      "plot",
				Usage:     "plot per frame position and rotation errors of a single pair",
				ArgsUsage: "<truth.bvh> <test.bvh>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:      outputFlag,
						Aliases:   []string{"o"},
						Usage:     "PNG `FILE` to write",
						Value:     "errors.png",
						TakesFile: true,
					},
					&cli.StringSliceFlag{
						Name:  jointFlag,
						Usage: "joint to plot, repeatable; all joints when omitted",
					},
				}, comparisonFlags()...),
				Action: PlotAction,
			},
			{
				Name:      "convert",
				Usage:     "drop motion columns and replace the hierarchy with another file's",
				ArgsUsage: "<input.bvh|input-dir> <target.bvh> <output.bvh|output-dir>",
				Description: `Converts BVH files recorded on one skeleton to the hierarchy of another.
	The listed motion columns are removed and the remaining ones must match the channels
	of the target hierarchy. When the input is a directory every .bvh file in it is converted
	into the output directory.`,
				Flags: []cli.Flag{
					&cli.IntSliceFlag{
						Name:  deleteColumnsFlag,
						Usage: "zero based motion columns to delete",
						Value: cli.NewIntSlice(bvh.DefaultConvertColumns...),
					},
				},
				Action: ConvertAction,
			},
			{
				Name:            "history",
				Usage:           "work with stored evaluation runs",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list recent runs",
						Flags: []cli.Flag{
							&cli.IntFlag{
								Name:  limitFlag,
								Usage: "number of runs to show, 0 for all",
								Value: 20,
							},
						},
						Action: HistoryListAction,
					},
					{
						Name:      "show",
						Usage:     "show the results of a run",
						ArgsUsage: "<run-id>",
						Action:    HistoryShowAction,
					},
					{
						Name:      "delete",
						Usage:     "delete a run",
						ArgsUsage: "<run-id>",
						Action:    HistoryDeleteAction,
					},
				},
			},
			{
				Name:   "version",
				Usage:  "print version info for this program",
				Action: VersionAction,
			},
		},
	}
}
