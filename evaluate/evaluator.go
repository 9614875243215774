package evaluate

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/motioneval/bvh"
	"go.viam.com/motioneval/logging"
	"go.viam.com/motioneval/motion"
	"go.viam.com/motioneval/utils"
)

// Loader opens a motion file.
type Loader func(path string) (motion.PoseProvider, error)

// LoadBVH is the default Loader.
func LoadBVH(path string) (motion.PoseProvider, error) {
	return bvh.Load(path)
}

// Params configures an Evaluator.
type Params struct {
	Options motion.Options
	// RootJoint overrides the root of the skeleton. Empty uses the first joint of the first
	// reference file.
	RootJoint string
	// Parallelism bounds concurrent pair evaluations. Zero uses every available CPU.
	Parallelism int
	Logger      logging.Logger
	Clock       clock.Clock
	Loader      Loader
}

// Evaluator compares every pair of a reference and a candidate directory.
type Evaluator struct {
	opts        motion.Options
	rootJoint   string
	parallelism int
	logger      logging.Logger
	clock       clock.Clock
	load        Loader
}

// NewEvaluator validates params and fills in defaults.
func NewEvaluator(params Params) (*Evaluator, error) {
	if err := params.Options.Validate(); err != nil {
		return nil, err
	}
	if params.Parallelism < 0 {
		return nil, errors.Errorf("parallelism must be non-negative, got %d", params.Parallelism)
	}
	e := &Evaluator{
		opts:        params.Options,
		rootJoint:   params.RootJoint,
		parallelism: params.Parallelism,
		logger:      params.Logger,
		clock:       params.Clock,
		load:        params.Loader,
	}
	if e.logger == nil {
		e.logger = logging.Global()
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.load == nil {
		e.load = LoadBVH
	}
	return e, nil
}

// Run evaluates every pair of files in the two directories. A file name mismatch between the
// directories aborts before any pair is evaluated. A pair that fails is reported with its error
// and the remaining pairs still run; all pair failures are combined into the returned error,
// which accompanies a complete report.
func (e *Evaluator) Run(ctx context.Context, referenceDir, candidateDir string, elapsed Elapsed) (*Report, error) {
	pairs, err := ListPairs(referenceDir, candidateDir)
	if err != nil {
		return nil, err
	}
	return e.RunPairs(ctx, pairs, elapsed)
}

// RunPairs evaluates an explicit list of pairs. The skeleton is taken from the first reference
// file that loads; pairs before it whose reference cannot be read are reported as errors.
func (e *Evaluator) RunPairs(ctx context.Context, pairs []Pair, elapsed Elapsed) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		CreatedAt: e.clock.Now().UTC(),
		Options:   e.opts,
		Rows:      make([]Row, len(pairs)),
	}
	if len(pairs) == 0 {
		e.logger.Warn("no files to evaluate")
		return report, nil
	}

	pairErrs := make([]error, len(pairs))
	first, reference, skeleton := e.firstSkeleton(pairs, elapsed, report.Rows, pairErrs)
	if skeleton == nil {
		e.logger.Errorw("no reference file could be loaded", "pairs", len(pairs))
		return report, multierr.Combine(pairErrs...)
	}
	report.Joints = skeleton.Joints()
	e.logger.Infow("evaluating", "run", report.RunID.String(), "pairs", len(pairs), "joints", skeleton.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(utils.WorkerCount(e.parallelism, len(pairs)-first))
	for i := first; i < len(pairs); i++ {
		i := i
		pair := pairs[i]
		var loaded motion.PoseProvider
		if i == first {
			loaded = reference
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row := e.evaluatePair(gctx, skeleton, pair, elapsed, loaded)
			report.Rows[i] = row
			if row.Err != nil {
				if errors.Is(row.Err, context.Canceled) || errors.Is(row.Err, context.DeadlineExceeded) {
					return row.Err
				}
				pairErrs[i] = errors.Wrapf(row.Err, "pair %s", pair.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, multierr.Combine(pairErrs...)
}

// firstSkeleton loads reference files in order until one yields a skeleton. Every pair passed over
// gets an error row. It returns the index of the pair that worked and its loaded reference, or a
// nil skeleton when none did.
func (e *Evaluator) firstSkeleton(
	pairs []Pair,
	elapsed Elapsed,
	rows []Row,
	pairErrs []error,
) (int, motion.PoseProvider, *motion.Skeleton) {
	for i, pair := range pairs {
		reference, err := e.load(pair.ReferencePath)
		if err == nil {
			var skeleton *motion.Skeleton
			skeleton, err = motion.SkeletonFromProvider(reference, e.rootJoint)
			if err == nil {
				return i, reference, skeleton
			}
		}
		err = errors.Wrap(err, "reference")
		logger := e.logger.Sublogger(pair.Name)
		logger.Errorw("cannot build skeleton", "error", err)
		rows[i] = e.newRow(logger, pair, elapsed)
		rows[i].Err = err
		pairErrs[i] = errors.Wrapf(err, "pair %s", pair.Name)
	}
	return len(pairs), nil, nil
}

func (e *Evaluator) newRow(logger logging.Logger, pair Pair, elapsed Elapsed) Row {
	row := Row{FileName: pair.Name}
	if seconds, ok := elapsed.Lookup(pair.Name); ok {
		row.TimeTaken = &seconds
	} else {
		logger.Warnw("no elapsed time recorded", "file", pair.Name)
	}
	return row
}

// evaluatePair compares one pair. A nil reference is loaded from the pair's reference path.
func (e *Evaluator) evaluatePair(
	ctx context.Context,
	skeleton *motion.Skeleton,
	pair Pair,
	elapsed Elapsed,
	reference motion.PoseProvider,
) Row {
	logger := e.logger.Sublogger(pair.Name)
	start := e.clock.Now()
	row := e.newRow(logger, pair, elapsed)

	if reference == nil {
		var err error
		if reference, err = e.load(pair.ReferencePath); err != nil {
			row.Err = errors.Wrap(err, "reference")
			logger.Errorw("cannot load reference", "error", err)
			return row
		}
	}
	row.NumFrames = reference.FrameCount()
	row.FrameTime = reference.FrameDuration()
	row.ClipTime = float64(row.NumFrames) * row.FrameTime

	candidate, err := e.load(pair.CandidatePath)
	if err != nil {
		row.Err = errors.Wrap(err, "candidate")
		logger.Errorw("cannot load candidate", "error", err)
		return row
	}

	res, _, err := motion.Evaluate(ctx, skeleton, reference, candidate, e.opts)
	if err != nil {
		row.Err = err
		logger.Errorw("comparison failed", "error", err)
		return row
	}
	row.Success = res.Success
	row.Result = res
	logger.Debugw("pair done",
		"success", res.Success,
		"window", res.Window,
		"mean_mpjpe", res.Report.MeanMPJPE(),
		"mean_mpjre", res.Report.MeanMPJRE(),
		"took", e.clock.Since(start).Round(time.Millisecond))
	return row
}
