package motion

import (
	"context"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/motioneval/spatialmath"
	"go.viam.com/motioneval/utils"
)

// Comparison is the canonical form of a reference and a candidate sequence over the same window,
// along with their element-wise differences.
type Comparison struct {
	Window    Window
	Skeleton  *Skeleton
	Reference *CanonicalSequence
	Candidate *CanonicalSequence
	// PositionDiff and RotationDiff are the absolute component differences, indexed [frame][joint].
	PositionDiff Track
	RotationDiff Track
	// AngularDiff is the angle between the reference and candidate relative rotations,
	// indexed [frame][joint].
	AngularDiff [][]float64
}

// Compare canonicalizes both sequences over their shared window and differences them. The two
// sequences are canonicalized concurrently.
func Compare(
	ctx context.Context,
	skeleton *Skeleton,
	reference, candidate PoseProvider,
	opts Options,
) (*Comparison, error) {
	if skeleton == nil {
		return nil, errors.New("comparison requires a skeleton")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := skeleton.Check(reference, RoleReference); err != nil {
		return nil, err
	}
	if err := skeleton.Check(candidate, RoleCandidate); err != nil {
		return nil, err
	}
	window := NewWindow(opts.MinFrame, reference, candidate)

	var refSeq, candSeq *CanonicalSequence
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refSeq, err = Canonicalize(gctx, reference, skeleton, window, CanonicalizeOptions{
			Role: RoleReference, Order: opts.ReferenceOrder, Units: opts.RotationUnits,
		})
		return err
	})
	g.Go(func() error {
		var err error
		candSeq, err = Canonicalize(gctx, candidate, skeleton, window, CanonicalizeOptions{
			Role: RoleCandidate, Order: opts.CandidateOrder, Units: opts.RotationUnits,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Comparison{
		Window:       window,
		Skeleton:     skeleton,
		Reference:    refSeq,
		Candidate:    candSeq,
		PositionDiff: absDiff(refSeq.Positions, candSeq.Positions),
		RotationDiff: absDiff(refSeq.Rotations, candSeq.Rotations),
		AngularDiff:  angularDiff(refSeq.Orientations, candSeq.Orientations, opts.RotationUnits),
	}, nil
}

func absDiff(a, b Track) Track {
	out := make(Track, len(a))
	for f := range a {
		row := make([]r3.Vector, len(a[f]))
		for j := range a[f] {
			row[j] = a[f][j].Sub(b[f][j]).Abs()
		}
		out[f] = row
	}
	return out
}

func angularDiff(a, b [][]spatialmath.Orientation, units AngleUnit) [][]float64 {
	out := make([][]float64, len(a))
	for f := range a {
		row := make([]float64, len(a[f]))
		for j := range a[f] {
			angle := spatialmath.AngularDistance(a[f][j], b[f][j])
			if units == Degrees {
				angle = utils.RadToDeg(angle)
			}
			row[j] = angle
		}
		out[f] = row
	}
	return out
}

// PositionFrameErrors returns, per joint, the Euclidean position error at every windowed frame.
func (c *Comparison) PositionFrameErrors() [][]float64 {
	return FrameErrors(c.Reference.Positions, c.Candidate.Positions)
}

// RotationFrameErrors returns, per joint, the rotation error at every windowed frame under metric.
func (c *Comparison) RotationFrameErrors(metric RotationMetric) [][]float64 {
	if metric == RotationMetricGeodesic {
		return transpose(c.AngularDiff, c.Skeleton.Len())
	}
	return FrameErrors(c.Reference.Rotations, c.Candidate.Rotations)
}

// MaxAngularDiff is the largest angle in AngularDiff, or zero for an empty window.
func (c *Comparison) MaxAngularDiff() float64 {
	var m float64
	for _, row := range c.AngularDiff {
		for _, v := range row {
			m = math.Max(m, v)
		}
	}
	return m
}

func transpose(values [][]float64, joints int) [][]float64 {
	out := make([][]float64, joints)
	for j := range out {
		out[j] = make([]float64, len(values))
		for f := range values {
			out[j][f] = values[f][j]
		}
	}
	return out
}
