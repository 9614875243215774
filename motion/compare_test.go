package motion

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/motioneval/spatialmath"
)

func mustSkeleton(t *testing.T, joints []string) *Skeleton {
	t.Helper()
	s, err := NewSkeleton(joints)
	test.That(t, err, test.ShouldBeNil)
	return s
}

func TestCompareIdentical(t *testing.T) {
	seq := chainMotion{joints: threeJoints, frames: 100}.build()
	opts := DefaultOptions()
	opts.CandidateOrder = opts.ReferenceOrder

	res, c, err := Evaluate(context.Background(), mustSkeleton(t, threeJoints), seq, seq, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Window, test.ShouldResemble, Window{Min: 40, Max: 100})
	test.That(t, len(c.PositionDiff), test.ShouldEqual, 60)
	for f := range c.PositionDiff {
		test.That(t, len(c.PositionDiff[f]), test.ShouldEqual, 3)
		for j := range c.PositionDiff[f] {
			test.That(t, c.PositionDiff[f][j], test.ShouldResemble, r3.Vector{})
			test.That(t, c.RotationDiff[f][j], test.ShouldResemble, r3.Vector{})
			test.That(t, c.AngularDiff[f][j], test.ShouldEqual, 0)
		}
	}
	test.That(t, res.Success, test.ShouldBeTrue)
	test.That(t, len(res.Report.Joints), test.ShouldEqual, 3)
	for _, je := range res.Report.Joints {
		test.That(t, je.MPJPE, test.ShouldEqual, 0)
		test.That(t, je.MPJRE, test.ShouldEqual, 0)
	}
}

func TestCanonicalizeWindowStart(t *testing.T) {
	seq := chainMotion{joints: threeJoints, frames: 50}.build()
	window := Window{Min: 10, Max: 50}
	canon, err := Canonicalize(context.Background(), seq, mustSkeleton(t, threeJoints), window,
		CanonicalizeOptions{Role: RoleReference, Order: spatialmath.OrderZYX, Units: Radians})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, canon.Positions.Frames(), test.ShouldEqual, 40)

	// at the window start the root has not moved and no joint has rotated
	test.That(t, canon.Positions[0][0].Norm(), test.ShouldAlmostEqual, 0)
	for j := 0; j < 3; j++ {
		test.That(t, canon.Rotations[0][j].Norm(), test.ShouldAlmostEqual, 0)
		test.That(t, spatialmath.OrientationAlmostEqual(canon.Orientations[0][j], spatialmath.NewZeroOrientation()),
			test.ShouldBeTrue)
	}
	// the spine hangs 0.3 above the root in the root's own frame
	test.That(t, canon.Positions[5][1].Y, test.ShouldAlmostEqual, 0.3, 1e-9)
	test.That(t, canon.Positions[5][1].X, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, canon.Positions[5][1].Z, test.ShouldAlmostEqual, 0, 1e-9)
}

func TestRigidInvariance(t *testing.T) {
	skeleton := mustSkeleton(t, threeJoints)
	window := Window{Min: 40, Max: 100}
	reference := chainMotion{joints: threeJoints, frames: 100}.build()
	moved := chainMotion{
		joints: threeJoints,
		frames: 100,
		global: spatialmath.NewPose(
			r3.Vector{X: 12, Y: -3, Z: 0.5},
			spatialmath.NewOrientationFromEuler(spatialmath.OrderZYX, [3]float64{1.2, 0.3, -0.4}),
		),
	}.build()

	opts := CanonicalizeOptions{Role: RoleReference, Order: spatialmath.OrderZYX, Units: Radians}
	a, err := Canonicalize(context.Background(), reference, skeleton, window, opts)
	test.That(t, err, test.ShouldBeNil)
	b, err := Canonicalize(context.Background(), moved, skeleton, window, opts)
	test.That(t, err, test.ShouldBeNil)

	for f := range a.Positions {
		for j := range a.Positions[f] {
			test.That(t, a.Positions[f][j].Sub(b.Positions[f][j]).Norm(), test.ShouldBeLessThan, 1e-9)
		}
	}
}

func TestOrderIndependence(t *testing.T) {
	// the same motion read through ZYX channels and XYZ channels canonicalizes the same way
	seq := chainMotion{joints: threeJoints, frames: 60}.build()
	res, c, err := Evaluate(context.Background(), mustSkeleton(t, threeJoints), seq, seq, DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Success, test.ShouldBeTrue)
	for f := range c.RotationDiff {
		for j := range c.RotationDiff[f] {
			test.That(t, c.RotationDiff[f][j].Norm(), test.ShouldBeLessThan, 1e-9)
			test.That(t, c.PositionDiff[f][j].Norm(), test.ShouldBeLessThan, 1e-9)
			test.That(t, c.AngularDiff[f][j], test.ShouldBeLessThan, 1e-6)
		}
	}
}

func TestThresholdMonotonic(t *testing.T) {
	seq := chainMotion{joints: threeJoints, frames: 60}.build()
	opts := DefaultOptions()
	opts.CandidateOrder = opts.ReferenceOrder
	c, err := Compare(context.Background(), mustSkeleton(t, threeJoints), seq, seq, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, Score(c, opts).Success, test.ShouldBeTrue)

	c.PositionDiff[7][1].Y = opts.PositionTolerance
	test.That(t, Score(c, opts).Success, test.ShouldBeTrue)
	c.PositionDiff[7][1].Y = math.Nextafter(opts.PositionTolerance, 1)
	res := Score(c, opts)
	test.That(t, res.Success, test.ShouldBeFalse)
	test.That(t, res.PositionSuccess, test.ShouldBeFalse)
	test.That(t, res.RotationSuccess, test.ShouldBeTrue)

	c.PositionDiff[7][1].Y = 0
	c.RotationDiff[3][2].Z = opts.RotationTolerance + 0.01
	res = Score(c, opts)
	test.That(t, res.Success, test.ShouldBeFalse)
	test.That(t, res.PositionSuccess, test.ShouldBeTrue)
	test.That(t, res.RotationSuccess, test.ShouldBeFalse)
}

func TestEmptyWindow(t *testing.T) {
	seq := chainMotion{joints: threeJoints, frames: 40}.build()
	for _, minFrame := range []int{40, 55} {
		opts := DefaultOptions()
		opts.MinFrame = minFrame
		res, c, err := Evaluate(context.Background(), mustSkeleton(t, threeJoints), seq, seq, opts)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, c.Window.Empty(), test.ShouldBeTrue)
		test.That(t, len(c.PositionDiff), test.ShouldEqual, 0)
		test.That(t, len(c.RotationDiff), test.ShouldEqual, 0)
		test.That(t, res.Success, test.ShouldBeTrue)
		test.That(t, res.Report.Empty(), test.ShouldBeTrue)
		test.That(t, c.PositionFrameErrors(), test.ShouldBeNil)
	}
}

func TestEndToEndThreeJoints(t *testing.T) {
	skeleton := mustSkeleton(t, threeJoints)
	reference := chainMotion{joints: threeJoints, frames: 100}.build()
	candidate := chainMotion{
		joints: threeJoints,
		frames: 100,
		positionNoise: func(frame, joint int) r3.Vector {
			// at most 0.02 off in world space
			return r3.Vector{X: 0.01 * math.Sin(float64(frame+joint)), Z: 0.01 * math.Cos(float64(frame))}
		},
		localPerturbation: func(frame, joint int) spatialmath.Orientation {
			if joint == 0 {
				return spatialmath.NewZeroOrientation()
			}
			// half a degree of wobble
			return spatialmath.NewOrientationFromEulerDegrees(spatialmath.OrderXYZ,
				[3]float64{0.5 * math.Sin(float64(frame)/3), 0, 0})
		},
	}.build()

	res, c, err := Evaluate(context.Background(), skeleton, reference, candidate, DefaultOptions())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Window.Len(), test.ShouldEqual, 60)
	test.That(t, res.Success, test.ShouldBeTrue)

	positionErrors := c.PositionFrameErrors()
	rotationErrors := c.RotationFrameErrors(RotationMetricEuler)
	for j, name := range threeJoints {
		je, ok := res.Report.Lookup(name)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, len(positionErrors[j]), test.ShouldEqual, 60)
		test.That(t, je.MPJPE, test.ShouldBeLessThanOrEqualTo, maxOf(positionErrors[j])+1e-12)
		test.That(t, je.MPJRE, test.ShouldBeLessThanOrEqualTo, maxOf(rotationErrors[j])+1e-12)
		test.That(t, je.MPJPE, test.ShouldBeLessThanOrEqualTo, 0.05)
	}
	root, _ := res.Report.Lookup("Root")
	test.That(t, root.MPJRE, test.ShouldBeLessThan, 1e-9)
	spine, _ := res.Report.Lookup("Spine")
	test.That(t, spine.MPJRE, test.ShouldBeGreaterThan, 0)
	test.That(t, res.Report.MeanMPJPE(), test.ShouldBeGreaterThan, 0)
}

func TestGeodesicMetric(t *testing.T) {
	const rate = 0.002
	skeleton := mustSkeleton(t, threeJoints)
	reference := chainMotion{joints: threeJoints, frames: 100}.build()
	candidate := chainMotion{
		joints: threeJoints,
		frames: 100,
		localPerturbation: func(frame, joint int) spatialmath.Orientation {
			if joint != 1 {
				return spatialmath.NewZeroOrientation()
			}
			return spatialmath.NewOrientationFromEuler(spatialmath.OrderXYZ,
				[3]float64{0, 0, rate * float64(frame-40)})
		},
	}.build()

	opts := DefaultOptions()
	opts.RotationMetric = RotationMetricGeodesic
	res, c, err := Evaluate(context.Background(), skeleton, reference, candidate, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.MaxAngularDiff(), test.ShouldAlmostEqual, rate*59, 1e-9)

	spine, ok := res.Report.Lookup("Spine")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spine.MPJRE, test.ShouldAlmostEqual, rate*29.5, 1e-9)
	root, _ := res.Report.Lookup("Root")
	test.That(t, root.MPJRE, test.ShouldAlmostEqual, 0, 1e-9)
	head, _ := res.Report.Lookup("Head")
	test.That(t, head.MPJRE, test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, res.RotationSuccess, test.ShouldBeTrue)

	opts.RotationTolerance = rate * 50
	test.That(t, Score(c, opts).RotationSuccess, test.ShouldBeFalse)

	opts.RotationUnits = Degrees
	opts.RotationTolerance = 1
	res, c, err = Evaluate(context.Background(), skeleton, reference, candidate, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.MaxAngularDiff(), test.ShouldAlmostEqual, rate*59*180/math.Pi, 1e-7)
	test.That(t, res.RotationSuccess, test.ShouldBeFalse)
}

func TestCompareErrors(t *testing.T) {
	skeleton := mustSkeleton(t, threeJoints)
	reference := chainMotion{joints: threeJoints, frames: 60}.build()

	t.Run("missing joint", func(t *testing.T) {
		candidate := chainMotion{joints: []string{"Root", "Spine"}, frames: 60}.build()
		_, _, err := Evaluate(context.Background(), skeleton, reference, candidate, DefaultOptions())
		test.That(t, errors.Is(err, ErrSkeletonMismatch), test.ShouldBeTrue)
	})

	t.Run("malformed channel", func(t *testing.T) {
		candidate := chainMotion{joints: threeJoints, frames: 60}.build()
		candidate.rotations[50][2] = nil
		_, _, err := Evaluate(context.Background(), skeleton, reference, candidate, DefaultOptions())
		test.That(t, errors.Is(err, ErrMalformedPose), test.ShouldBeTrue)
		var cerr *CanonicalizationError
		test.That(t, errors.As(err, &cerr), test.ShouldBeTrue)
		test.That(t, cerr.Role, test.ShouldEqual, RoleCandidate)
		test.That(t, cerr.Frame, test.ShouldEqual, 50)
		test.That(t, cerr.Joint, test.ShouldEqual, "Head")
	})

	t.Run("non finite position", func(t *testing.T) {
		candidate := chainMotion{joints: threeJoints, frames: 60}.build()
		candidate.positions[45][1].X = math.Inf(1)
		_, _, err := Evaluate(context.Background(), skeleton, reference, candidate, DefaultOptions())
		test.That(t, errors.Is(err, ErrMalformedPose), test.ShouldBeTrue)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := Evaluate(ctx, skeleton, reference, reference, DefaultOptions())
		test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
	})

	t.Run("bad options", func(t *testing.T) {
		opts := DefaultOptions()
		opts.CandidateOrder = "XXY"
		_, _, err := Evaluate(context.Background(), skeleton, reference, reference, opts)
		test.That(t, err, test.ShouldNotBeNil)
		_, err = Compare(context.Background(), nil, reference, reference, DefaultOptions())
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestOptionsValidate(t *testing.T) {
	test.That(t, DefaultOptions().Validate(), test.ShouldBeNil)
	for _, mutate := range []func(*Options){
		func(o *Options) { o.MinFrame = -1 },
		func(o *Options) { o.PositionTolerance = -0.1 },
		func(o *Options) { o.RotationTolerance = math.NaN() },
		func(o *Options) { o.ReferenceOrder = "" },
		func(o *Options) { o.RotationMetric = "manhattan" },
		func(o *Options) { o.RotationUnits = "turns" },
	} {
		opts := DefaultOptions()
		mutate(&opts)
		test.That(t, opts.Validate(), test.ShouldNotBeNil)
	}
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}
