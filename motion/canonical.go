package motion

import (
	"context"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/motioneval/spatialmath"
	"go.viam.com/motioneval/utils"
)

// Track holds one 3-vector per joint per frame, indexed [frame][joint].
type Track [][]r3.Vector

// Frames is the number of frames in the track.
func (t Track) Frames() int {
	return len(t)
}

// CanonicalSequence is a sequence restricted to a window and expressed relative to its root and
// its first windowed frame.
type CanonicalSequence struct {
	// Positions holds the root displacement from the window start (joint 0) and every other joint's
	// offset from the root, both in the root's local frame at that frame.
	Positions Track
	// Rotations holds each joint's canonical Euler vector minus the same at the window start.
	Rotations Track
	// Orientations holds each joint's rotation at the frame composed with the inverse of its
	// rotation at the window start, indexed [frame][joint].
	Orientations [][]spatialmath.Orientation
}

// CanonicalizeOptions describes how to read a sequence.
type CanonicalizeOptions struct {
	Role  Role
	Order spatialmath.EulerOrder
	Units AngleUnit
}

// Canonicalize converts the windowed frames of p into canonical form. An empty window yields an
// empty sequence.
func Canonicalize(
	ctx context.Context,
	p PoseProvider,
	skeleton *Skeleton,
	window Window,
	opts CanonicalizeOptions,
) (*CanonicalSequence, error) {
	n := window.Len()
	seq := &CanonicalSequence{
		Positions:    make(Track, 0, n),
		Rotations:    make(Track, 0, n),
		Orientations: make([][]spatialmath.Orientation, 0, n),
	}
	if n == 0 {
		return seq, nil
	}
	c := &canonicalizer{p: p, skeleton: skeleton, opts: opts}

	f0 := window.Min
	rootStart, err := c.position(f0, skeleton.Root())
	if err != nil {
		return nil, err
	}
	startOrientations, startEuler, err := c.rotations(f0)
	if err != nil {
		return nil, err
	}

	for f := window.Min; f < window.Max; f++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		positions, err := c.relativePositions(f, rootStart)
		if err != nil {
			return nil, err
		}
		orientations, euler, err := c.rotations(f)
		if err != nil {
			return nil, err
		}
		rotations := make([]r3.Vector, len(euler))
		relative := make([]spatialmath.Orientation, len(euler))
		for j := range euler {
			rotations[j] = c.scale(euler[j].Sub(startEuler[j]))
			relative[j] = spatialmath.NewQuaternion(
				spatialmath.OrientationBetween(startOrientations[j], orientations[j]).Quaternion())
		}
		seq.Positions = append(seq.Positions, positions)
		seq.Rotations = append(seq.Rotations, rotations)
		seq.Orientations = append(seq.Orientations, relative)
	}
	return seq, nil
}

type canonicalizer struct {
	p        PoseProvider
	skeleton *Skeleton
	opts     CanonicalizeOptions
}

func (c *canonicalizer) fail(frame int, joint string, err error) error {
	return &CanonicalizationError{Role: c.opts.Role, Frame: frame, Joint: joint, Err: err}
}

func (c *canonicalizer) position(frame int, joint string) (r3.Vector, error) {
	pos, err := c.p.WorldPosition(frame, joint)
	if err != nil {
		return r3.Vector{}, c.fail(frame, joint, err)
	}
	if !finite(pos.X, pos.Y, pos.Z) {
		return r3.Vector{}, c.fail(frame, joint, ErrMalformedPose)
	}
	return pos, nil
}

func (c *canonicalizer) orientation(frame int, joint string) (spatialmath.Orientation, error) {
	channels, err := c.p.RotationChannels(frame, joint, c.opts.Order)
	if err != nil {
		return nil, c.fail(frame, joint, err)
	}
	if !finite(channels[0], channels[1], channels[2]) {
		return nil, c.fail(frame, joint, ErrMalformedPose)
	}
	return spatialmath.NewOrientationFromEulerDegrees(c.opts.Order, channels), nil
}

// relativePositions expresses every joint relative to the root, in the root's frame.
func (c *canonicalizer) relativePositions(frame int, rootStart r3.Vector) ([]r3.Vector, error) {
	root := c.skeleton.Root()
	rootPos, err := c.position(frame, root)
	if err != nil {
		return nil, err
	}
	rootRot, err := c.orientation(frame, root)
	if err != nil {
		return nil, err
	}
	joints := c.skeleton.joints
	out := make([]r3.Vector, len(joints))
	out[0] = spatialmath.RotateInverse(rootRot, rootPos.Sub(rootStart))
	for j := 1; j < len(joints); j++ {
		pos, err := c.position(frame, joints[j])
		if err != nil {
			return nil, err
		}
		out[j] = spatialmath.RotateInverse(rootRot, pos.Sub(rootPos))
	}
	return out, nil
}

// rotations reads every joint's rotation at frame and its canonical Euler vector in radians.
func (c *canonicalizer) rotations(frame int) ([]spatialmath.Orientation, []r3.Vector, error) {
	joints := c.skeleton.joints
	orientations := make([]spatialmath.Orientation, len(joints))
	euler := make([]r3.Vector, len(joints))
	for j, joint := range joints {
		o, err := c.orientation(frame, joint)
		if err != nil {
			return nil, nil, err
		}
		a := spatialmath.EulerAngles(o, CanonicalOrder)
		orientations[j] = o
		euler[j] = r3.Vector{X: a[0], Y: a[1], Z: a[2]}
	}
	return orientations, euler, nil
}

func (c *canonicalizer) scale(v r3.Vector) r3.Vector {
	if c.opts.Units == Degrees {
		return r3.Vector{X: utils.RadToDeg(v.X), Y: utils.RadToDeg(v.Y), Z: utils.RadToDeg(v.Z)}
	}
	return v
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
