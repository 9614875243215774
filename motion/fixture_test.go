package motion

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/motioneval/spatialmath"
)

// fakeSequence is an in-memory PoseProvider. Rotation channels are produced by decomposing the
// stored local rotations in whatever order is asked for.
type fakeSequence struct {
	joints    []string
	frameTime float64
	positions [][]r3.Vector
	rotations [][]spatialmath.Orientation
}

func (s *fakeSequence) FrameCount() int { return len(s.positions) }

func (s *fakeSequence) FrameDuration() float64 { return s.frameTime }

func (s *fakeSequence) JointNames() []string { return s.joints }

func (s *fakeSequence) index(joint string) int {
	for i, name := range s.joints {
		if name == joint {
			return i
		}
	}
	return -1
}

func (s *fakeSequence) WorldPosition(frame int, joint string) (r3.Vector, error) {
	i := s.index(joint)
	if i < 0 || frame < 0 || frame >= len(s.positions) {
		return r3.Vector{}, errors.Errorf("no position for %q at frame %d", joint, frame)
	}
	return s.positions[frame][i], nil
}

func (s *fakeSequence) RotationChannels(frame int, joint string, order spatialmath.EulerOrder) ([3]float64, error) {
	i := s.index(joint)
	if i < 0 || frame < 0 || frame >= len(s.rotations) {
		return [3]float64{}, errors.Errorf("no rotation for %q at frame %d", joint, frame)
	}
	if s.rotations[frame][i] == nil {
		return [3]float64{math.NaN(), 0, 0}, nil
	}
	return spatialmath.EulerAnglesDegrees(s.rotations[frame][i], order), nil
}

// chainMotion describes a chain of joints, each a child of the previous one.
type chainMotion struct {
	joints []string
	frames int
	// global is applied on top of the whole motion.
	global spatialmath.Pose
	// localPerturbation, if set, is applied after each joint's local rotation.
	localPerturbation func(frame, joint int) spatialmath.Orientation
	// positionNoise, if set, is added to each non-root joint's world position.
	positionNoise func(frame, joint int) r3.Vector
}

func (m chainMotion) build() *fakeSequence {
	global := m.global
	if global == nil {
		global = spatialmath.NewZeroPose()
	}
	seq := &fakeSequence{joints: m.joints, frameTime: 1. / 30}
	for f := 0; f < m.frames; f++ {
		t := float64(f)
		positions := make([]r3.Vector, len(m.joints))
		rotations := make([]spatialmath.Orientation, len(m.joints))
		var parent spatialmath.Pose
		for j := range m.joints {
			var local spatialmath.Pose
			if j == 0 {
				local = spatialmath.NewPose(
					r3.Vector{X: 0.01 * t, Y: 0.02 * math.Sin(t/25), Z: 1 + 0.05*math.Sin(t/10)},
					spatialmath.NewOrientationFromEuler(spatialmath.OrderXYZ,
						[3]float64{0.1 * math.Sin(t/15), 0.2 * math.Cos(t/20), 0.01 * t}),
				)
			} else {
				o := spatialmath.NewOrientationFromEuler(spatialmath.OrderXYZ,
					[3]float64{0.05 * float64(j) * math.Sin(t/7), 0.02 * math.Cos(t/11), 0.03 * math.Cos(t/9)})
				local = spatialmath.NewPose(r3.Vector{Y: 0.3}, o)
			}
			if m.localPerturbation != nil {
				local = spatialmath.Compose(local, spatialmath.NewPose(r3.Vector{}, m.localPerturbation(f, j)))
			}
			var world spatialmath.Pose
			if j == 0 {
				world = spatialmath.Compose(global, local)
				rotations[j] = world.Orientation()
			} else {
				world = spatialmath.Compose(parent, local)
				rotations[j] = local.Orientation()
			}
			positions[j] = world.Point()
			if j > 0 && m.positionNoise != nil {
				positions[j] = positions[j].Add(m.positionNoise(f, j))
			}
			parent = world
		}
		seq.positions = append(seq.positions, positions)
		seq.rotations = append(seq.rotations, rotations)
	}
	return seq
}

var threeJoints = []string{"Root", "Spine", "Head"}
