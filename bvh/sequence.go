package bvh

import (
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/motioneval/spatialmath"
	"go.viam.com/motioneval/utils"
)

// Sequence answers pose queries on a parsed file. World poses come from forward kinematics: each
// joint's local transform is a translation by its offset plus any position channels, followed by
// its rotation channels applied in the order the file declares them.
//
// The world poses of the most recently queried frame are cached, so walking joints frame by frame
// costs one kinematics pass per frame. A Sequence is safe for concurrent use.
type Sequence struct {
	file *File

	mu          sync.Mutex
	cachedFrame int
	cachedPoses []spatialmath.Pose
}

// NewSequence wraps a parsed file.
func NewSequence(f *File) *Sequence {
	return &Sequence{file: f, cachedFrame: -1}
}

// Load parses the file at path into a Sequence.
func Load(path string) (*Sequence, error) {
	f, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return NewSequence(f), nil
}

// File returns the underlying parsed file.
func (s *Sequence) File() *File {
	return s.file
}

// FrameCount is the number of frames.
func (s *Sequence) FrameCount() int {
	return s.file.FrameCount()
}

// FrameDuration is the frame time in seconds.
func (s *Sequence) FrameDuration() float64 {
	return s.file.FrameTime
}

// JointNames lists joints in hierarchy order, root first. End sites are not included.
func (s *Sequence) JointNames() []string {
	return s.file.JointNames()
}

// WorldPosition returns the world position of joint at frame.
func (s *Sequence) WorldPosition(frame int, joint string) (r3.Vector, error) {
	pose, err := s.WorldPose(frame, joint)
	if err != nil {
		return r3.Vector{}, err
	}
	return pose.Point(), nil
}

// WorldPose returns the world pose of joint at frame.
func (s *Sequence) WorldPose(frame int, joint string) (spatialmath.Pose, error) {
	idx, ok := s.file.index[joint]
	if !ok {
		return nil, errors.Errorf("unknown joint %q", joint)
	}
	poses, err := s.framePoses(frame)
	if err != nil {
		return nil, err
	}
	return poses[idx], nil
}

// RotationChannels reads the rotation channels of joint named by order's axes, in the order's
// letter sequence. The values are returned as stored, in degrees.
func (s *Sequence) RotationChannels(frame int, joint string, order spatialmath.EulerOrder) ([3]float64, error) {
	var out [3]float64
	for i, axis := range order.Axes() {
		v, err := s.file.Value(frame, joint, RotationChannel(axis))
		if err != nil {
			return out, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *Sequence) framePoses(frame int) ([]spatialmath.Pose, error) {
	if frame < 0 || frame >= s.file.FrameCount() {
		return nil, errors.Errorf("frame %d out of range [0, %d)", frame, s.file.FrameCount())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cachedFrame == frame {
		return s.cachedPoses, nil
	}
	row := s.file.Frames[frame]
	poses := make([]spatialmath.Pose, len(s.file.Joints))
	for i, j := range s.file.Joints {
		local := localPose(j, row)
		if j.Parent < 0 {
			poses[i] = local
		} else {
			poses[i] = spatialmath.Compose(poses[j.Parent], local)
		}
	}
	s.cachedFrame = frame
	s.cachedPoses = poses
	return poses, nil
}

func localPose(j *Joint, row []float64) spatialmath.Pose {
	translation := j.Offset
	rotation := quat.Number{Real: 1}
	for i, ch := range j.Channels {
		v := row[j.column+i]
		if !ch.IsRotation() {
			switch ch.Axis() {
			case 0:
				translation.X += v
			case 1:
				translation.Y += v
			default:
				translation.Z += v
			}
			continue
		}
		aa := &spatialmath.R4AA{Theta: utils.DegToRad(v)}
		switch ch.Axis() {
		case 0:
			aa.RX = 1
		case 1:
			aa.RY = 1
		default:
			aa.RZ = 1
		}
		rotation = quat.Mul(rotation, aa.ToQuat())
	}
	return spatialmath.NewPose(translation, spatialmath.NewQuaternion(rotation))
}

// EndSitePosition returns the world position of the end site below joint, if it has one.
func (s *Sequence) EndSitePosition(frame int, joint string) (r3.Vector, bool, error) {
	j, ok := s.file.Joint(joint)
	if !ok {
		return r3.Vector{}, false, errors.Errorf("unknown joint %q", joint)
	}
	if j.EndSite == nil {
		return r3.Vector{}, false, nil
	}
	pose, err := s.WorldPose(frame, joint)
	if err != nil {
		return r3.Vector{}, false, err
	}
	return spatialmath.TransformPoint(pose, *j.EndSite), true, nil
}
