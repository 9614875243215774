// Package motion compares a reference motion sequence against a candidate one. Both sequences are
// reduced to a canonical, root-relative form so that recordings produced with different rotation
// channel orders can be compared joint by joint, then scored against position and rotation
// tolerances.
package motion

import (
	"github.com/golang/geo/r3"

	"go.viam.com/motioneval/spatialmath"
)

// PoseProvider is a source of per-frame joint readings.
type PoseProvider interface {
	// FrameCount is the number of frames in the sequence.
	FrameCount() int
	// FrameDuration is the time between two frames in seconds.
	FrameDuration() float64
	// JointNames lists joints in hierarchy order, the root first.
	JointNames() []string
	// WorldPosition is the position of joint in world coordinates at frame.
	WorldPosition(frame int, joint string) (r3.Vector, error)
	// RotationChannels returns the raw rotation channel values of joint at frame, in degrees, one
	// per axis of order and listed in the order's letter sequence.
	RotationChannels(frame int, joint string, order spatialmath.EulerOrder) ([3]float64, error)
}
