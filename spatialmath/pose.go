package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose: a position plus an orientation.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// dualQuaternion defines functions to perform rigid transformations in 3D.
// The real part holds the rotation, the dual part holds half the translation multiplied by it.
type dualQuaternion struct {
	dualquat.Number
}

// NewZeroPose returns a pose at (0,0,0) with the identity orientation.
func NewZeroPose() Pose {
	return &dualQuaternion{dualquat.Number{Real: quat.Number{Real: 1}}}
}

// NewPose returns a pose at point with orientation o.
func NewPose(point r3.Vector, o Orientation) Pose {
	if o == nil {
		o = NewZeroOrientation()
	}
	rot := Normalize(o.Quaternion())
	trans := quat.Number{Imag: point.X / 2, Jmag: point.Y / 2, Kmag: point.Z / 2}
	return &dualQuaternion{dualquat.Number{Real: rot, Dual: quat.Mul(trans, rot)}}
}

// NewPoseFromPoint returns a pose with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return NewPose(point, nil)
}

// Point multiplies the dual quaternion by its own conjugate to give a dq where the real is the
// identity quat and the dual is half the translation.
func (q *dualQuaternion) Point() r3.Vector {
	t := quat.Mul(q.Dual, quat.Conj(q.Real))
	return r3.Vector{X: 2 * t.Imag, Y: 2 * t.Jmag, Z: 2 * t.Kmag}
}

// Orientation returns the rotation part of the pose.
func (q *dualQuaternion) Orientation() Orientation {
	o := quaternion(q.Real)
	return &o
}

func toDualQuaternion(p Pose) *dualQuaternion {
	if dq, ok := p.(*dualQuaternion); ok {
		return dq
	}
	return NewPose(p.Point(), p.Orientation()).(*dualQuaternion)
}

// Compose returns the pose obtained by applying b in the frame of a, i.e. a parent pose
// followed by a child's local pose.
func Compose(a, b Pose) Pose {
	return &dualQuaternion{dualquat.Mul(toDualQuaternion(a).Number, toDualQuaternion(b).Number)}
}

// PoseInverse returns the pose which undoes p.
func PoseInverse(p Pose) Pose {
	o := OrientationInverse(p.Orientation())
	return NewPose(Rotate(o, p.Point().Mul(-1)), o)
}

// PoseBetween returns the pose which, composed after a, yields b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseAlmostEqual reports whether two poses share position to within 1e-8 and orientation to within 1e-5.
func PoseAlmostEqual(a, b Pose) bool {
	return a.Point().Sub(b.Point()).Norm() < 1e-8 && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// TransformPoint maps a point expressed in the pose's local frame into the parent frame.
func TransformPoint(p Pose, v r3.Vector) r3.Vector {
	return Rotate(p.Orientation(), v).Add(p.Point())
}
