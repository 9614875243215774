// Package spatialmath defines the rotation math used to bring joint readings from different
// channel conventions into a common frame.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	AxisAngles() *R4AA
	Quaternion() quat.Number
	RotationMatrix() *RotationMatrix
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// OrientationBetween returns the orientation representing the difference between the two given Orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// OrientationInverse returns the orientation which undoes o.
func OrientationInverse(o Orientation) Orientation {
	q := quaternion(quat.Conj(o.Quaternion()))
	return &q
}

// Rotate applies the orientation to a point.
func Rotate(o Orientation, p r3.Vector) r3.Vector {
	return RotateVector(o.Quaternion(), p)
}

// RotateInverse applies the inverse of the orientation to a point, i.e. expresses a world
// direction in the local frame that o describes.
func RotateInverse(o Orientation, p r3.Vector) r3.Vector {
	return RotateVector(quat.Conj(o.Quaternion()), p)
}

// AngularDistance returns the geodesic angle in radians, in [0, pi], separating two orientations.
func AngularDistance(o1, o2 Orientation) float64 {
	diff := quat.Mul(quat.Conj(o1.Quaternion()), o2.Quaternion())
	return QuatToR4AA(diff).Theta
}
