package spatialmath

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/motioneval/utils"
)

// EulerOrder names a Tait-Bryan rotation sequence by its three axis letters. Upper case letters
// ("ZYX") are intrinsic rotations about the moving axes, so the rotation is R_Z(a) * R_Y(b) * R_X(c)
// with the angles given in letter order. Lower case letters ("zyx") are extrinsic rotations about the
// fixed axes, applied first to last.
type EulerOrder string

// Orders used by the evaluator by default.
const (
	OrderXYZ EulerOrder = "XYZ"
	OrderZYX EulerOrder = "ZYX"
)

// ParseEulerOrder validates s as a three letter Tait-Bryan order.
func ParseEulerOrder(s string) (EulerOrder, error) {
	if len(s) != 3 {
		return "", newEulerOrderError(s, "must have exactly three axes")
	}
	upper := strings.ToUpper(s)
	lower := strings.ToLower(s)
	if s != upper && s != lower {
		return "", newEulerOrderError(s, "cannot mix intrinsic and extrinsic axes")
	}
	seen := map[byte]bool{}
	for i := 0; i < 3; i++ {
		c := upper[i]
		if c < 'X' || c > 'Z' {
			return "", newEulerOrderError(s, "axes must be x, y or z")
		}
		if seen[c] {
			return "", newEulerOrderError(s, "only Tait-Bryan orders with three distinct axes are supported")
		}
		seen[c] = true
	}
	return EulerOrder(s), nil
}

// Intrinsic reports whether the order rotates about the moving axes.
func (o EulerOrder) Intrinsic() bool {
	return strings.ToUpper(string(o)) == string(o)
}

// Axes returns the axis indices (0 for x, 1 for y, 2 for z) in order.
func (o EulerOrder) Axes() [3]int {
	upper := strings.ToUpper(string(o))
	return [3]int{int(upper[0] - 'X'), int(upper[1] - 'X'), int(upper[2] - 'X')}
}

// Reverse returns the order with its axes reversed and its intrinsic flag flipped. A rotation built
// from o with angles (a, b, c) equals one built from o.Reverse() with angles (c, b, a).
func (o EulerOrder) Reverse() EulerOrder {
	s := []byte(string(o))
	s[0], s[2] = s[2], s[0]
	if o.Intrinsic() {
		return EulerOrder(strings.ToLower(string(s)))
	}
	return EulerOrder(strings.ToUpper(string(s)))
}

// ChannelNames returns the BVH style channel names ("Xrotation", ...) in order.
func (o EulerOrder) ChannelNames() [3]string {
	var names [3]string
	for i, axis := range o.Axes() {
		names[i] = axisName(axis) + "rotation"
	}
	return names
}

func axisQuaternion(axis int, angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	q := quat.Number{Real: c}
	switch axis {
	case 0:
		q.Imag = s
	case 1:
		q.Jmag = s
	default:
		q.Kmag = s
	}
	return q
}

// NewOrientationFromEuler builds the rotation described by three angles in radians, listed in the
// letter order of order.
func NewOrientationFromEuler(order EulerOrder, angles [3]float64) Orientation {
	axes := order.Axes()
	q0 := axisQuaternion(axes[0], angles[0])
	q1 := axisQuaternion(axes[1], angles[1])
	q2 := axisQuaternion(axes[2], angles[2])
	var q quat.Number
	if order.Intrinsic() {
		q = quat.Mul(quat.Mul(q0, q1), q2)
	} else {
		q = quat.Mul(quat.Mul(q2, q1), q0)
	}
	return NewQuaternion(q)
}

// NewOrientationFromEulerDegrees is NewOrientationFromEuler with the angles in degrees.
func NewOrientationFromEulerDegrees(order EulerOrder, degrees [3]float64) Orientation {
	return NewOrientationFromEuler(order, [3]float64{
		utils.DegToRad(degrees[0]),
		utils.DegToRad(degrees[1]),
		utils.DegToRad(degrees[2]),
	})
}

// EulerAngles decomposes o into three angles in radians, listed in the letter order of order.
// The middle angle lies in [-pi/2, pi/2], the outer two in (-pi, pi]. At gimbal lock the last angle
// is fixed to zero and the first absorbs the remaining rotation. Lock is declared when the middle
// angle is within about 1e-7 rad of +-pi/2.
func EulerAngles(o Orientation, order EulerOrder) [3]float64 {
	if !order.Intrinsic() {
		a := EulerAngles(o, order.Reverse())
		return [3]float64{a[2], a[1], a[0]}
	}
	rm := o.RotationMatrix()
	axes := order.Axes()
	i, j, k := axes[0], axes[1], axes[2]
	sign := -1.
	if (j-i+3)%3 == 1 {
		sign = 1
	}

	cosB := math.Hypot(rm.At(i, i), rm.At(i, j))
	b := math.Atan2(sign*rm.At(i, k), cosB)
	if cosB < gimbalLockEpsilon {
		// Only a+c (or a-c) is observable. Remove the middle rotation and read the first angle from
		// what is left, which is a pure rotation about axis i.
		n := rm.Mul(axisRotationMatrix(j, b).Transpose())
		p, q := (i+1)%3, (i+2)%3
		return [3]float64{math.Atan2(n.At(q, p), n.At(p, p)), b, 0}
	}
	a := math.Atan2(-sign*rm.At(j, k), rm.At(k, k))
	c := math.Atan2(-sign*rm.At(i, j), rm.At(i, i))
	return [3]float64{a, b, c}
}

// EulerAnglesDegrees is EulerAngles with the result in degrees.
func EulerAnglesDegrees(o Orientation, order EulerOrder) [3]float64 {
	a := EulerAngles(o, order)
	return [3]float64{utils.RadToDeg(a[0]), utils.RadToDeg(a[1]), utils.RadToDeg(a[2])}
}
