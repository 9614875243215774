package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th column.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of 9 values in row major order.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, newRotationMatrixInputError(m)
	}
	var rm RotationMatrix
	copy(rm.mat[:], m)
	return &rm, nil
}

// NewRotationMatrixFromRows creates the rotation matrix from three rows.
func NewRotationMatrixFromRows(rows [3][3]float64) *RotationMatrix {
	var rm RotationMatrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rm.mat[3*r+c] = rows[r][c]
		}
	}
	return &rm
}

// NewRotationMatrixFromMat3 converts a mathgl matrix, which is column major.
func NewRotationMatrixFromMat3(m mgl64.Mat3) *RotationMatrix {
	var rm RotationMatrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rm.mat[3*r+c] = m.At(r, c)
		}
	}
	return &rm
}

// axisRotationMatrix is the elementary rotation by angle radians about a single coordinate axis.
func axisRotationMatrix(axis int, angle float64) *RotationMatrix {
	s, c := math.Sincos(angle)
	switch axis {
	case 0:
		return NewRotationMatrixFromRows([3][3]float64{{1, 0, 0}, {0, c, -s}, {0, s, c}})
	case 1:
		return NewRotationMatrixFromRows([3][3]float64{{c, 0, s}, {0, 1, 0}, {-s, 0, c}})
	default:
		return NewRotationMatrixFromRows([3][3]float64{{c, -s, 0}, {s, c, 0}, {0, 0, 1}})
	}
}

// AxisAngles returns the orientation in axis angle representation.
func (rm *RotationMatrix) AxisAngles() *R4AA {
	return QuatToR4AA(rm.Quaternion())
}

// Quaternion returns orientation in quaternion representation.
// reference: http://www.euclideanspace.com/maths/geometry/rotations/conversions/matrixToQuaternion/index.htm
func (rm *RotationMatrix) Quaternion() quat.Number {
	var q quat.Number
	m := rm.mat
	tr := m[0] + m[4] + m[8]
	switch {
	case tr > 0:
		s := 0.5 / math.Sqrt(tr+1.0)
		q.Real = 0.25 / s
		q.Imag = (m[7] - m[5]) * s
		q.Jmag = (m[2] - m[6]) * s
		q.Kmag = (m[3] - m[1]) * s
	case (m[0] > m[4]) && (m[0] > m[8]):
		s := 2.0 * math.Sqrt(1.0+m[0]-m[4]-m[8])
		q.Real = (m[7] - m[5]) / s
		q.Imag = 0.25 * s
		q.Jmag = (m[1] + m[3]) / s
		q.Kmag = (m[2] + m[6]) / s
	case m[4] > m[8]:
		s := 2.0 * math.Sqrt(1.0+m[4]-m[0]-m[8])
		q.Real = (m[2] - m[6]) / s
		q.Imag = (m[1] + m[3]) / s
		q.Jmag = 0.25 * s
		q.Kmag = (m[5] + m[7]) / s
	default:
		s := 2.0 * math.Sqrt(1.0+m[8]-m[0]-m[4])
		q.Real = (m[3] - m[1]) / s
		q.Imag = (m[2] + m[6]) / s
		q.Jmag = (m[5] + m[7]) / s
		q.Kmag = 0.25 * s
	}
	return Normalize(q)
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (rm *RotationMatrix) RotationMatrix() *RotationMatrix {
	return rm
}

// At returns the value in the rotation matrix at the row-column pair.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the a 3 element vector corresponding to the specified row.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Mul returns the matrix product rm * other.
func (rm *RotationMatrix) Mul(other *RotationMatrix) *RotationMatrix {
	return NewRotationMatrixFromMat3(rm.Mat3().Mul3(other.Mat3()))
}

// Transpose returns the transpose, which for a rotation is also its inverse.
func (rm *RotationMatrix) Transpose() *RotationMatrix {
	return NewRotationMatrixFromMat3(rm.Mat3().Transpose())
}

// MulVec applies the rotation to v.
func (rm *RotationMatrix) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{X: rm.Row(0).Dot(v), Y: rm.Row(1).Dot(v), Z: rm.Row(2).Dot(v)}
}

// Mat3 returns the matrix as a column major mathgl matrix.
func (rm *RotationMatrix) Mat3() mgl64.Mat3 {
	var m mgl64.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.Set(r, c, rm.mat[3*r+c])
		}
	}
	return m
}

// Dense returns a copy of the matrix as a gonum dense matrix.
func (rm *RotationMatrix) Dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, rm.mat[:])
	return mat.NewDense(3, 3, data)
}

// RotationMatrixAlmostEqual reports whether every element of the two matrices is within tol.
func RotationMatrixAlmostEqual(a, b *RotationMatrix, tol float64) bool {
	return mat.EqualApprox(a.Dense(), b.Dense(), tol)
}

// IsValidRotationMatrix reports whether rm is orthonormal with determinant 1, to within tol.
func IsValidRotationMatrix(rm *RotationMatrix, tol float64) bool {
	d := rm.Dense()
	var prod mat.Dense
	prod.Mul(d, d.T())
	ident := mat.NewDiagDense(3, []float64{1, 1, 1})
	if !mat.EqualApprox(&prod, ident, tol) {
		return false
	}
	return math.Abs(mat.Det(d)-1) <= tol
}
