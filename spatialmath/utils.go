package spatialmath

import (
	"fmt"

	"github.com/pkg/errors"
)

// If the cosine of the middle Tait-Bryan angle is below this value, which puts the angle within
// about 1e-7 rad of +-pi/2, the decomposition treats the rotation as gimbal locked. SciPy's
// Rotation.as_euler uses the same 1e-7 angular threshold.
const gimbalLockEpsilon = 1e-7

func newRotationMatrixInputError(m []float64) error {
	return errors.Errorf("input slice has %d elements, need exactly 9", len(m))
}

func newEulerOrderError(order string, reason string) error {
	return errors.Errorf("invalid euler order %q: %s", order, reason)
}

func axisName(axis int) string {
	return fmt.Sprintf("%c", 'X'+rune(axis))
}
