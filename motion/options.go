package motion

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/motioneval/spatialmath"
)

// RotationMetric selects how rotation differences are measured.
type RotationMetric string

const (
	// RotationMetricEuler differences canonical XYZ Euler vectors component by component.
	RotationMetricEuler RotationMetric = "euler"
	// RotationMetricGeodesic uses the angle between the two relative rotations.
	RotationMetricGeodesic RotationMetric = "geodesic"
)

// AngleUnit is the unit rotation differences and the rotation tolerance are expressed in.
type AngleUnit string

// Supported angle units.
const (
	Radians AngleUnit = "radians"
	Degrees AngleUnit = "degrees"
)

// Defaults used when no configuration overrides them.
const (
	DefaultMinFrame          = 40
	DefaultPositionTolerance = 0.1
	DefaultRotationTolerance = 1.0
)

// CanonicalOrder is the Euler order every rotation is re-expressed in before differencing.
const CanonicalOrder = spatialmath.OrderXYZ

// Options controls a comparison.
type Options struct {
	MinFrame          int                    `json:"min_frame"`
	PositionTolerance float64                `json:"position_tolerance"`
	RotationTolerance float64                `json:"rotation_tolerance"`
	ReferenceOrder    spatialmath.EulerOrder `json:"reference_order"`
	CandidateOrder    spatialmath.EulerOrder `json:"candidate_order"`
	RotationMetric    RotationMetric         `json:"rotation_metric"`
	RotationUnits     AngleUnit              `json:"rotation_units"`
}

// DefaultOptions returns the options matching the evaluation dataset: a 40 frame warm-up, reference
// channels in ZYX order and candidate channels in XYZ order.
func DefaultOptions() Options {
	return Options{
		MinFrame:          DefaultMinFrame,
		PositionTolerance: DefaultPositionTolerance,
		RotationTolerance: DefaultRotationTolerance,
		ReferenceOrder:    spatialmath.OrderZYX,
		CandidateOrder:    spatialmath.OrderXYZ,
		RotationMetric:    RotationMetricEuler,
		RotationUnits:     Radians,
	}
}

// Validate checks that the options can drive a comparison.
func (o Options) Validate() error {
	if o.MinFrame < 0 {
		return errors.Errorf("min frame must be non-negative, got %d", o.MinFrame)
	}
	if !validTolerance(o.PositionTolerance) {
		return errors.Errorf("position tolerance must be a non-negative number, got %v", o.PositionTolerance)
	}
	if !validTolerance(o.RotationTolerance) {
		return errors.Errorf("rotation tolerance must be a non-negative number, got %v", o.RotationTolerance)
	}
	if _, err := spatialmath.ParseEulerOrder(string(o.ReferenceOrder)); err != nil {
		return errors.Wrap(err, "reference order")
	}
	if _, err := spatialmath.ParseEulerOrder(string(o.CandidateOrder)); err != nil {
		return errors.Wrap(err, "candidate order")
	}
	switch o.RotationMetric {
	case RotationMetricEuler, RotationMetricGeodesic:
	default:
		return errors.Errorf("unknown rotation metric %q", o.RotationMetric)
	}
	switch o.RotationUnits {
	case Radians, Degrees:
	default:
		return errors.Errorf("unknown rotation units %q", o.RotationUnits)
	}
	return nil
}

func validTolerance(tol float64) bool {
	return tol >= 0 && !math.IsInf(tol, 1)
}
