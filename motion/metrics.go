package motion

import (
	"context"

	"gonum.org/v1/gonum/floats"
)

// JointError holds the mean errors of a single joint over the window.
type JointError struct {
	Joint string  `json:"joint"`
	MPJPE float64 `json:"mpjpe"`
	MPJRE float64 `json:"mpjre"`
}

// ErrorReport lists per joint mean errors in skeleton order. It is empty when the window is.
type ErrorReport struct {
	Joints []JointError `json:"joints,omitempty"`
}

// Empty reports whether the report has no entries.
func (r ErrorReport) Empty() bool {
	return len(r.Joints) == 0
}

// Lookup returns the entry for joint.
func (r ErrorReport) Lookup(joint string) (JointError, bool) {
	for _, je := range r.Joints {
		if je.Joint == joint {
			return je, true
		}
	}
	return JointError{}, false
}

// MeanMPJPE averages MPJPE over joints.
func (r ErrorReport) MeanMPJPE() float64 {
	if r.Empty() {
		return 0
	}
	values := make([]float64, len(r.Joints))
	for i, je := range r.Joints {
		values[i] = je.MPJPE
	}
	return floats.Sum(values) / float64(len(values))
}

// MeanMPJRE averages MPJRE over joints.
func (r ErrorReport) MeanMPJRE() float64 {
	if r.Empty() {
		return 0
	}
	values := make([]float64, len(r.Joints))
	for i, je := range r.Joints {
		values[i] = je.MPJRE
	}
	return floats.Sum(values) / float64(len(values))
}

// Result is the verdict and error report of one comparison.
type Result struct {
	Window          Window      `json:"window"`
	PositionSuccess bool        `json:"position_success"`
	RotationSuccess bool        `json:"rotation_success"`
	Success         bool        `json:"success"`
	Report          ErrorReport `json:"report"`
}

// Within reports whether no component of any vector in diff exceeds tol. An empty track passes.
func Within(diff Track, tol float64) bool {
	for _, row := range diff {
		for _, v := range row {
			if v.X > tol || v.Y > tol || v.Z > tol {
				return false
			}
		}
	}
	return true
}

// WithinAngles reports whether no value in diff exceeds tol.
func WithinAngles(diff [][]float64, tol float64) bool {
	for _, row := range diff {
		if len(row) > 0 && floats.Max(row) > tol {
			return false
		}
	}
	return true
}

// FrameErrors returns, per joint, the Euclidean norm of reference minus candidate at every frame.
// The result is indexed [joint][frame].
func FrameErrors(reference, candidate Track) [][]float64 {
	if len(reference) == 0 {
		return nil
	}
	joints := len(reference[0])
	out := make([][]float64, joints)
	for j := range out {
		out[j] = make([]float64, len(reference))
	}
	for f := range reference {
		for j := range reference[f] {
			out[j][f] = reference[f][j].Sub(candidate[f][j]).Norm()
		}
	}
	return out
}

// MeanJointErrors is the mean over frames of FrameErrors, one value per joint.
func MeanJointErrors(reference, candidate Track) []float64 {
	return meanRows(FrameErrors(reference, candidate))
}

func meanRows(values [][]float64) []float64 {
	out := make([]float64, len(values))
	for j, row := range values {
		if len(row) > 0 {
			out[j] = floats.Sum(row) / float64(len(row))
		}
	}
	return out
}

// Score applies the tolerances in opts to c and aggregates per joint errors.
func Score(c *Comparison, opts Options) *Result {
	res := &Result{Window: c.Window}
	res.PositionSuccess = Within(c.PositionDiff, opts.PositionTolerance)
	if opts.RotationMetric == RotationMetricGeodesic {
		res.RotationSuccess = WithinAngles(c.AngularDiff, opts.RotationTolerance)
	} else {
		res.RotationSuccess = Within(c.RotationDiff, opts.RotationTolerance)
	}
	res.Success = res.PositionSuccess && res.RotationSuccess
	if c.Window.Empty() {
		return res
	}

	mpjpe := meanRows(c.PositionFrameErrors())
	mpjre := meanRows(c.RotationFrameErrors(opts.RotationMetric))
	joints := c.Skeleton.Joints()
	res.Report.Joints = make([]JointError, len(joints))
	for j, name := range joints {
		res.Report.Joints[j] = JointError{Joint: name, MPJPE: mpjpe[j], MPJRE: mpjre[j]}
	}
	return res
}

// Evaluate compares candidate against reference and scores the comparison.
func Evaluate(
	ctx context.Context,
	skeleton *Skeleton,
	reference, candidate PoseProvider,
	opts Options,
) (*Result, *Comparison, error) {
	c, err := Compare(ctx, skeleton, reference, candidate, opts)
	if err != nil {
		return nil, nil, err
	}
	return Score(c, opts), c, nil
}
