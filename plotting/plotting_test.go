package plotting

import (
	"bytes"
	"context"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/motioneval/bvh"
	"go.viam.com/motioneval/motion"
)

func comparison(t *testing.T, minFrame int) *motion.Comparison {
	t.Helper()
	rot := []bvh.Channel{bvh.Zrotation, bvh.Yrotation, bvh.Xrotation}
	joints := func() []*bvh.Joint {
		return []*bvh.Joint{
			{Name: "Root", Parent: -1, Channels: append([]bvh.Channel{bvh.Xposition, bvh.Yposition, bvh.Zposition}, rot...)},
			{Name: "Arm", Parent: 0, Offset: r3.Vector{X: 0.3}, Channels: rot},
		}
	}
	frames := func(bend float64) [][]float64 {
		out := make([][]float64, 20)
		for i := range out {
			out[i] = []float64{0, 1, 0.05 * float64(i), 0, 0, 0, bend * float64(i), 0, 0}
		}
		return out
	}
	ref, err := bvh.NewFile(joints(), 0.01, frames(1))
	test.That(t, err, test.ShouldBeNil)
	cand, err := bvh.NewFile(joints(), 0.01, frames(1.5))
	test.That(t, err, test.ShouldBeNil)

	refSeq, candSeq := bvh.NewSequence(ref), bvh.NewSequence(cand)
	skeleton, err := motion.SkeletonFromProvider(refSeq, "")
	test.That(t, err, test.ShouldBeNil)
	opts := motion.DefaultOptions()
	opts.MinFrame = minFrame
	opts.CandidateOrder = opts.ReferenceOrder
	c, err := motion.Compare(context.Background(), skeleton, refSeq, candSeq, opts)
	test.That(t, err, test.ShouldBeNil)
	return c
}

func TestErrorSeries(t *testing.T) {
	c := comparison(t, 5)
	series, err := ErrorSeries(c, []string{"Arm"}, motion.RotationMetricEuler)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, series, test.ShouldHaveLength, 1)
	test.That(t, series[0].Joint, test.ShouldEqual, "Arm")
	test.That(t, series[0].Position, test.ShouldHaveLength, 15)
	test.That(t, series[0].Position[0].X, test.ShouldEqual, 5.0)
	test.That(t, series[0].Position[0].Y, test.ShouldAlmostEqual, 0)
	test.That(t, series[0].Rotation[14].Y, test.ShouldBeGreaterThan, 0)

	all, err := ErrorSeries(c, nil, motion.RotationMetricGeodesic)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, all, test.ShouldHaveLength, 2)

	_, err = ErrorSeries(c, []string{"Leg"}, motion.RotationMetricEuler)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRender(t *testing.T) {
	c := comparison(t, 2)
	var buf bytes.Buffer
	err := Render(&buf, c, Options{Title: "walk", Width: 4 * 72, Height: 3 * 72})
	test.That(t, err, test.ShouldBeNil)
	img, err := png.Decode(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldBeGreaterThan, 0)

	path := filepath.Join(t.TempDir(), "errors.png")
	test.That(t, Save(path, c, Options{Joints: []string{"Root"}}), test.ShouldBeNil)

	test.That(t, Render(&buf, comparison(t, 50), Options{}), test.ShouldNotBeNil)
}
