package evaluate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/motioneval/bvh"
)

const (
	fixtureFrames    = 12
	fixtureFrameTime = 0.02
)

var (
	zyx = []bvh.Channel{bvh.Zrotation, bvh.Yrotation, bvh.Xrotation}
	xyz = []bvh.Channel{bvh.Xrotation, bvh.Yrotation, bvh.Zrotation}
)

// clip describes a three joint walk whose rotations are all about Y, so the same values read
// identically whatever the channel order.
type clip struct {
	rotations []bvh.Channel
	// drift is added to the root X position once per frame.
	drift float64
}

func (c clip) file(t *testing.T) *bvh.File {
	t.Helper()
	end := r3.Vector{Y: 0.2}
	rootChannels := append([]bvh.Channel{bvh.Xposition, bvh.Yposition, bvh.Zposition}, c.rotations...)
	joints := []*bvh.Joint{
		{Name: "Root", Parent: -1, Channels: rootChannels},
		{Name: "Spine", Parent: 0, Offset: r3.Vector{Y: 0.5}, Channels: c.rotations},
		{Name: "Head", Parent: 1, Offset: r3.Vector{Y: 0.4}, Channels: c.rotations, EndSite: &end},
	}
	frames := make([][]float64, fixtureFrames)
	for i := range frames {
		fi := float64(i)
		row := []float64{0.1*fi + c.drift*fi, 1, 0}
		for _, deg := range []float64{3 * fi, 2 * fi, fi} {
			row = append(row, yOnly(c.rotations, deg)...)
		}
		frames[i] = row
	}
	f, err := bvh.NewFile(joints, fixtureFrameTime, frames)
	test.That(t, err, test.ShouldBeNil)
	return f
}

func yOnly(order []bvh.Channel, deg float64) []float64 {
	out := make([]float64, len(order))
	for i, ch := range order {
		if ch == bvh.Yrotation {
			out[i] = deg
		}
	}
	return out
}

// writeClips writes each clip under dir by name and returns dir.
func writeClips(t *testing.T, dir string, clips map[string]clip) string {
	t.Helper()
	test.That(t, os.MkdirAll(dir, 0o750), test.ShouldBeNil)
	for name, c := range clips {
		test.That(t, c.file(t).WriteFile(filepath.Join(dir, name)), test.ShouldBeNil)
	}
	return dir
}
