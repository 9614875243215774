// Package plotting draws per frame comparison errors.
package plotting

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"go.viam.com/motioneval/motion"
)

// Default image size.
const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 8 * vg.Inch
)

// Options selects what gets plotted.
type Options struct {
	// Joints to draw. Empty draws every joint of the comparison.
	Joints []string
	Metric motion.RotationMetric
	Units  motion.AngleUnit
	Title  string
	Width  vg.Length
	Height vg.Length
}

// Series is the per frame error of one joint.
type Series struct {
	Joint    string
	Position plotter.XYs
	Rotation plotter.XYs
}

// ErrorSeries extracts per frame position and rotation errors of the selected joints. X values are
// frame indices of the original sequences.
func ErrorSeries(c *motion.Comparison, joints []string, metric motion.RotationMetric) ([]Series, error) {
	if len(joints) == 0 {
		joints = c.Skeleton.Joints()
	}
	position := c.PositionFrameErrors()
	rotation := c.RotationFrameErrors(metric)

	series := make([]Series, 0, len(joints))
	for _, joint := range joints {
		j, ok := c.Skeleton.Index(joint)
		if !ok {
			return nil, errors.Errorf("joint %q is not part of the skeleton", joint)
		}
		s := Series{Joint: joint}
		if j < len(position) {
			s.Position = toXYs(c.Window.Min, position[j])
		}
		if j < len(rotation) {
			s.Rotation = toXYs(c.Window.Min, rotation[j])
		}
		series = append(series, s)
	}
	return series, nil
}

func toXYs(first int, values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(first + i), Y: v}
	}
	return pts
}

// Render draws position errors above rotation errors and writes the image as PNG.
func Render(w io.Writer, c *motion.Comparison, opts Options) error {
	if c.Window.Empty() {
		return errors.New("nothing to plot: comparison window is empty")
	}
	series, err := ErrorSeries(c, opts.Joints, opts.Metric)
	if err != nil {
		return err
	}

	units := opts.Units
	if units == "" {
		units = motion.Radians
	}
	posPlot := newPlot(opts.Title, "position error")
	rotPlot := newPlot("", fmt.Sprintf("rotation error (%s)", units))
	for i, s := range series {
		if err := addLine(posPlot, i, s.Joint, s.Position); err != nil {
			return err
		}
		if err := addLine(rotPlot, i, s.Joint, s.Rotation); err != nil {
			return err
		}
	}

	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Millimeter, PadTop: vg.Millimeter, PadBottom: vg.Millimeter}
	canvases := plot.Align([][]*plot.Plot{{posPlot}, {rotPlot}}, tiles, dc)
	posPlot.Draw(canvases[0][0])
	rotPlot.Draw(canvases[1][0])

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return errors.Wrap(err, "cannot write plot")
	}
	return nil
}

// Save renders to a PNG file at path.
func Save(path string, c *motion.Comparison, opts Options) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return Render(f, c, opts)
}

func newPlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "frame"
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p
}

func addLine(p *plot.Plot, i int, label string, pts plotter.XYs) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrapf(err, "cannot plot %s", label)
	}
	line.Color = plotutil.Color(i)
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}
