// Package bvh reads and writes Biovision Hierarchy motion capture files and exposes them as pose
// sequences.
package bvh

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ErrMissingChannel is returned when a joint does not declare a requested channel.
var ErrMissingChannel = errors.New("missing channel")

// Joint is a node of the skeleton hierarchy. End sites are not joints; they hang off their parent
// joint as EndSite.
type Joint struct {
	Name string
	// Parent is the index of the parent joint in File.Joints, -1 for the root.
	Parent   int
	Offset   r3.Vector
	Channels []Channel
	EndSite  *r3.Vector

	column int
}

// Column is the index of the joint's first channel in a motion frame.
func (j *Joint) Column() int {
	return j.column
}

// ChannelColumn returns the motion column holding ch for this joint.
func (j *Joint) ChannelColumn(ch Channel) (int, bool) {
	for i, c := range j.Channels {
		if c == ch {
			return j.column + i, true
		}
	}
	return 0, false
}

// File is a parsed BVH file. Joints are stored in hierarchy (depth first) order so that every
// parent precedes its children.
type File struct {
	Joints    []*Joint
	FrameTime float64
	Frames    [][]float64

	hierarchy []string
	index     map[string]int
	channels  int
}

// NewFile assembles a File from joints in hierarchy order and their motion. Motion columns are
// assigned to joints in order.
func NewFile(joints []*Joint, frameTime float64, frames [][]float64) (*File, error) {
	f := &File{Joints: joints, FrameTime: frameTime, Frames: frames}
	if err := f.buildIndex(); err != nil {
		return nil, err
	}
	for i, row := range frames {
		if len(row) != f.channels {
			return nil, errors.Errorf("frame %d has %d values, hierarchy declares %d channels", i, len(row), f.channels)
		}
	}
	return f, nil
}

func (f *File) buildIndex() error {
	if len(f.Joints) == 0 {
		return errors.New("hierarchy has no joints")
	}
	f.index = make(map[string]int, len(f.Joints))
	f.channels = 0
	for i, j := range f.Joints {
		if i == 0 && j.Parent != -1 {
			return errors.Errorf("first joint %q must be the root", j.Name)
		}
		if i > 0 && (j.Parent < 0 || j.Parent >= i) {
			return errors.Errorf("joint %q has parent %d, which does not precede it", j.Name, j.Parent)
		}
		if _, ok := f.index[j.Name]; ok {
			return errors.Errorf("duplicate joint %q", j.Name)
		}
		f.index[j.Name] = i
		j.column = f.channels
		f.channels += len(j.Channels)
	}
	return nil
}

// ChannelCount is the number of values in each frame.
func (f *File) ChannelCount() int {
	return f.channels
}

// FrameCount is the number of frames of motion.
func (f *File) FrameCount() int {
	return len(f.Frames)
}

// Joint looks up a joint by name.
func (f *File) Joint(name string) (*Joint, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.Joints[i], true
}

// JointNames lists joint names in hierarchy order.
func (f *File) JointNames() []string {
	names := make([]string, len(f.Joints))
	for i, j := range f.Joints {
		names[i] = j.Name
	}
	return names
}

// Value returns the value of one channel of a joint at frame.
func (f *File) Value(frame int, joint string, ch Channel) (float64, error) {
	if frame < 0 || frame >= len(f.Frames) {
		return 0, errors.Errorf("frame %d out of range [0, %d)", frame, len(f.Frames))
	}
	j, ok := f.Joint(joint)
	if !ok {
		return 0, errors.Errorf("unknown joint %q", joint)
	}
	col, ok := j.ChannelColumn(ch)
	if !ok {
		return 0, errors.Wrapf(ErrMissingChannel, "joint %q has no %s channel", joint, ch)
	}
	return f.Frames[frame][col], nil
}

// Duration is the length of the clip in seconds.
func (f *File) Duration() float64 {
	return float64(len(f.Frames)) * f.FrameTime
}

func (f *File) String() string {
	return fmt.Sprintf("bvh file with %d joints, %d channels, %d frames", len(f.Joints), f.channels, len(f.Frames))
}
