package bvh

import (
	"github.com/pkg/errors"
)

// DefaultConvertColumns are the motion columns dropped when converting the AMASS layout to the
// MoConVQ skeleton: the hand and finger channels the target hierarchy does not have.
var DefaultConvertColumns = func() []int {
	cols := []int{36, 37, 38, 42, 43, 44}
	for c := 57; c <= 101; c++ {
		cols = append(cols, c)
	}
	for c := 114; c <= 158; c++ {
		cols = append(cols, c)
	}
	return cols
}()

// Convert drops the given motion columns from input and pairs the remaining motion with the
// hierarchy of target. The result keeps input's frame time and target's hierarchy text.
func Convert(input, target *File, deleteColumns []int) (*File, error) {
	drop := make(map[int]struct{}, len(deleteColumns))
	for _, c := range deleteColumns {
		if c < 0 || c >= input.ChannelCount() {
			return nil, errors.Errorf("column %d out of range, input has %d channels", c, input.ChannelCount())
		}
		drop[c] = struct{}{}
	}
	keep := make([]int, 0, input.ChannelCount()-len(drop))
	for c := 0; c < input.ChannelCount(); c++ {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	if len(keep) != target.ChannelCount() {
		return nil, errors.Errorf(
			"%d columns remain after deleting %d, target hierarchy declares %d channels",
			len(keep), len(drop), target.ChannelCount())
	}

	frames := make([][]float64, len(input.Frames))
	for i, row := range input.Frames {
		out := make([]float64, len(keep))
		for k, c := range keep {
			out[k] = row[c]
		}
		frames[i] = out
	}

	joints := make([]*Joint, len(target.Joints))
	for i, j := range target.Joints {
		copied := *j
		copied.Channels = append([]Channel(nil), j.Channels...)
		joints[i] = &copied
	}
	out, err := NewFile(joints, input.FrameTime, frames)
	if err != nil {
		return nil, err
	}
	out.hierarchy = target.hierarchy
	return out, nil
}
