package motion

import "go.viam.com/motioneval/utils"

// Window is the half-open range of frames [Min, Max) that gets compared.
type Window struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// NewWindow skips the first minFrame frames and stops at the end of the shorter sequence. Frame
// indices are never realigned between the two sequences.
func NewWindow(minFrame int, reference, candidate PoseProvider) Window {
	return Window{Min: minFrame, Max: utils.MinInt(reference.FrameCount(), candidate.FrameCount())}
}

// Len is the number of frames in the window, zero when Max <= Min.
func (w Window) Len() int {
	if w.Max <= w.Min {
		return 0
	}
	return w.Max - w.Min
}

// Empty reports whether the window contains no frames.
func (w Window) Empty() bool {
	return w.Len() == 0
}
