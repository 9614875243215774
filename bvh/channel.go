package bvh

import (
	"github.com/pkg/errors"
)

// Channel is one degree of freedom of a joint as listed in a CHANNELS statement.
type Channel int

// The six channel kinds a BVH file can declare.
const (
	Xposition Channel = iota
	Yposition
	Zposition
	Xrotation
	Yrotation
	Zrotation
)

var channelNames = [...]string{"Xposition", "Yposition", "Zposition", "Xrotation", "Yrotation", "Zrotation"}

func (c Channel) String() string {
	if c < Xposition || c > Zrotation {
		return "Unknown"
	}
	return channelNames[c]
}

// ParseChannel maps a channel name such as "Zrotation" to its Channel. Names are case sensitive.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, errors.Errorf("unknown channel %q", name)
}

// IsRotation reports whether the channel holds an angle.
func (c Channel) IsRotation() bool {
	return c >= Xrotation
}

// Axis is 0, 1 or 2 for the x, y and z axis.
func (c Channel) Axis() int {
	return int(c) % 3
}

// RotationChannel returns the rotation channel about axis.
func RotationChannel(axis int) Channel {
	return Xrotation + Channel(axis)
}

// PositionChannel returns the position channel along axis.
func PositionChannel(axis int) Channel {
	return Xposition + Channel(axis)
}
