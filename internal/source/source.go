package source

import "errors"

const (
	// NumJoints is the number of tracked joints per frame.
	NumJoints = 26
	// NumCoords is the number of coordinate axes per joint (X, Y, Z).
	NumCoords = 3
)

// Frame holds one frame's joint coordinates indexed [axis][joint].
type Frame [NumCoords][NumJoints]float64

// Sequence is the full recording of one pose file.
type Sequence struct {
	Name   string
	Frames []Frame
}

// Source is a read-only indexed collection of windows.
// Window returns an owned copy of the window's frames together with its majority label.
type Source interface {
	Len() int
	Window(index int) ([]Frame, int, error)
	Close() error
}

var ErrMalformedFrame = errors.New("malformed pose frame")

// CopyFrames returns an independent copy of frames.
func CopyFrames(frames []Frame) []Frame {
	out := make([]Frame, len(frames))
	copy(out, frames)
	return out
}
