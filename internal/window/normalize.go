package window

import "github.com/ivlev/gesturewin/internal/source"

// Normalize rescales each coordinate axis of a window to [0,1] using the
// window's own min and max over all frames and joints. A constant axis becomes 0.
func Normalize(frames []source.Frame) []source.Frame {
	out := make([]source.Frame, len(frames))
	if len(frames) == 0 {
		return out
	}

	for c := 0; c < source.NumCoords; c++ {
		lo, hi := frames[0][c][0], frames[0][c][0]
		for f := range frames {
			for _, v := range frames[f][c] {
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
		}

		span := hi - lo
		for f := range frames {
			for j, v := range frames[f][c] {
				if span == 0 {
					out[f][c][j] = 0
				} else {
					out[f][c][j] = (v - lo) / span
				}
			}
		}
	}

	return out
}
