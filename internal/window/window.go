package window

import (
	"fmt"

	"github.com/ivlev/gesturewin/internal/gesture"
	"github.com/ivlev/gesturewin/internal/source"
)

// Window is a contiguous slice of frames from one sequence with its labels.
type Window struct {
	Frames   []source.Frame
	Labels   []int
	Majority int
	Source   string
	Start    int // inclusive
	End      int // inclusive
}

// Build slides a window of size w with the given stride over seq.
// Start indices are 0, stride, 2*stride, ... while start+w <= len(seq.Frames);
// a trailing partial window is dropped. frameLabels must cover every frame.
func Build(seq source.Sequence, frameLabels []int, w, stride int) ([]Window, error) {
	if w <= 0 || stride <= 0 {
		return nil, fmt.Errorf("window size and stride must be positive, got w=%d stride=%d", w, stride)
	}
	if len(frameLabels) < len(seq.Frames) {
		return nil, fmt.Errorf("%s: %d frames but only %d frame labels", seq.Name, len(seq.Frames), len(frameLabels))
	}

	var windows []Window
	for start := 0; start+w <= len(seq.Frames); start += stride {
		labels := make([]int, w)
		copy(labels, frameLabels[start:start+w])

		windows = append(windows, Window{
			Frames:   source.CopyFrames(seq.Frames[start : start+w]),
			Labels:   labels,
			Majority: Majority(labels),
			Source:   seq.Name,
			Start:    start,
			End:      start + w - 1,
		})
	}

	return windows, nil
}

// Majority returns the most frequent label; ties go to the lowest label index.
func Majority(labels []int) int {
	var counts [gesture.NumLabels]int
	for _, l := range labels {
		if l >= 0 && l < gesture.NumLabels {
			counts[l]++
		}
	}

	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}
