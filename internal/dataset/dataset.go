package dataset

import (
	"errors"
	"fmt"

	"github.com/ivlev/gesturewin/internal/source"
	"github.com/ivlev/gesturewin/internal/window"
)

var (
	ErrAnnotationsNotFound = errors.New("annotation file not found")
	ErrSequenceTooLong     = errors.New("sequence longer than label array")
	ErrShapeMismatch       = errors.New("array shape mismatch")
)

// Dataset is the in-memory result of one assembly run. Windows keep
// file-processing order and, within a file, increasing start index.
type Dataset struct {
	Size      int // frames per window
	Stride    int
	Sequences []source.Sequence
	Windows   []window.Window
}

func (d *Dataset) Len() int {
	return len(d.Windows)
}

// At returns the pose slice, majority label and per-frame labels of window i.
func (d *Dataset) At(i int) ([]source.Frame, int, []int) {
	w := d.Windows[i]
	return w.Frames, w.Majority, w.Labels
}

// Window implements source.Source with owned copies.
func (d *Dataset) Window(i int) ([]source.Frame, int, error) {
	if i < 0 || i >= len(d.Windows) {
		return nil, 0, fmt.Errorf("window %d out of range [0,%d)", i, len(d.Windows))
	}
	return source.CopyFrames(d.Windows[i].Frames), d.Windows[i].Majority, nil
}

func (d *Dataset) Close() error {
	return nil
}
