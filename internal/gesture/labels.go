package gesture

import (
	"errors"
	"fmt"
)

// MaxFrames is the fixed length of a per-frame label array.
const MaxFrames = 780

// NonGesture is the label index assigned to frames outside every annotated span.
const NonGesture = 16

// Labels lists the gesture vocabulary in index order.
var Labels = [...]string{
	"ONE", "TWO", "THREE", "FOUR", "OK", "MENU", "LEFT", "RIGHT",
	"CIRCLE", "V", "CROSS", "GRAB", "PINCH", "DENY", "WAVE", "KNOB",
	"nongesture",
}

// NumLabels is the number of label indices, non-gesture included.
const NumLabels = len(Labels)

var (
	ErrUnknownLabel        = errors.New("unknown gesture label")
	ErrMalformedAnnotation = errors.New("malformed annotation line")
	ErrSpanOutOfRange      = errors.New("annotation span out of range")
)

var labelIndex = func() map[string]int {
	m := make(map[string]int, len(Labels))
	for i, name := range Labels {
		m[name] = i
	}
	return m
}()

// LabelIndex returns the index of a gesture name.
func LabelIndex(name string) (int, error) {
	idx, ok := labelIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, name)
	}
	return idx, nil
}

// LabelName returns the gesture name for an index, or "" when out of range.
func LabelName(idx int) string {
	if idx < 0 || idx >= NumLabels {
		return ""
	}
	return Labels[idx]
}
