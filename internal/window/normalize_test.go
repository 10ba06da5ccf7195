package window

import (
	"math"
	"testing"

	"github.com/ivlev/gesturewin/internal/source"
)

func TestNormalizeRange(t *testing.T) {
	frames := makeSequence(6).Frames
	norm := Normalize(frames)

	for c := 0; c < source.NumCoords; c++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for f := range norm {
			for _, v := range norm[f][c] {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
		if lo != 0 || hi != 1 {
			t.Errorf("axis %d: range [%f,%f], want [0,1]", c, lo, hi)
		}
	}

	if frames[5][0][25] != 5025 {
		t.Error("Normalize must not modify its input")
	}
}

func TestNormalizeConstantAxis(t *testing.T) {
	frames := makeSequence(4).Frames
	for f := range frames {
		for j := range frames[f][1] {
			frames[f][1][j] = 0.7
		}
	}

	norm := Normalize(frames)
	for f := range norm {
		for j, v := range norm[f][1] {
			if v != 0 || math.IsNaN(v) {
				t.Fatalf("frame %d joint %d: constant axis normalized to %f, want 0", f, j, v)
			}
		}
	}
	if norm[3][0][25] != 1 {
		t.Errorf("other axes must still be rescaled, got %f", norm[3][0][25])
	}
}

func TestNormalizeIsNoOpOnNormalizedAxis(t *testing.T) {
	once := Normalize(makeSequence(5).Frames)
	twice := Normalize(once)

	for f := range once {
		if once[f] != twice[f] {
			t.Fatalf("frame %d changed on re-normalization", f)
		}
	}
}

func TestNormalizeIndependentWindows(t *testing.T) {
	frames := makeSequence(8).Frames
	a := Normalize(frames[:4])
	b := Normalize(frames[4:])

	if a[0][0][0] != 0 || b[0][0][0] != 0 {
		t.Error("each window should use its own minimum")
	}
	if len(Normalize(nil)) != 0 {
		t.Error("empty window should normalize to empty")
	}
}
