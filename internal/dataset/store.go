package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ivlev/gesturewin/internal/source"
)

const frameSize = source.NumCoords * source.NumJoints

// Paths lists the files written for one dataset tag and window/stride pair.
type Paths struct {
	Sequence     string
	Labels       string
	LabelsWindow string
	Manifest     string
}

// PathsFor returns the file names used for tag with window w and stride s under dir.
func PathsFor(dir, tag string, w, s int) Paths {
	name := func(kind, ext string) string {
		return filepath.Join(dir, fmt.Sprintf("%s_%s_w%d_s%d.%s", tag, kind, w, s, ext))
	}
	return Paths{
		Sequence:     name("sequence", "npy"),
		Labels:       name("labels", "npy"),
		LabelsWindow: name("labels_window", "npy"),
		Manifest:     name("manifest", "yaml"),
	}
}

// Save writes the pose windows (N×w×3×26 float64), majority labels (N int64),
// per-frame label windows (N×w int64) and the manifest.
func (d *Dataset) Save(dir, tag string) (Paths, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Paths{}, err
	}
	paths := PathsFor(dir, tag, d.Size, d.Stride)

	n, w := len(d.Windows), d.Size
	poses := make([]float64, 0, n*w*frameSize)
	labels := make([]int64, 0, n)
	labelWindows := make([]int64, 0, n*w)

	for i, win := range d.Windows {
		if len(win.Frames) != w || len(win.Labels) != w {
			return Paths{}, fmt.Errorf("%w: window %d has %d frames, want %d", ErrShapeMismatch, i, len(win.Frames), w)
		}
		for _, frame := range win.Frames {
			for c := range frame {
				poses = append(poses, frame[c][:]...)
			}
		}
		labels = append(labels, int64(win.Majority))
		for _, l := range win.Labels {
			labelWindows = append(labelWindows, int64(l))
		}
	}

	if err := writeNpy(paths.Sequence, []int{n, w, source.NumCoords, source.NumJoints}, poses); err != nil {
		return Paths{}, err
	}
	if err := writeNpy(paths.Labels, []int{n}, labels); err != nil {
		return Paths{}, err
	}
	if err := writeNpy(paths.LabelsWindow, []int{n, w}, labelWindows); err != nil {
		return Paths{}, err
	}
	if err := WriteManifest(NewManifest(d, tag), paths.Manifest); err != nil {
		return Paths{}, err
	}

	return paths, nil
}

// Arrays holds persisted windows loaded back into memory.
type Arrays struct {
	Size   int // frames per window
	poses  []float64
	labels []int64
}

// LoadArrays reads the pose windows and majority labels written by Save.
func LoadArrays(sequencePath, labelsPath string) (*Arrays, error) {
	var poses []float64
	shape, err := readNpy(sequencePath, &poses)
	if err != nil {
		return nil, err
	}
	if len(shape) != 4 || shape[2] != source.NumCoords || shape[3] != source.NumJoints {
		return nil, fmt.Errorf("%w: %s has shape %v, want (N, w, %d, %d)",
			ErrShapeMismatch, sequencePath, shape, source.NumCoords, source.NumJoints)
	}

	var labels []int64
	lshape, err := readNpy(labelsPath, &labels)
	if err != nil {
		return nil, err
	}
	if len(lshape) != 1 || lshape[0] != shape[0] {
		return nil, fmt.Errorf("%w: %s has shape %v, want (%d,)", ErrShapeMismatch, labelsPath, lshape, shape[0])
	}

	return &Arrays{Size: shape[1], poses: poses, labels: labels}, nil
}

// LoadLabelWindows reads the per-frame label windows written by Save.
func LoadLabelWindows(path string) ([][]int64, error) {
	var flat []int64
	shape, err := readNpy(path, &flat)
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: %s has shape %v, want (N, w)", ErrShapeMismatch, path, shape)
	}

	out := make([][]int64, shape[0])
	for i := range out {
		out[i] = flat[i*shape[1] : (i+1)*shape[1] : (i+1)*shape[1]]
	}
	return out, nil
}

func (a *Arrays) Len() int {
	return len(a.labels)
}

// Label returns the majority label of window i.
func (a *Arrays) Label(i int) int64 {
	return a.labels[i]
}

// Window returns an owned copy of window i.
func (a *Arrays) Window(i int) ([]source.Frame, int, error) {
	if i < 0 || i >= a.Len() {
		return nil, 0, fmt.Errorf("window %d out of range [0,%d)", i, a.Len())
	}

	frames := make([]source.Frame, a.Size)
	offset := i * a.Size * frameSize
	for f := range frames {
		for c := 0; c < source.NumCoords; c++ {
			base := offset + f*frameSize + c*source.NumJoints
			copy(frames[f][c][:], a.poses[base:base+source.NumJoints])
		}
	}
	return frames, int(a.labels[i]), nil
}

func (a *Arrays) Close() error {
	a.poses, a.labels = nil, nil
	return nil
}
