package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/gesturewin/internal/config"
	"github.com/ivlev/gesturewin/internal/gesture"
	"github.com/ivlev/gesturewin/internal/source"
)

// writePoseFile writes n frames whose values encode (seed, frame, joint, axis).
func writePoseFile(t *testing.T, dir, name string, n int, seed float64) {
	t.Helper()
	var b strings.Builder
	for f := 0; f < n; f++ {
		fmt.Fprintf(&b, "%d;0;", f)
		for j := 0; j < source.NumJoints; j++ {
			for c := 0; c < source.NumCoords; c++ {
				fmt.Fprintf(&b, "%.6f;", seed+float64(f)*0.01+float64(j)*0.1+float64(c)*0.001)
			}
		}
		b.WriteString("\n")
	}
	if err := os.WriteFile(filepath.Join(dir, name+".txt"), []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func writeAnnotations(t *testing.T, dir string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, source.AnnotationsFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func datasetConfig(dir string) config.Dataset {
	return config.Dataset{DataDir: dir, Tag: "test", OutputDir: filepath.Join(dir, "out"), Window: 16, Stride: 1}
}

func TestBuildTwoFullSequences(t *testing.T) {
	dir := t.TempDir()
	writeAnnotations(t, dir, "seq01;ONE;0;100;CROSS;300;400;", "seq02;WAVE;10;700;")
	writePoseFile(t, dir, "seq01", gesture.MaxFrames, 0)
	writePoseFile(t, dir, "seq02", gesture.MaxFrames, 5)

	cfg := datasetConfig(dir)
	cfg.Save = true
	ds, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if ds.Len() != 1530 {
		t.Fatalf("Expected 1530 windows, got %d", ds.Len())
	}
	if len(ds.Sequences) != 2 || ds.Sequences[1].Name != "seq02" {
		t.Errorf("Unexpected sequences: %d", len(ds.Sequences))
	}
	if ds.Windows[765].Source != "seq02" || ds.Windows[765].Start != 0 {
		t.Errorf("window 765 should be the first of seq02, got %s@%d", ds.Windows[765].Source, ds.Windows[765].Start)
	}

	frames, label, labels := ds.At(0)
	if len(frames) != 16 || label != 0 || len(labels) != 16 {
		t.Errorf("At(0) = %d frames, label %d, %d labels", len(frames), label, len(labels))
	}

	paths := PathsFor(cfg.OutputDir, "test", 16, 1)
	arrays, err := LoadArrays(paths.Sequence, paths.Labels)
	if err != nil {
		t.Fatalf("LoadArrays failed: %v", err)
	}
	if arrays.Len() != 1530 || arrays.Size != 16 {
		t.Errorf("Loaded %d windows of %d frames", arrays.Len(), arrays.Size)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeAnnotations(t, dir, "a;ONE;0;5;TWO;6;9", "b;KNOB;3;12")
	writePoseFile(t, dir, "a", 30, 1.0/3.0)
	writePoseFile(t, dir, "b", 21, -7.25)

	cfg := datasetConfig(dir)
	cfg.Window, cfg.Stride = 8, 3
	ds, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	paths, err := ds.Save(cfg.OutputDir, "rt")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(paths.Sequence) != "rt_sequence_w8_s3.npy" ||
		filepath.Base(paths.Labels) != "rt_labels_w8_s3.npy" ||
		filepath.Base(paths.LabelsWindow) != "rt_labels_window_w8_s3.npy" {
		t.Errorf("Unexpected paths: %+v", paths)
	}

	arrays, err := LoadArrays(paths.Sequence, paths.Labels)
	if err != nil {
		t.Fatalf("LoadArrays failed: %v", err)
	}
	defer arrays.Close()
	labelWindows, err := LoadLabelWindows(paths.LabelsWindow)
	if err != nil {
		t.Fatalf("LoadLabelWindows failed: %v", err)
	}

	if arrays.Len() != ds.Len() || len(labelWindows) != ds.Len() {
		t.Fatalf("Loaded %d/%d windows, want %d", arrays.Len(), len(labelWindows), ds.Len())
	}
	for i := 0; i < ds.Len(); i++ {
		frames, label, err := arrays.Window(i)
		if err != nil {
			t.Fatalf("Window(%d) failed: %v", i, err)
		}
		want := ds.Windows[i]
		if label != want.Majority || arrays.Label(i) != int64(want.Majority) {
			t.Errorf("window %d: label %d, want %d", i, label, want.Majority)
		}
		for f := range frames {
			if frames[f] != want.Frames[f] {
				t.Fatalf("window %d frame %d differs after round trip", i, f)
			}
		}
		for f, l := range labelWindows[i] {
			if l != int64(want.Labels[f]) {
				t.Fatalf("window %d frame label %d: %d, want %d", i, f, l, want.Labels[f])
			}
		}
	}

	m, err := ReadManifest(paths.Manifest)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if m.Tag != "rt" || m.Window != 8 || m.Stride != 3 || len(m.Windows) != ds.Len() {
		t.Errorf("Unexpected manifest header: %+v", m)
	}
	if len(m.Files) != 2 || m.Files[1] != (ManifestFile{Name: "b", Frames: 21}) {
		t.Errorf("Unexpected manifest files: %+v", m.Files)
	}
	last := m.Windows[len(m.Windows)-1]
	if last.Source != "b" || last.Start != 12 || last.End != 19 {
		t.Errorf("Unexpected last manifest entry: %+v", last)
	}
}

func TestBuildFilterAndCap(t *testing.T) {
	dir := t.TempDir()
	writeAnnotations(t, dir,
		"s1;ONE;0;1",
		"s2;JUMP;0;1", // unknown label, excluded by the filter
		"s3;TWO;0;1",
		"s4;THREE;0;1",
	)
	for _, name := range []string{"s1", "s3", "s4"} {
		writePoseFile(t, dir, name, 20, 0)
	}

	cfg := datasetConfig(dir)
	cfg.FileNames = []string{"s1.txt", "s3", "s4"}
	cfg.MaxFiles = 2
	ds, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(ds.Sequences) != 2 || ds.Sequences[0].Name != "s1" || ds.Sequences[1].Name != "s3" {
		t.Errorf("Expected s1 and s3, got %+v", names(ds))
	}
	if ds.Len() != 2*5 {
		t.Errorf("Expected 10 windows, got %d", ds.Len())
	}
}

func TestBuildMissingPoseFileDoesNotCount(t *testing.T) {
	dir := t.TempDir()
	writeAnnotations(t, dir, "s1;ONE;0;1", "gone;ONE;0;1", "s3;TWO;0;1", "s4;TWO;0;1")
	writePoseFile(t, dir, "s1", 16, 0)
	writePoseFile(t, dir, "s3", 16, 0)
	writePoseFile(t, dir, "s4", 16, 0)

	cfg := datasetConfig(dir)
	cfg.MaxFiles = 2
	ds, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := names(ds); len(got) != 2 || got[1] != "s3" {
		t.Errorf("Expected [s1 s3], got %v", got)
	}
}

func TestBuildShortSequenceHasNoWindows(t *testing.T) {
	dir := t.TempDir()
	writeAnnotations(t, dir, "short;ONE;0;2;TWO;5;7")
	writePoseFile(t, dir, "short", 10, 0)

	ds, err := Build(datasetConfig(dir))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if ds.Len() != 0 || len(ds.Sequences) != 1 {
		t.Errorf("Expected 0 windows and 1 sequence, got %d and %d", ds.Len(), len(ds.Sequences))
	}
}

func TestBuildErrors(t *testing.T) {
	t.Run("missing annotations", func(t *testing.T) {
		_, err := Build(datasetConfig(t.TempDir()))
		if !errors.Is(err, ErrAnnotationsNotFound) {
			t.Errorf("Expected ErrAnnotationsNotFound, got %v", err)
		}
	})

	t.Run("unknown label", func(t *testing.T) {
		dir := t.TempDir()
		writeAnnotations(t, dir, "s1;JUMP;0;1")
		writePoseFile(t, dir, "s1", 20, 0)
		_, err := Build(datasetConfig(dir))
		if !errors.Is(err, gesture.ErrUnknownLabel) {
			t.Errorf("Expected ErrUnknownLabel, got %v", err)
		}
	})

	t.Run("malformed pose line", func(t *testing.T) {
		dir := t.TempDir()
		writeAnnotations(t, dir, "s1;ONE;0;1")
		os.WriteFile(filepath.Join(dir, "s1.txt"), []byte("0;0;1;2;3;\n"), 0644)
		_, err := Build(datasetConfig(dir))
		if !errors.Is(err, source.ErrMalformedFrame) {
			t.Errorf("Expected ErrMalformedFrame, got %v", err)
		}
	})

	t.Run("interior blank pose line", func(t *testing.T) {
		dir := t.TempDir()
		writeAnnotations(t, dir, "s1;ONE;0;2;TWO;3;5")
		writePoseFile(t, dir, "s1", 7, 0)
		data, err := os.ReadFile(filepath.Join(dir, "s1.txt"))
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.SplitAfter(string(data), "\n")
		content := strings.Join(lines[:3], "") + "\n" + strings.Join(lines[3:], "")
		os.WriteFile(filepath.Join(dir, "s1.txt"), []byte(content), 0644)

		cfg := datasetConfig(dir)
		cfg.Window = 2
		_, err = Build(cfg)
		if !errors.Is(err, source.ErrMalformedFrame) {
			t.Fatalf("Expected ErrMalformedFrame, got %v", err)
		}
		if !strings.Contains(err.Error(), "s1.txt:4") {
			t.Errorf("Error should name the blank line: %v", err)
		}
	})

	t.Run("too long", func(t *testing.T) {
		dir := t.TempDir()
		writeAnnotations(t, dir, "s1;ONE;0;1")
		writePoseFile(t, dir, "s1", gesture.MaxFrames+1, 0)
		_, err := Build(datasetConfig(dir))
		if !errors.Is(err, ErrSequenceTooLong) {
			t.Errorf("Expected ErrSequenceTooLong, got %v", err)
		}
	})
}

func TestLoadArraysShapeMismatch(t *testing.T) {
	dir := t.TempDir()
	seqPath := filepath.Join(dir, "seq.npy")
	labelPath := filepath.Join(dir, "labels.npy")
	if err := writeNpy(seqPath, []int{2, 4, 3, 26}, make([]float64, 2*4*78)); err != nil {
		t.Fatal(err)
	}
	if err := writeNpy(labelPath, []int{3}, []int64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadArrays(seqPath, labelPath); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
	if err := writeNpy(seqPath, []int{2, 4}, make([]float64, 7)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch from writeNpy, got %v", err)
	}
}

func TestNpyHeaderAlignment(t *testing.T) {
	for _, shape := range [][]int{{0}, {7}, {1530, 16, 3, 26}} {
		h := npyHeader(descrFloat64, shape)
		if len(h)%64 != 0 {
			t.Errorf("shape %v: header length %d not 64-aligned", shape, len(h))
		}
		if h[len(h)-1] != '\n' {
			t.Errorf("shape %v: header must end with newline", shape)
		}
	}
	if !strings.Contains(string(npyHeader(descrInt64, []int{5})), "'shape': (5,)") {
		t.Error("1-D shape must keep the trailing comma")
	}
}

func names(ds *Dataset) []string {
	var out []string
	for _, s := range ds.Sequences {
		out = append(out, s.Name)
	}
	return out
}
