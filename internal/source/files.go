package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AnnotationsFile is the interval annotation file name inside a dataset directory.
const AnnotationsFile = "annotations.txt"

// ListSequences returns the sorted base names (without extension) of the pose
// files in dir, skipping the annotation file.
func ListSequences(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == AnnotationsFile {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == ".txt" {
			names = append(names, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		}
	}
	sort.Strings(names)

	return names, nil
}

// PosePath returns the pose file path for a sequence name.
func PosePath(dir, name string) string {
	return filepath.Join(dir, name+".txt")
}
