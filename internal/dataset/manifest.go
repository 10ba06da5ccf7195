package dataset

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest records where each persisted window came from.
type Manifest struct {
	Tag     string          `yaml:"tag"`
	Window  int             `yaml:"window"`
	Stride  int             `yaml:"stride"`
	Files   []ManifestFile  `yaml:"files"`
	Windows []ManifestEntry `yaml:"windows"`
}

type ManifestFile struct {
	Name   string `yaml:"name"`
	Frames int    `yaml:"frames"`
}

// ManifestEntry is the provenance of one window, frame range inclusive.
type ManifestEntry struct {
	Source string `yaml:"source"`
	Start  int    `yaml:"start"`
	End    int    `yaml:"end"`
	Label  int    `yaml:"label"`
}

func NewManifest(d *Dataset, tag string) *Manifest {
	m := &Manifest{
		Tag:     tag,
		Window:  d.Size,
		Stride:  d.Stride,
		Files:   make([]ManifestFile, 0, len(d.Sequences)),
		Windows: make([]ManifestEntry, 0, len(d.Windows)),
	}
	for _, seq := range d.Sequences {
		m.Files = append(m.Files, ManifestFile{Name: seq.Name, Frames: len(seq.Frames)})
	}
	for _, w := range d.Windows {
		m.Windows = append(m.Windows, ManifestEntry{Source: w.Source, Start: w.Start, End: w.End, Label: w.Majority})
	}
	return m
}

// WriteManifest writes a manifest to a YAML file
func WriteManifest(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadManifest reads a manifest from a YAML file
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}
