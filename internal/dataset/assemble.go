package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/gesturewin/internal/config"
	"github.com/ivlev/gesturewin/internal/gesture"
	"github.com/ivlev/gesturewin/internal/source"
	"github.com/ivlev/gesturewin/internal/window"
)

// Build reads annotations.txt and the pose files in cfg.DataDir and slides
// windows over every accepted sequence. When cfg.Save is set the arrays and the
// manifest are written to cfg.OutputDir.
//
// Lines excluded by cfg.FileNames are skipped without counting toward
// cfg.MaxFiles. A missing pose file is logged and skipped and does not count
// either. Once MaxFiles sequences have been processed the remaining lines are ignored.
func Build(cfg config.Dataset) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	annPath := filepath.Join(cfg.DataDir, source.AnnotationsFile)
	lines, err := gesture.ReadLines(annPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAnnotationsNotFound, annPath)
	}
	if err != nil {
		return nil, err
	}

	var include map[string]bool
	if cfg.FileNames != nil {
		include = make(map[string]bool, len(cfg.FileNames))
		for _, name := range cfg.FileNames {
			base := filepath.Base(name)
			include[strings.TrimSuffix(base, filepath.Ext(base))] = true
		}
	}

	ds := &Dataset{Size: cfg.Window, Stride: cfg.Stride}
	processed := 0
	for _, line := range lines {
		name := gesture.FileName(line)
		if include != nil && !include[name] {
			continue
		}
		if cfg.MaxFiles > 0 && processed >= cfg.MaxFiles {
			break
		}

		ann, err := gesture.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", annPath, err)
		}

		posePath := source.PosePath(cfg.DataDir, ann.File)
		if _, err := os.Stat(posePath); err != nil {
			log.Printf("[!] Файл позы %s не найден, пропускаем", posePath)
			continue
		}

		seq, err := source.ReadPoseFile(posePath)
		if err != nil {
			return nil, err
		}
		if len(seq.Frames) > gesture.MaxFrames {
			return nil, fmt.Errorf("%w: %s has %d frames, max %d", ErrSequenceTooLong, posePath, len(seq.Frames), gesture.MaxFrames)
		}

		windows, err := window.Build(seq, ann.FrameLabels(), cfg.Window, cfg.Stride)
		if err != nil {
			return nil, err
		}

		ds.Sequences = append(ds.Sequences, seq)
		ds.Windows = append(ds.Windows, windows...)
		processed++
		fmt.Printf("[>] %s: кадров %d, окон %d\n", seq.Name, len(seq.Frames), len(windows))
	}

	fmt.Printf("[*] Последовательностей: %d | Окон: %d (w=%d, stride=%d)\n", len(ds.Sequences), ds.Len(), cfg.Window, cfg.Stride)

	if cfg.Save {
		paths, err := ds.Save(cfg.OutputDir, cfg.Tag)
		if err != nil {
			return nil, err
		}
		fmt.Printf("[+] Сохранено: %s, %s, %s\n", paths.Sequence, paths.Labels, paths.LabelsWindow)
	}

	return ds, nil
}
