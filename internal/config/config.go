package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Dataset     Dataset `yaml:"dataset"`
	Render      Render  `yaml:"render"`
	RedisAddr   string  `yaml:"redis_addr"`
	RedisPrefix string  `yaml:"redis_prefix"`
}

// Dataset configures window extraction.
type Dataset struct {
	DataDir   string   `yaml:"data_dir"`
	Tag       string   `yaml:"tag"`
	OutputDir string   `yaml:"output_dir"`
	Window    int      `yaml:"window"`
	Stride    int      `yaml:"stride"`
	FileNames []string `yaml:"file_names"`
	MaxFiles  int      `yaml:"max_files"` // 0 = no cap
	Save      bool     `yaml:"save"`
}

// Render configures the batch render driver.
type Render struct {
	SequencePath string `yaml:"sequence_path"`
	LabelsPath   string `yaml:"labels_path"`
	BasePath     string `yaml:"base_path"`
	Workers      int    `yaml:"workers"`
	ShowProgress bool   `yaml:"show_progress"`
	Style        Style  `yaml:"style"`
}

// Style holds the per-image rendering parameters.
type Style struct {
	Background string  `yaml:"background"`
	LineStyle  string  `yaml:"line_style"`
	LineWidth  float64 `yaml:"line_width"`
	Marker     string  `yaml:"marker"`
	MarkerSize float64 `yaml:"marker_size"`
	CellHeight int     `yaml:"cell_height"`
	CellWidth  int     `yaml:"cell_width"`
	Override   bool    `yaml:"override"`
}

// DefaultStyle returns the stock rendering style.
func DefaultStyle() Style {
	return Style{
		Background: "white",
		LineStyle:  "-",
		LineWidth:  2,
		Marker:     "",
		MarkerSize: 2,
		CellHeight: 128,
		CellWidth:  384,
	}
}

// Default returns a config with every field at its stock value.
// Workers is left at 0 and resolved by the caller from the host CPU count.
func Default() *Config {
	return &Config{
		Dataset: Dataset{
			Tag:    "train",
			Window: 16,
			Stride: 1,
			Save:   true,
		},
		Render: Render{
			ShowProgress: true,
			Style:        DefaultStyle(),
		},
		RedisPrefix: "gesturewin",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from GESTUREWIN_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("GESTUREWIN_DATA_DIR"); v != "" {
		cfg.Dataset.DataDir = v
	}
	if v := os.Getenv("GESTUREWIN_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("GESTUREWIN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: GESTUREWIN_WORKERS=%q", ErrInvalidConfig, v)
		}
		cfg.Render.Workers = n
	}
	return nil
}

// ParseCell parses "HxW" into a cell height and width in pixels.
func ParseCell(s string) (int, int, error) {
	h, w, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: cell %q, want HxW", ErrInvalidConfig, s)
	}
	height, err1 := strconv.Atoi(strings.TrimSpace(h))
	width, err2 := strconv.Atoi(strings.TrimSpace(w))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: cell %q, want HxW", ErrInvalidConfig, s)
	}
	return height, width, nil
}

func (d Dataset) Validate() error {
	if d.DataDir == "" {
		return fmt.Errorf("%w: data directory is required", ErrInvalidConfig)
	}
	if d.Window <= 0 || d.Stride <= 0 {
		return fmt.Errorf("%w: window=%d stride=%d must be positive", ErrInvalidConfig, d.Window, d.Stride)
	}
	if d.MaxFiles < 0 {
		return fmt.Errorf("%w: max_files=%d", ErrInvalidConfig, d.MaxFiles)
	}
	if d.Save && d.Tag == "" {
		return fmt.Errorf("%w: tag is required to save", ErrInvalidConfig)
	}
	return nil
}

func (s Style) Validate() error {
	if s.CellHeight <= 0 || s.CellWidth <= 0 {
		return fmt.Errorf("%w: cell %dx%d", ErrInvalidConfig, s.CellHeight, s.CellWidth)
	}
	if s.LineWidth < 0 || s.MarkerSize < 0 {
		return fmt.Errorf("%w: line width %g, marker size %g", ErrInvalidConfig, s.LineWidth, s.MarkerSize)
	}
	return nil
}

func (r Render) Validate() error {
	if r.SequencePath == "" || r.LabelsPath == "" {
		return fmt.Errorf("%w: sequence and labels paths are required", ErrInvalidConfig)
	}
	if r.BasePath == "" {
		return fmt.Errorf("%w: output base path is required", ErrInvalidConfig)
	}
	if r.Workers < 0 {
		return fmt.Errorf("%w: workers=%d", ErrInvalidConfig, r.Workers)
	}
	return r.Style.Validate()
}
