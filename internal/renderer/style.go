package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ivlev/gesturewin/internal/config"
)

// GridRows and GridCols describe the subplot grid: one row per coordinate axis.
const (
	GridRows = 3
	GridCols = 1
)

// AxisNames labels the subplots top to bottom.
var AxisNames = [GridRows]string{"X", "Y", "Z"}

// Palette colors joint traces; joint j uses Palette[j%len(Palette)].
var Palette = [...]string{
	"green", "dimgray", "blue", "brown", "chartreuse", "chocolate", "coral",
	"crimson", "blueviolet", "darkblue", "darkgreen", "firebrick", "gold",
	"teal", "grey", "indigo", "steelblue", "indianred", "goldenrod", "darkred",
	"darkorange", "magenta", "maroon", "navy", "olive", "orange",
}

var paletteColors = func() []color.Color {
	out := make([]color.Color, len(Palette))
	for i, name := range Palette {
		out[i] = colornames.Map[name]
	}
	return out
}()

// resolvedStyle is a config.Style translated into plot primitives.
type resolvedStyle struct {
	background color.Color
	drawLine   bool
	lineWidth  vg.Length
	dashes     []vg.Length
	glyph      draw.GlyphDrawer
	glyphSize  vg.Length
}

func resolveStyle(s config.Style) (*resolvedStyle, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	bg, err := ParseColor(s.Background)
	if err != nil {
		return nil, err
	}

	rs := &resolvedStyle{
		background: bg,
		lineWidth:  vg.Points(s.LineWidth),
		glyphSize:  vg.Points(s.MarkerSize / 2),
	}

	lw := vg.Points(s.LineWidth)
	switch s.LineStyle {
	case "-", "solid":
		rs.drawLine = true
	case "--", "dashed":
		rs.drawLine = true
		rs.dashes = []vg.Length{3.7 * lw, 1.6 * lw}
	case "-.", "dashdot":
		rs.drawLine = true
		rs.dashes = []vg.Length{6.4 * lw, 1.6 * lw, lw, 1.6 * lw}
	case ":", "dotted":
		rs.drawLine = true
		rs.dashes = []vg.Length{lw, 1.65 * lw}
	case "", "none", "None":
	default:
		return nil, fmt.Errorf("%w: line style %q", config.ErrInvalidConfig, s.LineStyle)
	}
	if s.LineWidth == 0 {
		rs.drawLine = false
	}

	switch s.Marker {
	case "", "none", "None":
	case "o", ".":
		rs.glyph = draw.CircleGlyph{}
	case "s":
		rs.glyph = draw.SquareGlyph{}
	case "^":
		rs.glyph = draw.TriangleGlyph{}
	case "x":
		rs.glyph = draw.CrossGlyph{}
	case "+":
		rs.glyph = draw.PlusGlyph{}
	default:
		return nil, fmt.Errorf("%w: marker %q", config.ErrInvalidConfig, s.Marker)
	}
	if s.Marker == "." {
		rs.glyphSize /= 2
	}

	return rs, nil
}

// ParseColor accepts an SVG color name, "#rgb", "#rrggbb" or "none".
func ParseColor(s string) (color.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "none", "transparent":
		return color.Transparent, nil
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}

	if hex, ok := strings.CutPrefix(name, "#"); ok {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
				return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: color %q", config.ErrInvalidConfig, s)
}

// ImageSize returns the full image size in pixels.
func ImageSize(s config.Style) (width, height int) {
	return GridCols * s.CellWidth, GridRows * s.CellHeight
}

// Signature names the output subdirectory for a style:
// {line}_{width}_{marker}_{size}_{rows}x{cols}_{height}x{width}.
func Signature(s config.Style) string {
	w, h := ImageSize(s)
	sig := fmt.Sprintf("%s*%s_%s*%s_%dx%d_%dx%d",
		s.LineStyle, formatNum(s.LineWidth), s.Marker, formatNum(s.MarkerSize),
		GridRows, GridCols, h, w)
	return strings.ReplaceAll(sig, "*", "_")
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
