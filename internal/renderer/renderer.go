package renderer

import (
	"fmt"
	"os"
	"path/filepath"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/ivlev/gesturewin/internal/config"
	"github.com/ivlev/gesturewin/internal/source"
	"github.com/ivlev/gesturewin/internal/system"
)

// dpi only converts pixel sizes to plot lengths; output size is exact in pixels.
const dpi = 200

// Renderer draws normalized windows as three stacked line charts.
type Renderer struct {
	Style config.Style
	Dir   string
	style *resolvedStyle
}

// New resolves the style and creates base/<signature>.
func New(base string, s config.Style) (*Renderer, error) {
	rs, err := resolveStyle(s)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(base, Signature(s))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Renderer{Style: s, Dir: dir, style: rs}, nil
}

// Path returns the image path of window index (0-based) with its label.
func (r *Renderer) Path(index, label int) string {
	return filepath.Join(r.Dir, FileName(index, label))
}

// FileName is "{index+1}_label{label}.png".
func FileName(index, label int) string {
	return fmt.Sprintf("%d_label%d.png", index+1, label)
}

// Exists reports whether the image for a window is already on disk.
func (r *Renderer) Exists(index, label int) bool {
	_, err := os.Stat(r.Path(index, label))
	return err == nil
}

// Render writes the image for one normalized window. With Override unset an
// existing file is left untouched and skipped is true.
func (r *Renderer) Render(frames []source.Frame, index, label int) (path string, skipped bool, err error) {
	path = r.Path(index, label)
	if !r.Style.Override && r.Exists(index, label) {
		return path, true, nil
	}

	canvas, err := r.Draw(frames)
	if err != nil {
		return path, false, fmt.Errorf("window %d: %w", index, err)
	}

	buf := system.GetBuffer()
	defer system.PutBuffer(buf)

	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(buf); err != nil {
		return path, false, fmt.Errorf("window %d: encode png: %w", index, err)
	}
	if err := system.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return path, false, fmt.Errorf("window %d: %w", index, err)
	}

	return path, false, nil
}

// Draw renders the three subplots onto a fresh image canvas.
func (r *Renderer) Draw(frames []source.Frame) (*vgimg.Canvas, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("empty window")
	}

	plots := make([][]*plot.Plot, GridRows)
	for c := 0; c < GridRows; c++ {
		p, err := r.axisPlot(frames, c)
		if err != nil {
			return nil, err
		}
		plots[c] = []*plot.Plot{p}
	}

	w, h := ImageSize(r.Style)
	img := vgimg.NewWith(
		vgimg.UseWH(pixels(w), pixels(h)),
		vgimg.UseDPI(dpi),
		vgimg.UseBackgroundColor(r.style.background),
	)

	dc := draw.New(img)
	tiles := draw.Tiles{Rows: GridRows, Cols: GridCols}
	canvases := plot.Align(plots, tiles, dc)
	for c := range plots {
		plots[c][0].Draw(canvases[c][0])
	}

	return img, nil
}

// axisPlot overlays every joint's trace for coordinate axis c.
func (r *Renderer) axisPlot(frames []source.Frame, c int) (*plot.Plot, error) {
	p := plot.New()
	p.BackgroundColor = r.style.background

	for j := 0; j < source.NumJoints; j++ {
		xys := make(plotter.XYs, len(frames))
		for f := range frames {
			xys[f].X = float64(f + 1)
			xys[f].Y = frames[f][c][j]
		}
		col := paletteColors[j%len(paletteColors)]

		if r.style.drawLine {
			line, err := plotter.NewLine(xys)
			if err != nil {
				return nil, fmt.Errorf("axis %s joint %d: %w", AxisNames[c], j, err)
			}
			line.LineStyle.Color = col
			line.LineStyle.Width = r.style.lineWidth
			line.LineStyle.Dashes = r.style.dashes
			p.Add(line)
		}
		if r.style.glyph != nil {
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, fmt.Errorf("axis %s joint %d: %w", AxisNames[c], j, err)
			}
			sc.GlyphStyle.Color = col
			sc.GlyphStyle.Shape = r.style.glyph
			sc.GlyphStyle.Radius = r.style.glyphSize
			p.Add(sc)
		}
	}

	p.X.Min, p.X.Max = 1, float64(len(frames))
	if len(frames) < 2 {
		p.X.Max = 2
	}
	p.Y.Min, p.Y.Max = 0, 1
	p.X.Padding, p.Y.Padding = 0, 0

	p.HideX()
	p.Y.Tick.Marker = plot.ConstantTicks{}
	p.Y.Tick.Length = 0
	p.Y.Label.Text = AxisNames[c]
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Weight = xfont.WeightBold

	return p, nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / dpi
}
