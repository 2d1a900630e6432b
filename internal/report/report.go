// Package report renders static PNG charts of simulator output with
// gonum/plot: the time-series summary lines and a heatmap of one field.
package report

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/slice0/internal/fieldsim"
	"github.com/banshee-data/slice0/internal/fsutil"
)

// Default output size for Save helpers.
const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// labelEvery controls how many samples separate two x-axis labels.
const labelEvery = 6

var (
	avgColor = color.RGBA{R: 56, G: 132, B: 255, A: 255}
	minColor = color.RGBA{R: 38, G: 166, B: 154, A: 255}
	maxColor = color.RGBA{R: 239, G: 83, B: 80, A: 255}
)

// TimeSeriesPlot builds a line chart with avg, min and max traces.
func TimeSeriesPlot(series fieldsim.TimeSeries, title string) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: time series is empty", fieldsim.ErrInvalidArgument)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time of day"
	p.Y.Label.Text = "Value"

	avgPts := make(plotter.XYs, len(series))
	minPts := make(plotter.XYs, len(series))
	maxPts := make(plotter.XYs, len(series))
	ticks := make([]plot.Tick, 0, len(series)/labelEvery+1)
	for i, pt := range series {
		x := float64(i)
		avgPts[i] = plotter.XY{X: x, Y: pt.Avg}
		minPts[i] = plotter.XY{X: x, Y: pt.Min}
		maxPts[i] = plotter.XY{X: x, Y: pt.Max}
		if i%labelEvery == 0 || i == len(series)-1 {
			ticks = append(ticks, plot.Tick{Value: x, Label: pt.TimeLabel})
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	for _, l := range []struct {
		name string
		pts  plotter.XYs
		c    color.Color
	}{
		{"avg", avgPts, avgColor},
		{"min", minPts, minColor},
		{"max", maxPts, maxColor},
	} {
		line, err := plotter.NewLine(l.pts)
		if err != nil {
			return nil, fmt.Errorf("%s line: %w", l.name, err)
		}
		line.Color = l.c
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(l.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	p.Add(plotter.NewGrid())

	return p, nil
}

// gridXYZ adapts a fieldsim.Grid to plotter.GridXYZ. Row 0 of the grid is
// the top of the room, so rows are flipped onto the y axis.
type gridXYZ struct {
	g fieldsim.Grid
}

func (g gridXYZ) Dims() (c, r int)   { return g.g.Width(), g.g.Height() }
func (g gridXYZ) Z(c, r int) float64 { return g.g[g.g.Height()-1-r][c] }
func (g gridXYZ) X(c int) float64    { return float64(c) }
func (g gridXYZ) Y(r int) float64    { return float64(r) }

// FieldPlot builds a heatmap of f scaled to [lo, hi].
func FieldPlot(f fieldsim.Field, lo, hi float64, title string) (*plot.Plot, error) {
	if f.Grid.Height() == 0 || f.Grid.Width() == 0 {
		return nil, fmt.Errorf("%w: field grid is empty", fieldsim.ErrInvalidArgument)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	hm := plotter.NewHeatMap(gridXYZ{g: f.Grid}, palette.Heat(16, 1))
	hm.Min = lo
	hm.Max = hi
	p.Add(hm)

	door, err := plotter.NewScatter(plotter.XYs{{
		X: float64(f.Door.X),
		Y: float64(f.Grid.Height() - 1 - f.Door.Y),
	}})
	if err != nil {
		return nil, fmt.Errorf("door marker: %w", err)
	}
	door.GlyphStyle.Color = color.Black
	door.GlyphStyle.Radius = vg.Points(4)
	p.Add(door)
	p.Legend.Add("door", door)

	return p, nil
}

// WritePNG renders p as PNG to w.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePNG renders p to path on fsys, creating parent directories as needed.
func SavePNG(fsys fsutil.FileSystem, path string, p *plot.Plot) error {
	var buf bytes.Buffer
	if err := WritePNG(&buf, p, DefaultWidth, DefaultHeight); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
