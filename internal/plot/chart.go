package plot

import (
	"bytes"
	"errors"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// 6.4x4.8in at 100 dpi gives the 640x480 PNG of a default pyplot figure.
const (
	ChartWidth  = 6.4 * vg.Inch
	ChartHeight = 4.8 * vg.Inch
	ChartDPI    = 100
)

var ErrEmptySeries = errors.New("plot: empty series")

// Renderer turns a numeric series into encoded image bytes.
type Renderer func(series []float64) ([]byte, error)

// --- Colors ---
var (
	colLine = color.RGBA{R: 31, G: 119, B: 180, A: 255} // #1f77b4
)

var sample = []float64{1, 2, 3, 3, 4, 7, 8}

// SampleSeries returns the fixed series published by the handler.
func SampleSeries() []float64 {
	out := make([]float64, len(sample))
	copy(out, sample)
	return out
}

// IndexPoints pairs each value with its position 0..len-1.
func IndexPoints(series []float64) plotter.XYs {
	pts := make(plotter.XYs, len(series))
	for i, v := range series {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}

func newLinePlot(series []float64) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}

	p := plot.New()
	p.BackgroundColor = color.White

	line, err := plotter.NewLine(IndexPoints(series))
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = colLine
	p.Add(line)

	return p, nil
}

// GenerateLineChart renders index vs. value as a PNG.
func GenerateLineChart(series []float64) ([]byte, error) {
	p, err := newLinePlot(series)
	if err != nil {
		return nil, err
	}

	c := vgimg.NewWith(vgimg.UseWH(ChartWidth, ChartHeight), vgimg.UseDPI(ChartDPI))
	p.Draw(draw.New(c))

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveLineChart writes the PNG from GenerateLineChart to filename.
func SaveLineChart(series []float64, filename string) error {
	img, err := GenerateLineChart(series)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, img, 0o644)
}
