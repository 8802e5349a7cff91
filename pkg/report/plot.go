// Package report draws charts of the data a run trained on.
package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/shankar-dh/Timeseries/pkg/data"
)

// PlotSeries renders one or more series over their timestamp index as
// lines and saves the image to filename. The format follows the file
// extension (.png, .svg, .pdf).
func PlotSeries(filename, title string, series ...*data.Series) error {
	if len(series) == 0 {
		return errors.New("report: nothing to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.Legend.Top = true

	palette := []color.RGBA{
		{R: 31, G: 119, B: 180, A: 255},
		{R: 255, G: 127, B: 14, A: 255},
		{R: 44, G: 160, B: 44, A: 255},
	}
	for k, s := range series {
		if len(s.Index) != len(s.Values) {
			return fmt.Errorf("report: series %q has %d timestamps for %d values", s.Name, len(s.Index), len(s.Values))
		}
		pts := make(plotter.XYs, len(s.Values))
		for i, v := range s.Values {
			pts[i].X = float64(s.Index[i].Unix())
			pts[i].Y = v
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("report: %s: %w", s.Name, err)
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = palette[k%len(palette)]
		if k > 0 {
			l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		marks, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("report: %s: %w", s.Name, err)
		}
		marks.GlyphStyle.Shape = draw.CircleGlyph{}
		marks.GlyphStyle.Radius = vg.Points(1)
		marks.GlyphStyle.Color = palette[k%len(palette)]

		p.Add(l, marks)
		p.Legend.Add(s.Name, l, marks)
	}
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("report: save %s: %w", filename, err)
	}
	return nil
}
