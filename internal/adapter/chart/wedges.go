package chart

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

type wedge struct {
	share float64
	color color.Color
}

// wedges is a plot.Plotter drawing a unit pie centered on the origin,
// starting at twelve o'clock and running clockwise.
type wedges struct {
	slices []wedge
}

func (w wedges) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	center := vg.Point{X: trX(0), Y: trY(0)}
	radius := min(trX(1)-trX(0), trY(1)-trY(0))

	total := 0.0
	for _, s := range w.slices {
		total += s.share
	}
	if total <= 0 {
		return
	}

	start := math.Pi / 2
	for _, s := range w.slices {
		sweep := -2 * math.Pi * s.share / total
		var path vg.Path
		path.Move(center)
		path.Arc(center, radius, start, sweep)
		path.Close()
		c.SetColor(s.color)
		c.Fill(path)
		start += sweep
	}
}

func (w wedges) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}
