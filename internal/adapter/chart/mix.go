package chart

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

const (
	mixWidth  = 4 * vg.Inch
	mixHeight = 3 * vg.Inch
)

func mixTitle(p domain.StateEnergyProfile) string {
	return fmt.Sprintf("%s Energy Production (GWh)", p.Abbreviation)
}

// Bar draws one bar per source in GWh, annotated with its percentage share.
type Bar struct{}

// PNG renders the bar chart.
func (Bar) PNG(profile domain.StateEnergyProfile) ([]byte, error) {
	p := plot.New()
	p.Title.Text = mixTitle(profile)
	p.Title.TextStyle.Font.Size = vg.Points(10)
	p.Y.Label.Text = "GWh"

	names := make([]string, len(domain.Sources))
	labels := plotter.XYLabels{
		XYs:    make([]plotter.XY, len(domain.Sources)),
		Labels: make([]string, len(domain.Sources)),
	}
	maxValue := 0.0
	for i, s := range domain.Sources {
		v := profile.Production.Get(s)
		bars, err := plotter.NewBarChart(plotter.Values{v}, vg.Points(28))
		if err != nil {
			return nil, fmt.Errorf("bar %s: %w", s, err)
		}
		bars.XMin = float64(i)
		bars.Color = SourceColors[s]
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)

		names[i] = string(s)
		labels.XYs[i] = plotter.XY{X: float64(i), Y: v}
		labels.Labels[i] = fmt.Sprintf("%g%%", profile.Shares.Get(s))
		maxValue = math.Max(maxValue, v)
	}

	pct, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("bar labels: %w", err)
	}
	pct.Offset = vg.Point{Y: vg.Points(3)}
	for i := range pct.TextStyle {
		pct.TextStyle[i].Font.Size = vg.Points(8)
		pct.TextStyle[i].XAlign = draw.XCenter
	}
	p.Add(pct)

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	p.Y.Max = maxValue * 1.15
	if maxValue == 0 {
		p.Y.Max = 1
	}

	return encodePNG(p, mixWidth, mixHeight)
}

// Pie draws the percentage shares as wedges with a legend.
type Pie struct{}

// PNG renders the pie chart. A state with no production gets an empty plot
// with only the legend.
func (Pie) PNG(profile domain.StateEnergyProfile) ([]byte, error) {
	p := plot.New()
	p.Title.Text = mixTitle(profile)
	p.Title.TextStyle.Font.Size = vg.Points(10)
	p.HideAxes()
	p.Legend.Top = true
	p.Legend.Left = false

	w := wedges{}
	for _, s := range domain.Sources {
		share := profile.Shares.Get(s)
		p.Legend.Add(fmt.Sprintf("%s %g%%", s, share), swatch{color: SourceColors[s]})
		if share > 0 {
			w.slices = append(w.slices, wedge{share: share, color: SourceColors[s]})
		}
	}
	p.Add(w)

	return encodePNG(p, mixWidth, mixHeight)
}
