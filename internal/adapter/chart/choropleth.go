package chart

import (
	"context"
	"fmt"
	"image/color"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// StaticMapFile is the file name of the static choropleth image.
const StaticMapFile = "energy_production_map.png"

const (
	mapWidth  = 14 * vg.Inch
	mapHeight = 10 * vg.Inch
)

// StaticMapRenderer draws the choropleth as a PNG.
type StaticMapRenderer struct{}

// Name returns the output file name.
func (StaticMapRenderer) Name() string { return StaticMapFile }

// Render draws the map.
func (StaticMapRenderer) Render(_ context.Context, data domain.MapData) ([]byte, error) {
	return StaticMap(data)
}

// StaticMap fills each state polygon with its category color, writes the
// state label at its centroid and adds a category legend.
func StaticMap(data domain.MapData) ([]byte, error) {
	p := plot.New()
	p.Title.Text = data.Title
	if data.Year != "" {
		p.Title.Text = fmt.Sprintf("%s (%s)", data.Title, data.Year)
	}
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.HideAxes()

	for _, f := range data.Features {
		fill, err := ParseHex(f.FillColor)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.State.Name, err)
		}
		for _, poly := range polygons(f.State.Geometry) {
			shape, err := plotter.NewPolygon(rings(poly)...)
			if err != nil {
				return nil, fmt.Errorf("%s polygon: %w", f.State.Name, err)
			}
			shape.Color = withAlpha(fill, 0xb3)
			shape.LineStyle.Color = color.Black
			shape.LineStyle.Width = vg.Points(0.5)
			p.Add(shape)
		}
	}

	if len(data.Markers) > 0 {
		labels := plotter.XYLabels{
			XYs:    make([]plotter.XY, len(data.Markers)),
			Labels: make([]string, len(data.Markers)),
		}
		for i, m := range data.Markers {
			labels.XYs[i] = plotter.XY{X: m.Position.X(), Y: m.Position.Y()}
			labels.Labels[i] = m.Abbreviation
		}
		names, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("state labels: %w", err)
		}
		for i := range names.TextStyle {
			names.TextStyle[i].Color = color.White
			names.TextStyle[i].Font.Size = vg.Points(6)
			names.TextStyle[i].XAlign = draw.XCenter
			names.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(names)
	}

	for _, c := range domain.Categories {
		fill, err := ParseHex(data.Palette.Color(c))
		if err != nil {
			return nil, fmt.Errorf("legend %s: %w", c, err)
		}
		p.Legend.Add(string(c), swatch{color: fill})
	}
	p.Legend.Add("No data", swatch{color: mustHex(domain.FallbackColor)})
	p.Legend.Top = false
	p.Legend.Left = true

	return encodePNG(p, mapWidth, mapHeight)
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

func polygons(g orb.Geometry) []orb.Polygon {
	switch g := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return g
	default:
		return nil
	}
}

// rings converts an outer ring and its holes to plotter coordinates.
func rings(poly orb.Polygon) []plotter.XYer {
	out := make([]plotter.XYer, 0, len(poly))
	for _, r := range poly {
		xys := make(plotter.XYs, len(r))
		for i, pt := range r {
			xys[i] = plotter.XY{X: pt.X(), Y: pt.Y()}
		}
		out = append(out, xys)
	}
	return out
}
