// Package chart draws PNG charts with gonum/plot: the per-state source mix
// shown in map popups and the static choropleth.
package chart

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// Chart kinds accepted by NewMixChart.
const (
	KindBar = "bar"
	KindPie = "pie"
)

// SourceColors maps each source to its bar/wedge color.
var SourceColors = map[domain.EnergySource]color.RGBA{
	domain.SourceCoal:       mustHex("#636363"),
	domain.SourceNaturalGas: mustHex("#3182bd"),
	domain.SourceNuclear:    mustHex("#fd8d3c"),
	domain.SourceWind:       mustHex("#31a354"),
	domain.SourceSolar:      mustHex("#ffd92f"),
}

// MixChart renders a state's production mix as a PNG.
type MixChart interface {
	PNG(p domain.StateEnergyProfile) ([]byte, error)
}

// NewMixChart returns the chart for a kind name.
func NewMixChart(kind string) (MixChart, error) {
	switch kind {
	case KindBar, "":
		return Bar{}, nil
	case KindPie:
		return Pie{}, nil
	default:
		return nil, fmt.Errorf("unknown chart kind %q", kind)
	}
}

// ParseHex parses a #rrggbb color.
func ParseHex(s string) (color.RGBA, error) {
	var c color.RGBA
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid color %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	c.A = 255
	return c, nil
}

func mustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// encodePNG draws a plot at the given size and returns the PNG bytes.
func encodePNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// swatch is a solid legend thumbnail.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Min.X, Y: c.Max.Y},
	})
}
