// Package htmlmap renders the interactive Leaflet choropleth as a single HTML document.
package htmlmap

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/couchcryptid/state-energy-map/internal/adapter/geo"
	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// MapFile is the file name of the interactive map.
const MapFile = "energy_production_map.html"

// VulnerabilityBands are the risk bands shown in the legend.
var VulnerabilityBands = []string{"0 → 0.5 (Low Risk)", "0.5 → 1 (High Risk)"}

var (
	//go:embed map.html.tmpl
	mapSource string
	//go:embed popup.html.tmpl
	popupSource string

	mapTemplate   = template.Must(template.New("map").Parse(mapSource))
	popupTemplate = template.Must(template.New("popup").Parse(popupSource))
)

// ChartRenderer draws a state's production mix as a PNG.
type ChartRenderer interface {
	PNG(p domain.StateEnergyProfile) ([]byte, error)
}

// Renderer builds the interactive map document.
type Renderer struct {
	charts ChartRenderer
	logger *slog.Logger
}

// NewRenderer creates a map renderer that embeds charts from c in each popup.
func NewRenderer(c ChartRenderer, logger *slog.Logger) *Renderer {
	return &Renderer{charts: c, logger: logger}
}

// Name returns the output file name.
func (r *Renderer) Name() string { return MapFile }

type tooltipField struct {
	Key   string `json:"key"`
	Alias string `json:"alias"`
}

// tooltipFields lists the properties shown on hover, in order.
func tooltipFields() []tooltipField {
	fields := []tooltipField{
		{Key: "name", Alias: "State:"},
		{Key: "total_production", Alias: "Total Production (GWh):"},
		{Key: "consumption", Alias: "Consumption (GWh):"},
		{Key: "category", Alias: "Category:"},
		{Key: "vulnerability_score", Alias: "Vulnerability Score:"},
		{Key: "status", Alias: "Status:"},
	}
	for _, s := range domain.Sources {
		fields = append(fields, tooltipField{Key: s.Key(), Alias: string(s) + " (GWh):"})
	}
	return fields
}

type marker struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
	Popup string  `json:"popup"`
}

type legendEntry struct {
	Label string
	Color string
}

type share struct {
	Source  domain.EnergySource
	Percent float64
}

type popupView struct {
	Name         string
	Abbreviation string
	HasProfile   bool
	Profile      domain.StateEnergyProfile
	Shares       []share
	Chart        template.URL
}

type mapView struct {
	Title         string
	Year          string
	Features      any
	Markers       []marker
	TooltipFields []tooltipField
	Legend        []legendEntry
	Bands         []string
	Statuses      string
}

// Render builds the document. A chart that fails to draw is logged and left
// out of that state's popup.
func (r *Renderer) Render(ctx context.Context, data domain.MapData) ([]byte, error) {
	byName := make(map[string]domain.StateFeature, len(data.Features))
	for _, f := range data.Features {
		byName[f.State.Name] = f
	}

	markers := make([]marker, 0, len(data.Markers))
	for _, m := range data.Markers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		popup, err := r.popup(m, byName[m.Name])
		if err != nil {
			return nil, err
		}
		markers = append(markers, marker{
			Lat:   m.Position.Y(),
			Lng:   m.Position.X(),
			Label: m.Abbreviation,
			Popup: popup,
		})
	}

	view := mapView{
		Title:         data.Title,
		Year:          data.Year,
		Features:      geo.FeatureCollection(data.Features),
		Markers:       markers,
		TooltipFields: tooltipFields(),
		Legend:        legend(data.Palette),
		Bands:         VulnerabilityBands,
		Statuses:      statusLine(),
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render map: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) popup(m domain.Marker, f domain.StateFeature) (string, error) {
	view := popupView{
		Name:         m.Name,
		Abbreviation: m.Abbreviation,
		HasProfile:   f.HasProfile,
		Profile:      f.Profile,
	}
	if f.HasProfile {
		for _, s := range domain.Sources {
			view.Shares = append(view.Shares, share{Source: s, Percent: f.Profile.Shares.Get(s)})
		}
		png, err := r.charts.PNG(f.Profile)
		if err != nil {
			r.logger.Warn("chart render failed, omitting from popup", "state", m.Abbreviation, "error", err)
		} else {
			view.Chart = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
		}
	}

	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render popup %s: %w", m.Abbreviation, err)
	}
	return buf.String(), nil
}

func legend(p domain.Palette) []legendEntry {
	entries := make([]legendEntry, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		entries = append(entries, legendEntry{Label: string(c), Color: p.Color(c)})
	}
	return entries
}

func statusLine() string {
	return strings.Join([]string{
		string(domain.StatusExporter),
		string(domain.StatusImporter),
		string(domain.StatusBalanced),
	}, " / ")
}
