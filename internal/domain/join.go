package domain

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultMapTitle is the banner shown on every rendered map.
const DefaultMapTitle = "U.S. Energy Production and Vulnerability Analysis"

// FallbackColor fills states that have no profile or no geometry.
const FallbackColor = "#bdbdbd"

// Palette assigns a fill color to each category.
type Palette struct {
	Name   string
	Colors map[Category]string
}

var palettes = map[string]Palette{
	"colorblind": {Name: "colorblind", Colors: map[Category]string{
		CategoryHighProducer: "#2c7bb6",
		CategoryMedium:       "#fdae61",
		CategoryLowProducer:  "#d7191c",
	}},
	"ylgnbu": {Name: "ylgnbu", Colors: map[Category]string{
		CategoryHighProducer: "#253494",
		CategoryMedium:       "#41b6c4",
		CategoryLowProducer:  "#ffffcc",
	}},
	"viridis": {Name: "viridis", Colors: map[Category]string{
		CategoryHighProducer: "#fde725",
		CategoryMedium:       "#21918c",
		CategoryLowProducer:  "#440154",
	}},
}

// PaletteByName looks up a palette, case-insensitive.
func PaletteByName(name string) (Palette, error) {
	p, ok := palettes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Palette{}, fmt.Errorf("unknown color palette %q", name)
	}
	return p, nil
}

// PaletteNames lists the supported palette names.
func PaletteNames() []string {
	return []string{"colorblind", "ylgnbu", "viridis"}
}

// Color returns the fill for a category, or FallbackColor.
func (p Palette) Color(c Category) string {
	if col, ok := p.Colors[c]; ok {
		return col
	}
	return FallbackColor
}

// NewStateRecord resolves a boundary feature's name and derives its centroid.
// A nil geometry leaves the centroid at the origin.
func NewStateRecord(name string, geometry orb.Geometry) StateRecord {
	rec := StateRecord{Name: strings.TrimSpace(name), Geometry: geometry}
	if abbr, ok := AbbreviationFor(name); ok {
		rec.Abbreviation = abbr
	}
	if geometry != nil {
		rec.Centroid, _ = planar.CentroidArea(geometry)
	}
	return rec
}

// JoinFeatures left-joins profiles onto boundary records by abbreviation.
// Every state record yields exactly one feature; records without a profile or
// without geometry keep zero metrics and the fallback fill. Misses are logged.
func JoinFeatures(states []StateRecord, profiles []StateEnergyProfile, palette Palette, logger *slog.Logger) []StateFeature {
	byAbbr := make(map[string]StateEnergyProfile, len(profiles))
	for _, p := range profiles {
		byAbbr[p.Abbreviation] = p
	}

	features := make([]StateFeature, 0, len(states))
	for _, st := range states {
		f := StateFeature{State: st, FillColor: FallbackColor}
		p, ok := byAbbr[st.Abbreviation]
		switch {
		case st.Abbreviation == "":
			logger.Warn("boundary not in state table, rendering with fallback fill", "name", st.Name)
		case !ok:
			logger.Warn("no profile for state, rendering with fallback fill", "state", st.Abbreviation)
		default:
			f.Profile = p
			f.HasProfile = true
		}
		if st.Geometry == nil {
			logger.Warn("missing geometry for state", "name", st.Name, "state", st.Abbreviation)
		} else if f.HasProfile {
			f.FillColor = palette.Color(p.Category)
		}
		features = append(features, f)
	}
	return features
}

// BuildMarkers places one marker per feature that has geometry.
func BuildMarkers(features []StateFeature) []Marker {
	markers := make([]Marker, 0, len(features))
	for _, f := range features {
		if f.State.Geometry == nil {
			continue
		}
		label := f.State.Abbreviation
		if label == "" {
			label = f.State.Name
		}
		markers = append(markers, Marker{
			Name:         f.State.Name,
			Abbreviation: label,
			Position:     f.State.Centroid,
		})
	}
	return markers
}

// NewMapData assembles the renderer hand-off for one run, stamped with the
// package clock.
func NewMapData(year string, states []StateRecord, profiles []StateEnergyProfile, palette Palette, logger *slog.Logger) MapData {
	features := JoinFeatures(states, profiles, palette, logger)
	return MapData{
		Title:       DefaultMapTitle,
		Year:        year,
		Palette:     palette,
		Features:    features,
		Markers:     BuildMarkers(features),
		GeneratedAt: clock.Now(),
	}
}
