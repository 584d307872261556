package geo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// FeaturesFile is the file name of the exported feature collection.
const FeaturesFile = "state_energy_features.geojson"

// FeatureRenderer writes the joined features as a GeoJSON document.
type FeatureRenderer struct{}

// Name returns the output file name.
func (FeatureRenderer) Name() string { return FeaturesFile }

// Render marshals the feature collection.
func (FeatureRenderer) Render(_ context.Context, data domain.MapData) ([]byte, error) {
	out, err := json.Marshal(FeatureCollection(data.Features))
	if err != nil {
		return nil, fmt.Errorf("marshal features: %w", err)
	}
	return out, nil
}

// FeatureCollection converts joined features to GeoJSON. States without
// geometry are left out; they have nothing to draw.
func FeatureCollection(features []domain.StateFeature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, sf := range features {
		if sf.State.Geometry == nil {
			continue
		}
		f := geojson.NewFeature(sf.State.Geometry)
		f.Properties = Properties(sf)
		fc.Append(f)
	}
	return fc
}

// Properties flattens a feature's state and profile into GeoJSON properties.
// A state with no profile carries zeroed metrics.
func Properties(sf domain.StateFeature) geojson.Properties {
	p := sf.Profile
	props := geojson.Properties{
		"name":                sf.State.Name,
		"abbreviation":        sf.State.Abbreviation,
		"fill":                sf.FillColor,
		"has_profile":         sf.HasProfile,
		"consumption":         p.Consumption,
		"total_production":    p.TotalProduction,
		"vulnerability_score": p.VulnerabilityScore,
		"category":            string(p.Category),
		"status":              string(p.Status),
		"ratio":               nil,
	}
	if p.ProductionConsumptionRatio != nil {
		props["ratio"] = *p.ProductionConsumptionRatio
	}
	for _, s := range domain.Sources {
		props[s.Key()] = p.Production.Get(s)
		props[s.Key()+"_pct"] = p.Shares.Get(s)
	}
	return props
}

// MarkerCollection converts label markers to GeoJSON points.
func MarkerCollection(markers []domain.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewFeature(m.Position)
		f.Properties["name"] = m.Name
		f.Properties["abbreviation"] = m.Abbreviation
		fc.Append(f)
	}
	return fc
}
