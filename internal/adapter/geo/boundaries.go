// Package geo loads state boundary polygons and exports joined features as GeoJSON.
package geo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// Fetcher loads a resource by path or URL.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// BoundarySource reads state polygons from a GeoJSON feature collection.
type BoundarySource struct {
	fetcher  Fetcher
	location string
	logger   *slog.Logger
}

// NewBoundarySource creates a source for a GeoJSON path or URL.
func NewBoundarySource(f Fetcher, location string, logger *slog.Logger) *BoundarySource {
	return &BoundarySource{fetcher: f, location: location, logger: logger}
}

// States fetches and parses the boundaries. Features that are not one of
// the 50 states are skipped and logged.
func (s *BoundarySource) States(ctx context.Context) ([]domain.StateRecord, error) {
	data, err := s.fetcher.Fetch(ctx, s.location)
	if err != nil {
		return nil, err
	}
	states, skipped, err := ParseBoundaries(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.location, err)
	}
	if len(skipped) > 0 {
		s.logger.Info("skipped non-state boundaries", "names", skipped)
	}
	s.logger.Debug("boundaries loaded", "states", len(states))
	return states, nil
}

// ParseBoundaries decodes a feature collection keyed by a "name" property.
// It returns the state records in input order and the names it skipped.
func ParseBoundaries(data []byte) ([]domain.StateRecord, []string, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, nil, fmt.Errorf("parse geojson: %w", domain.ErrEmptyDataset)
	}

	var (
		states  []domain.StateRecord
		skipped []string
	)
	for i, f := range fc.Features {
		name := f.Properties.MustString("name", "")
		if name == "" {
			skipped = append(skipped, fmt.Sprintf("feature[%d]", i))
			continue
		}
		rec := domain.NewStateRecord(name, polygonal(f.Geometry))
		if rec.Abbreviation == "" {
			skipped = append(skipped, name)
			continue
		}
		states = append(states, rec)
	}
	return states, skipped, nil
}

// polygonal keeps areal geometry and discards anything else.
func polygonal(g orb.Geometry) orb.Geometry {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return g
	default:
		return nil
	}
}
