package geo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

const boundariesDoc = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "48", "properties": {"name": "Texas", "density": 98.07},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[4,0],[4,4],[0,4],[0,0]]]}},
    {"type": "Feature", "id": "11", "properties": {"name": "District of Columbia"},
     "geometry": {"type": "Polygon", "coordinates": [[[10,10],[11,10],[11,11],[10,11],[10,10]]]}},
    {"type": "Feature", "id": "15", "properties": {"name": "Hawaii"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[20,20],[22,20],[22,22],[20,22],[20,20]]]]}},
    {"type": "Feature", "properties": {},
     "geometry": {"type": "Point", "coordinates": [1,1]}}
  ]
}`

type stubFetcher struct {
	data []byte
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) { return s.data, s.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseBoundaries(t *testing.T) {
	states, skipped, err := ParseBoundaries([]byte(boundariesDoc))
	require.NoError(t, err)

	require.Len(t, states, 2)
	assert.Equal(t, "TX", states[0].Abbreviation)
	assert.Equal(t, orb.Point{2, 2}, states[0].Centroid)
	assert.Equal(t, "HI", states[1].Abbreviation)
	assert.IsType(t, orb.MultiPolygon{}, states[1].Geometry)
	assert.Equal(t, []string{"District of Columbia", "feature[3]"}, skipped)
}

func TestParseBoundaries_Invalid(t *testing.T) {
	_, _, err := ParseBoundaries([]byte("{"))
	assert.Error(t, err)

	_, _, err = ParseBoundaries([]byte(`{"type":"FeatureCollection","features":[]}`))
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

func TestBoundarySource(t *testing.T) {
	src := NewBoundarySource(stubFetcher{data: []byte(boundariesDoc)}, "us-states.json", discardLogger())

	states, err := src.States(context.Background())
	require.NoError(t, err)
	assert.Len(t, states, 2)
}

func TestBoundarySource_FetchError(t *testing.T) {
	boom := errors.New("unreachable")
	src := NewBoundarySource(stubFetcher{err: boom}, "https://example.com/us-states.json", discardLogger())

	_, err := src.States(context.Background())
	assert.ErrorIs(t, err, boom)
}

func square(x, y float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y}}}
}

func TestProperties(t *testing.T) {
	profile := domain.NewProfile("WY", 100, domain.SourceMix{Coal: 300, Wind: 100})
	sf := domain.StateFeature{
		State:      domain.NewStateRecord("Wyoming", square(0, 0)),
		Profile:    profile,
		HasProfile: true,
		FillColor:  "#2c7bb6",
	}

	props := Properties(sf)

	assert.Equal(t, "Wyoming", props["name"])
	assert.Equal(t, "WY", props["abbreviation"])
	assert.Equal(t, "#2c7bb6", props["fill"])
	assert.Equal(t, 400.0, props["total_production"])
	assert.Equal(t, 4.0, props["ratio"])
	assert.Equal(t, "High Producer", props["category"])
	assert.Equal(t, "Exporter", props["status"])
	assert.Equal(t, 300.0, props["coal"])
	assert.Equal(t, 75.0, props["coal_pct"])
	assert.Equal(t, 0.0, props["natural_gas"])
}

func TestProperties_NoProfile(t *testing.T) {
	sf := domain.StateFeature{
		State:     domain.NewStateRecord("Vermont", square(0, 0)),
		FillColor: domain.FallbackColor,
	}

	props := Properties(sf)

	assert.Equal(t, false, props["has_profile"])
	assert.Nil(t, props["ratio"])
	assert.Equal(t, 0.0, props["consumption"])
	assert.Equal(t, domain.FallbackColor, props["fill"])
}

func TestFeatureRenderer(t *testing.T) {
	data := domain.MapData{Features: []domain.StateFeature{
		{State: domain.NewStateRecord("Ohio", square(0, 0)), FillColor: "#fdae61"},
		{State: domain.NewStateRecord("Iowa", nil), FillColor: domain.FallbackColor},
	}}

	r := FeatureRenderer{}
	assert.Equal(t, FeaturesFile, r.Name())

	out, err := r.Render(context.Background(), data)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(out)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "OH", fc.Features[0].Properties.MustString("abbreviation"))
	assert.Equal(t, "#fdae61", fc.Features[0].Properties.MustString("fill"))
}

func TestMarkerCollection(t *testing.T) {
	fc := MarkerCollection([]domain.Marker{{Name: "Utah", Abbreviation: "UT", Position: orb.Point{-111, 39}}})

	out, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Point","coordinates":[-111,39]},"properties":{"abbreviation":"UT","name":"Utah"}}]}`, string(out))
}
