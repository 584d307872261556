package domain

import (
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// EnergySource is a coarse production category that MSN codes map onto.
type EnergySource string

const (
	SourceCoal       EnergySource = "Coal"
	SourceNaturalGas EnergySource = "Natural Gas"
	SourceNuclear    EnergySource = "Nuclear"
	SourceWind       EnergySource = "Wind"
	SourceSolar      EnergySource = "Solar"
)

// Sources lists every EnergySource in display order.
var Sources = []EnergySource{SourceCoal, SourceNaturalGas, SourceNuclear, SourceWind, SourceSolar}

// Key returns the snake_case identifier used in exported attributes.
func (s EnergySource) Key() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "_")
}

// Category buckets a state by its production/consumption ratio.
type Category string

const (
	CategoryHighProducer Category = "High Producer"
	CategoryMedium       Category = "Medium"
	CategoryLowProducer  Category = "Low Producer"
)

// Categories lists every Category from highest to lowest.
var Categories = []Category{CategoryHighProducer, CategoryMedium, CategoryLowProducer}

// Status describes a state's net trade position.
type Status string

const (
	StatusExporter Status = "Exporter"
	StatusImporter Status = "Importer"
	StatusBalanced Status = "Balanced"
)

// StateRecord is one state polygon from the boundary dataset.
type StateRecord struct {
	Name         string
	Abbreviation string // empty when the name is not one of the 50 states
	Geometry     orb.Geometry
	Centroid     orb.Point
}

// RawConsumptionRow is one unparsed row of the consumption table for the selected year.
type RawConsumptionRow struct {
	Line  int // 1-based source line, for logging
	State string
	Value string
}

// RawProductionRow is one unparsed row of the production table for the selected year.
type RawProductionRow struct {
	Line  int
	State string
	MSN   string
	Value string
}

// ConsumptionRecord is the annual consumption of one state in GWh.
type ConsumptionRecord struct {
	Abbreviation string
	Consumption  float64
}

// ProductionRecord is one (state, source) production value in GWh.
type ProductionRecord struct {
	Abbreviation string
	MSN          string
	Source       EnergySource
	Value        float64
}

// SourceMix holds per-source values, either GWh or percentage shares.
type SourceMix struct {
	Coal       float64 `json:"coal"`
	NaturalGas float64 `json:"natural_gas"`
	Nuclear    float64 `json:"nuclear"`
	Wind       float64 `json:"wind"`
	Solar      float64 `json:"solar"`
}

// Get returns the value for a source.
func (m SourceMix) Get(s EnergySource) float64 {
	switch s {
	case SourceCoal:
		return m.Coal
	case SourceNaturalGas:
		return m.NaturalGas
	case SourceNuclear:
		return m.Nuclear
	case SourceWind:
		return m.Wind
	case SourceSolar:
		return m.Solar
	default:
		return 0
	}
}

// Add increments the value for a source.
func (m *SourceMix) Add(s EnergySource, v float64) {
	switch s {
	case SourceCoal:
		m.Coal += v
	case SourceNaturalGas:
		m.NaturalGas += v
	case SourceNuclear:
		m.Nuclear += v
	case SourceWind:
		m.Wind += v
	case SourceSolar:
		m.Solar += v
	}
}

// Total sums all five sources.
func (m SourceMix) Total() float64 {
	return m.Coal + m.NaturalGas + m.Nuclear + m.Wind + m.Solar
}

// StateEnergyProfile is the derived per-state view. It is computed once per run
// and never mutated afterwards.
type StateEnergyProfile struct {
	Abbreviation       string    `json:"abbreviation"`
	Consumption        float64   `json:"consumption"`
	Production         SourceMix `json:"production"`
	Shares             SourceMix `json:"shares"`
	TotalProduction    float64   `json:"total_production"`
	VulnerabilityScore float64   `json:"vulnerability_score"`
	// ProductionConsumptionRatio is nil when consumption is 0.
	ProductionConsumptionRatio *float64 `json:"production_consumption_ratio"`
	Category                   Category `json:"category"`
	Status                     Status   `json:"status"`
}

// StateFeature is one state polygon with its profile attached. Profile is the
// zero value (and HasProfile false) when the left join found no match.
type StateFeature struct {
	State      StateRecord
	Profile    StateEnergyProfile
	HasProfile bool
	FillColor  string
}

// Marker is a label/popup anchor placed at a state's centroid.
type Marker struct {
	Name         string
	Abbreviation string
	Position     orb.Point
}

// MapData is everything a renderer needs for one run.
type MapData struct {
	Title       string
	Year        string
	Palette     Palette
	Features    []StateFeature
	Markers     []Marker
	GeneratedAt time.Time
}

// Profiles returns the profiles of joined features, in feature order.
func (m MapData) Profiles() []StateEnergyProfile {
	out := make([]StateEnergyProfile, 0, len(m.Features))
	for _, f := range m.Features {
		if f.HasProfile {
			out = append(out, f.Profile)
		}
	}
	return out
}
