package domain

import "math"

const (
	// HighProducerRatio is the inclusive lower bound of the High Producer category.
	HighProducerRatio = 1.2
	// MediumRatio is the inclusive lower bound of the Medium category.
	MediumRatio = 0.8
	// BalancedTolerance is the fraction of consumption within which a
	// non-exporting state counts as Balanced.
	BalancedTolerance = 0.05
)

// BuildProfiles reduces cleaned records to one profile per consumption state.
// Production is summed per (state, source); states with consumption but no
// production get zero for every source. Production for states absent from the
// consumption table is ignored, matching the consumption-driven join. Output
// order follows the consumption records.
func BuildProfiles(consumption []ConsumptionRecord, production []ProductionRecord) []StateEnergyProfile {
	mixes := make(map[string]*SourceMix)
	for _, p := range production {
		m, ok := mixes[p.Abbreviation]
		if !ok {
			m = &SourceMix{}
			mixes[p.Abbreviation] = m
		}
		m.Add(p.Source, p.Value)
	}

	profiles := make([]StateEnergyProfile, 0, len(consumption))
	for _, c := range consumption {
		var mix SourceMix
		if m, ok := mixes[c.Abbreviation]; ok {
			mix = *m
		}
		profiles = append(profiles, NewProfile(c.Abbreviation, c.Consumption, mix))
	}
	return profiles
}

// NewProfile derives every metric for one state.
func NewProfile(abbr string, consumption float64, production SourceMix) StateEnergyProfile {
	total := production.Total()
	ratio := ProductionConsumptionRatio(total, consumption)
	return StateEnergyProfile{
		Abbreviation:               abbr,
		Consumption:                consumption,
		Production:                 production,
		Shares:                     SourceShares(production),
		TotalProduction:            total,
		VulnerabilityScore:         VulnerabilityScore(consumption, total),
		ProductionConsumptionRatio: ratio,
		Category:                   classifyProfile(ratio, total),
		Status:                     DeriveStatus(total, consumption),
	}
}

// VulnerabilityScore is the share of consumption not covered by in-state
// production, rounded to 2 decimals and clamped at 0. It is 0 when
// consumption is 0.
func VulnerabilityScore(consumption, totalProduction float64) float64 {
	if consumption == 0 {
		return 0
	}
	v := roundTo((consumption-totalProduction)/consumption, 2)
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// ProductionConsumptionRatio returns total/consumption, or nil when
// consumption is 0.
func ProductionConsumptionRatio(totalProduction, consumption float64) *float64 {
	if consumption == 0 {
		return nil
	}
	r := totalProduction / consumption
	return &r
}

// Classify buckets a ratio. Boundaries resolve to the higher category.
func Classify(ratio float64) Category {
	switch {
	case ratio >= HighProducerRatio:
		return CategoryHighProducer
	case ratio >= MediumRatio:
		return CategoryMedium
	default:
		return CategoryLowProducer
	}
}

// classifyProfile handles the undefined ratio: any production against zero
// consumption is an infinite ratio, nothing against nothing is Low Producer.
func classifyProfile(ratio *float64, totalProduction float64) Category {
	if ratio == nil {
		if totalProduction > 0 {
			return CategoryHighProducer
		}
		return CategoryLowProducer
	}
	return Classify(*ratio)
}

// DeriveStatus evaluates Exporter first, then Balanced, else Importer. A state
// that exceeds consumption by less than the tolerance is still an Exporter.
func DeriveStatus(totalProduction, consumption float64) Status {
	if totalProduction > consumption {
		return StatusExporter
	}
	if math.Abs(totalProduction-consumption) < BalancedTolerance*consumption {
		return StatusBalanced
	}
	return StatusImporter
}

// SourceShares returns each source as a percentage of the total, rounded to
// one decimal. All shares are 0 when the total is 0.
func SourceShares(production SourceMix) SourceMix {
	total := production.Total()
	if total == 0 {
		return SourceMix{}
	}
	var shares SourceMix
	for _, s := range Sources {
		shares.Add(s, roundTo(100*production.Get(s)/total, 1))
	}
	return shares
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
