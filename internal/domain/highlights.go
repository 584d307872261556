package domain

import "sort"

// Highlights summarizes a profile set for narrative text.
type Highlights struct {
	TopProducers   []StateEnergyProfile // by ratio, descending
	MostVulnerable []StateEnergyProfile // by vulnerability score, descending
	DominantCounts map[EnergySource]int // states whose largest source is the key
	Exporters      int
	Importers      int
	Balanced       int
}

// DominantSource returns the largest source in a profile. The boolean is false
// when the state produces nothing.
func DominantSource(p StateEnergyProfile) (EnergySource, bool) {
	var best EnergySource
	var bestV float64
	for _, s := range Sources {
		if v := p.Production.Get(s); v > bestV {
			best, bestV = s, v
		}
	}
	return best, bestV > 0
}

// Summarize computes highlights, keeping up to n states per ranking.
func Summarize(profiles []StateEnergyProfile, n int) Highlights {
	h := Highlights{DominantCounts: make(map[EnergySource]int)}

	for _, p := range profiles {
		switch p.Status {
		case StatusExporter:
			h.Exporters++
		case StatusImporter:
			h.Importers++
		case StatusBalanced:
			h.Balanced++
		}
		if src, ok := DominantSource(p); ok {
			h.DominantCounts[src]++
		}
	}

	byRatio := make([]StateEnergyProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.ProductionConsumptionRatio != nil {
			byRatio = append(byRatio, p)
		}
	}
	sort.SliceStable(byRatio, func(i, j int) bool {
		return *byRatio[i].ProductionConsumptionRatio > *byRatio[j].ProductionConsumptionRatio
	})
	h.TopProducers = firstN(byRatio, n)

	byScore := make([]StateEnergyProfile, len(profiles))
	copy(byScore, profiles)
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].VulnerabilityScore > byScore[j].VulnerabilityScore
	})
	h.MostVulnerable = firstN(byScore, n)

	return h
}

func firstN(ps []StateEnergyProfile, n int) []StateEnergyProfile {
	if len(ps) > n {
		return ps[:n]
	}
	return ps
}
