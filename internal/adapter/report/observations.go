package report

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// Observations turns highlights into narrative paragraphs.
func Observations(h domain.Highlights) []string {
	var out []string

	out = append(out, fmt.Sprintf(
		"Of the states analyzed, %d are net exporters, %d are importers and %d are balanced "+
			"within 5%% of their own consumption.", h.Exporters, h.Importers, h.Balanced))

	if len(h.TopProducers) > 0 {
		parts := make([]string, 0, len(h.TopProducers))
		for _, p := range h.TopProducers {
			parts = append(parts, fmt.Sprintf("%s (%.1fx consumption%s)",
				stateName(p.Abbreviation), *p.ProductionConsumptionRatio, dominantClause(p)))
		}
		out = append(out, "The strongest producers relative to their own demand are "+
			strings.Join(parts, "; ")+".")
	}

	if len(h.MostVulnerable) > 0 {
		parts := make([]string, 0, len(h.MostVulnerable))
		for _, p := range h.MostVulnerable {
			parts = append(parts, fmt.Sprintf("%s (%.2f)", stateName(p.Abbreviation), p.VulnerabilityScore))
		}
		out = append(out, "The vulnerability score ranges from 0.0 to 1.0, with lower values representing "+
			"stronger self-sufficiency. The most import-dependent states are "+strings.Join(parts, ", ")+".")
	}

	var mix []string
	for _, s := range domain.Sources {
		if n := h.DominantCounts[s]; n > 0 {
			mix = append(mix, fmt.Sprintf("%s leads in %d", s, n))
		}
	}
	if len(mix) > 0 {
		out = append(out, "By largest source: "+strings.Join(mix, ", ")+" states.")
	}
	return out
}

func stateName(abbr string) string {
	if name, ok := domain.StateName(abbr); ok {
		return name
	}
	return abbr
}

func dominantClause(p domain.StateEnergyProfile) string {
	src, ok := domain.DominantSource(p)
	if !ok {
		return ""
	}
	return ", mostly " + strings.ToLower(string(src))
}
