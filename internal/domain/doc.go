// Package domain models U.S. state energy production and consumption data and
// the derived per-state profiles shown on the energy map.
//
// # Data Sources
//
// Inputs come from the EIA State Energy Data System (SEDS) extracts, available
// at https://www.eia.gov/state/seds/. Both tables are wide: one row per state
// (or per state and source code) and one column per year.
//
//	Consumption:  State, 1960, ..., 2022
//	Production:   State, MSN, 1960, ..., 2022
//
// State boundaries are a GeoJSON FeatureCollection with a "name" property
// holding the full state name.
//
// # Conventions
//
// State identifiers:
//
//	Tabular sources carry either two-letter codes ("tx", " TX ") or full names
//	("Texas"). Both are upper-cased and trimmed, then resolved against the
//	static 50-state table. DC, territories and anything else outside the table
//	are dropped.
//
// Aggregate rows:
//
//	National rows ("US", "TOTAL US", "U.S. Total") would be double counted as a
//	51st state. Any identifier equal to "US" or "TOTAL US", or containing
//	"TOTAL" in any case, is excluded before lookup.
//
// Numbers:
//
//	Values may contain thousands separators and currency symbols ("1,234",
//	"$5,000.5"). Unparseable values ("NA", "(s)", "") count as missing and
//	contribute 0 to sums.
//
// MSN codes:
//
//	Only an allow-list of production codes is kept; each maps to one of five
//	coarse sources (Coal, Natural Gas, Nuclear, Wind, Solar). Other codes are
//	dropped silently.
//
// # Derived Metrics
//
//	totalProduction   = coal + naturalGas + nuclear + wind + solar
//	vulnerability     = round(max(0, (consumption - total) / consumption), 2), 0 when consumption is 0
//	ratio             = total / consumption, undefined when consumption is 0
//	category          ratio >= 1.2 High Producer | ratio >= 0.8 Medium | else Low Producer
//	status            total > consumption Exporter | |total - consumption| < 5% Balanced | else Importer
//	share             round(100 * source / total, 1), 0 when total is 0
//
// Status is evaluated Exporter first, so a state producing 1-5% more than it
// consumes is an Exporter and never Balanced. See [DeriveStatus].
package domain
