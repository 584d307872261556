package domain

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lookup.yaml
var lookupYAML []byte

type lookupTables struct {
	States map[string]string       `yaml:"states"` // abbreviation -> full name
	MSN    map[string]EnergySource `yaml:"msn"`
}

var (
	stateNames    map[string]string // abbreviation -> name
	stateAbbrevs  map[string]string // upper-cased name -> abbreviation
	msnSources    map[string]EnergySource
	abbrevsSorted []string
)

func init() {
	tables, err := parseLookupTables(lookupYAML)
	if err != nil {
		panic(err)
	}
	stateNames = tables.States
	stateAbbrevs = make(map[string]string, len(tables.States))
	for abbr, name := range tables.States {
		stateAbbrevs[strings.ToUpper(name)] = abbr
		abbrevsSorted = append(abbrevsSorted, abbr)
	}
	sort.Strings(abbrevsSorted)
	msnSources = tables.MSN
}

func parseLookupTables(data []byte) (lookupTables, error) {
	var t lookupTables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse lookup tables: %w", err)
	}
	if len(t.States) != 50 {
		return t, fmt.Errorf("lookup tables: expected 50 states, got %d", len(t.States))
	}
	seen := make(map[string]string, len(t.States))
	for abbr, name := range t.States {
		if len(abbr) != 2 || abbr != strings.ToUpper(abbr) {
			return t, fmt.Errorf("lookup tables: bad abbreviation %q", abbr)
		}
		key := strings.ToUpper(name)
		if other, ok := seen[key]; ok {
			return t, fmt.Errorf("lookup tables: %q listed for %s and %s", name, other, abbr)
		}
		seen[key] = abbr
	}
	for code, src := range t.MSN {
		if !isKnownSource(src) {
			return t, fmt.Errorf("lookup tables: MSN %s maps to unknown source %q", code, src)
		}
	}
	return t, nil
}

func isKnownSource(s EnergySource) bool {
	for _, known := range Sources {
		if s == known {
			return true
		}
	}
	return false
}

// StateName returns the full name for a two-letter abbreviation.
func StateName(abbr string) (string, bool) {
	name, ok := stateNames[strings.ToUpper(strings.TrimSpace(abbr))]
	return name, ok
}

// AbbreviationFor returns the abbreviation for a full state name, case-insensitive.
func AbbreviationFor(name string) (string, bool) {
	abbr, ok := stateAbbrevs[strings.ToUpper(strings.TrimSpace(name))]
	return abbr, ok
}

// StateAbbreviations returns all 50 abbreviations in alphabetical order.
func StateAbbreviations() []string {
	out := make([]string, len(abbrevsSorted))
	copy(out, abbrevsSorted)
	return out
}

// SourceForMSN maps an MSN code to its EnergySource. The boolean is false for
// codes outside the allow-list.
func SourceForMSN(code string) (EnergySource, bool) {
	src, ok := msnSources[strings.ToUpper(strings.TrimSpace(code))]
	return src, ok
}
