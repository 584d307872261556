package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingColumn is returned by table readers when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrEmptyDataset is returned when an input yields no usable rows.
	ErrEmptyDataset = errors.New("dataset has no usable rows")
)

// DropReason explains why a row was excluded during normalization.
type DropReason string

const (
	DropAggregate    DropReason = "aggregate"
	DropUnknownState DropReason = "unknown_state"
	DropUnmappedMSN  DropReason = "unmapped_msn"
	DropExcludedMSN  DropReason = "excluded_source"
)

// DropReport counts excluded rows per reason, plus values that failed to parse
// and were treated as 0.
type DropReport struct {
	Dropped     map[DropReason]int
	Unparseable int
}

func newDropReport() DropReport {
	return DropReport{Dropped: make(map[DropReason]int)}
}

// Total returns the number of rows excluded for any reason.
func (r DropReport) Total() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// NormalizeOptions tunes which production sources survive normalization.
type NormalizeOptions struct {
	IncludeSolar bool
}

// DefaultNormalizeOptions keeps every source.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{IncludeSolar: true}
}

// IsAggregateID reports whether an identifier names a national or regional
// total rather than a state.
func IsAggregateID(raw string) bool {
	id := strings.ToUpper(strings.TrimSpace(raw))
	return id == "US" || id == "TOTAL US" || strings.Contains(id, "TOTAL")
}

// NormalizeStateID resolves a raw identifier to a two-letter abbreviation.
// It accepts codes in any case/spacing and full state names. An empty result
// comes with the reason the row should be dropped.
func NormalizeStateID(raw string) (string, DropReason) {
	id := strings.ToUpper(strings.TrimSpace(raw))
	if IsAggregateID(id) {
		return "", DropAggregate
	}
	if _, ok := stateNames[id]; ok {
		return id, ""
	}
	if abbr, ok := stateAbbrevs[id]; ok {
		return abbr, ""
	}
	return "", DropUnknownState
}

// ParseNumber strips thousands separators, currency symbols and whitespace,
// then parses a float. The boolean is false for empty, unparseable or
// non-finite input (NaN, Inf).
func ParseNumber(raw string) (float64, bool) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ',', '$', '€', '£', ' ', '\u00a0', '\t':
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NormalizeConsumption cleans consumption rows and sums duplicates per state.
// Output order follows the first appearance of each state.
func NormalizeConsumption(rows []RawConsumptionRow) ([]ConsumptionRecord, DropReport) {
	report := newDropReport()
	index := make(map[string]int)
	var out []ConsumptionRecord

	for _, row := range rows {
		abbr, reason := NormalizeStateID(row.State)
		if reason != "" {
			report.Dropped[reason]++
			continue
		}
		v, ok := ParseNumber(row.Value)
		if !ok {
			report.Unparseable++
		}
		if i, seen := index[abbr]; seen {
			out[i].Consumption += v
			continue
		}
		index[abbr] = len(out)
		out = append(out, ConsumptionRecord{Abbreviation: abbr, Consumption: v})
	}
	return out, report
}

// NormalizeProduction cleans production rows. The MSN allow-list is checked
// before the state so unmapped codes are reported as such.
func NormalizeProduction(rows []RawProductionRow, opts NormalizeOptions) ([]ProductionRecord, DropReport) {
	report := newDropReport()
	out := make([]ProductionRecord, 0, len(rows))

	for _, row := range rows {
		src, ok := SourceForMSN(row.MSN)
		if !ok {
			report.Dropped[DropUnmappedMSN]++
			continue
		}
		if src == SourceSolar && !opts.IncludeSolar {
			report.Dropped[DropExcludedMSN]++
			continue
		}
		abbr, reason := NormalizeStateID(row.State)
		if reason != "" {
			report.Dropped[reason]++
			continue
		}
		v, parsed := ParseNumber(row.Value)
		if !parsed {
			report.Unparseable++
		}
		out = append(out, ProductionRecord{
			Abbreviation: abbr,
			MSN:          strings.ToUpper(strings.TrimSpace(row.MSN)),
			Source:       src,
			Value:        v,
		})
	}
	return out, report
}
