package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeStateID(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		reason   DropReason
	}{
		{"abbreviation", "TX", "TX", ""},
		{"lowercase with spaces", "  ca ", "CA", ""},
		{"full name", "Texas", "TX", ""},
		{"full name mixed case", "nEw YoRk", "NY", ""},
		{"US", "US", "", DropAggregate},
		{"TOTAL US", "total us", "", DropAggregate},
		{"contains total", "U.S. Total", "", DropAggregate},
		{"region total", "Midwest TOTAL", "", DropAggregate},
		{"DC", "DC", "", DropUnknownState},
		{"territory", "Puerto Rico", "", DropUnknownState},
		{"empty", "", "", DropUnknownState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			abbr, reason := NormalizeStateID(tt.raw)
			assert.Equal(t, tt.expected, abbr)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw      string
		expected float64
		ok       bool
	}{
		{"1234", 1234, true},
		{"1,234,567", 1234567, true},
		{"$5,000.50", 5000.5, true},
		{" 42.5 ", 42.5, true},
		{"-3", -3, true},
		{"", 0, false},
		{"NA", 0, false},
		{"(s)", 0, false},
		{"$", 0, false},
		{"NaN", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"-Inf", 0, false},
		{"Infinity", 0, false},
		{"1e999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, ok := ParseNumber(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestNormalizeConsumption(t *testing.T) {
	rows := []RawConsumptionRow{
		{Line: 2, State: "TX", Value: "1,000"},
		{Line: 3, State: "Texas", Value: "500"},
		{Line: 4, State: "ca", Value: "2,500.5"},
		{Line: 5, State: "TOTAL US", Value: "99,999"},
		{Line: 6, State: "US", Value: "99,999"},
		{Line: 7, State: "DC", Value: "10"},
		{Line: 8, State: "WY", Value: "NA"},
	}

	records, report := NormalizeConsumption(rows)

	expected := []ConsumptionRecord{
		{Abbreviation: "TX", Consumption: 1500},
		{Abbreviation: "CA", Consumption: 2500.5},
		{Abbreviation: "WY", Consumption: 0},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, report.Dropped[DropAggregate])
	assert.Equal(t, 1, report.Dropped[DropUnknownState])
	assert.Equal(t, 1, report.Unparseable)
	assert.Equal(t, 3, report.Total())
}

func TestNormalizeProduction(t *testing.T) {
	rows := []RawProductionRow{
		{State: "TX", MSN: "NGMPB", Value: "10,000"},
		{State: "TX", MSN: "WYTCB", Value: "4,000"},
		{State: "TX", MSN: "SOTCB", Value: "1,000"},
		{State: "TX", MSN: "HYTCB", Value: "700"},
		{State: "US", MSN: "CLPRB", Value: "1"},
		{State: "PR", MSN: "CLPRB", Value: "1"},
		{State: "wy", MSN: "clprb", Value: "bad"},
	}

	t.Run("all sources", func(t *testing.T) {
		records, report := NormalizeProduction(rows, DefaultNormalizeOptions())

		expected := []ProductionRecord{
			{Abbreviation: "TX", MSN: "NGMPB", Source: SourceNaturalGas, Value: 10000},
			{Abbreviation: "TX", MSN: "WYTCB", Source: SourceWind, Value: 4000},
			{Abbreviation: "TX", MSN: "SOTCB", Source: SourceSolar, Value: 1000},
			{Abbreviation: "WY", MSN: "CLPRB", Source: SourceCoal, Value: 0},
		}
		if diff := cmp.Diff(expected, records); diff != "" {
			t.Errorf("records mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 1, report.Dropped[DropUnmappedMSN])
		assert.Equal(t, 1, report.Dropped[DropAggregate])
		assert.Equal(t, 1, report.Dropped[DropUnknownState])
		assert.Equal(t, 1, report.Unparseable)
	})

	t.Run("solar excluded", func(t *testing.T) {
		records, report := NormalizeProduction(rows, NormalizeOptions{IncludeSolar: false})

		for _, r := range records {
			assert.NotEqual(t, SourceSolar, r.Source)
		}
		assert.Len(t, records, 3)
		assert.Equal(t, 1, report.Dropped[DropExcludedMSN])
	})
}
