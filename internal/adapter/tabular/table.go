// Package tabular reads the wide SEDS tables from CSV or XLSX and writes the
// profile workbook.
package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/state-energy-map/internal/adapter/fetch"
	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// Fetcher loads a resource by path or URL.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// Table is a header plus data rows. Line numbers are 1-based with the header
// on line 1.
type Table struct {
	Header []string
	Rows   [][]string
}

// Parse decodes CSV or XLSX content according to the file extension. Anything
// that is not .xlsx/.xlsm is read as CSV.
func Parse(data []byte, ext string) (Table, error) {
	switch ext {
	case ".xlsx", ".xlsm":
		return ParseXLSX(data)
	default:
		return ParseCSV(data)
	}
}

// ParseCSV reads comma-separated content. Ragged rows are allowed.
func ParseCSV(data []byte) (Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var t Table
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("parse csv: %w", err)
		}
		if t.Header == nil {
			t.Header = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	if t.Header == nil {
		return Table{}, fmt.Errorf("parse csv: %w", domain.ErrEmptyDataset)
	}
	return t, nil
}

// ParseXLSX reads the first worksheet of a workbook.
func ParseXLSX(data []byte) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, fmt.Errorf("open xlsx: %w", domain.ErrEmptyDataset)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("read sheet %s: %w", sheets[0], domain.ErrEmptyDataset)
	}
	return Table{Header: rows[0], Rows: rows[1:]}, nil
}

// Column returns the index of a header, matched case-insensitively after trimming.
func (t Table) Column(name string) (int, error) {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", domain.ErrMissingColumn, name)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// ConsumptionRows extracts State and the year column.
func ConsumptionRows(t Table, year string) ([]domain.RawConsumptionRow, error) {
	stateCol, err := t.Column("State")
	if err != nil {
		return nil, err
	}
	yearCol, err := t.Column(year)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawConsumptionRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		out = append(out, domain.RawConsumptionRow{
			Line:  i + 2,
			State: cell(row, stateCol),
			Value: cell(row, yearCol),
		})
	}
	return out, nil
}

// ProductionRows extracts State, MSN and the year column.
func ProductionRows(t Table, year string) ([]domain.RawProductionRow, error) {
	stateCol, err := t.Column("State")
	if err != nil {
		return nil, err
	}
	msnCol, err := t.Column("MSN")
	if err != nil {
		return nil, err
	}
	yearCol, err := t.Column(year)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawProductionRow, 0, len(t.Rows))
	for i, row := range t.Rows {
		out = append(out, domain.RawProductionRow{
			Line:  i + 2,
			State: cell(row, stateCol),
			MSN:   cell(row, msnCol),
			Value: cell(row, yearCol),
		})
	}
	return out, nil
}

// Source loads one table from a location.
type Source struct {
	fetcher  Fetcher
	location string
	year     string
}

// NewSource creates a table source for a path or URL and year column.
func NewSource(f Fetcher, location, year string) *Source {
	return &Source{fetcher: f, location: location, year: year}
}

func (s *Source) load(ctx context.Context) (Table, error) {
	data, err := s.fetcher.Fetch(ctx, s.location)
	if err != nil {
		return Table{}, err
	}
	t, err := Parse(data, fetch.Ext(s.location))
	if err != nil {
		return Table{}, fmt.Errorf("%s: %w", s.location, err)
	}
	return t, nil
}

// ConsumptionRows loads the consumption table.
func (s *Source) ConsumptionRows(ctx context.Context) ([]domain.RawConsumptionRow, error) {
	t, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ConsumptionRows(t, s.year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.location, err)
	}
	return rows, nil
}

// ProductionRows loads the production table.
func (s *Source) ProductionRows(ctx context.Context) ([]domain.RawProductionRow, error) {
	t, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ProductionRows(t, s.year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.location, err)
	}
	return rows, nil
}
