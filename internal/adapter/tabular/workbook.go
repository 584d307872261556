package tabular

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// WorkbookFile is the file name of the profile workbook.
const WorkbookFile = "state_energy_profiles.xlsx"

const (
	profilesSheet = "profiles"
	mixSheet      = "energy_mix"
)

var profileHeaders = []string{
	"State", "Name", "Consumption (GWh)", "Total Production (GWh)",
	"Ratio", "Category", "Status", "Vulnerability Score",
}

// WorkbookRenderer writes profiles and their source mix to an XLSX workbook.
type WorkbookRenderer struct{}

// Name returns the output file name.
func (WorkbookRenderer) Name() string { return WorkbookFile }

// Render builds the workbook in memory.
func (WorkbookRenderer) Render(_ context.Context, data domain.MapData) ([]byte, error) {
	return BuildProfilesXLSX(data.Profiles())
}

// BuildProfilesXLSX renders a "profiles" sheet with one row per state and an
// "energy_mix" sheet with production and share per source.
func BuildProfilesXLSX(profiles []domain.StateEnergyProfile) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", profilesSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(mixSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.SetColWidth(profilesSheet, "A", "H", 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	ps := &sheetWriter{f: f, sheet: profilesSheet}
	for i, h := range profileHeaders {
		ps.set(i+1, 1, h)
	}
	for i, p := range profiles {
		row := i + 2
		name, _ := domain.StateName(p.Abbreviation)
		ps.set(1, row, p.Abbreviation)
		ps.set(2, row, name)
		ps.set(3, row, p.Consumption)
		ps.set(4, row, p.TotalProduction)
		if p.ProductionConsumptionRatio != nil {
			ps.set(5, row, *p.ProductionConsumptionRatio)
		}
		ps.set(6, row, string(p.Category))
		ps.set(7, row, string(p.Status))
		ps.set(8, row, p.VulnerabilityScore)
	}
	if ps.err != nil {
		return nil, ps.err
	}

	ms := &sheetWriter{f: f, sheet: mixSheet}
	ms.set(1, 1, "State")
	for j, s := range domain.Sources {
		ms.set(2+2*j, 1, string(s)+" (GWh)")
		ms.set(3+2*j, 1, string(s)+" %")
	}
	for i, p := range profiles {
		row := i + 2
		ms.set(1, row, p.Abbreviation)
		for j, s := range domain.Sources {
			ms.set(2+2*j, row, p.Production.Get(s))
			ms.set(3+2*j, row, p.Shares.Get(s))
		}
	}
	if ms.err != nil {
		return nil, ms.err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter sets cells by coordinates and keeps the first error; later
// calls are no-ops once one has failed.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = fmt.Errorf("sheet %s: %w", w.sheet, err)
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
		w.err = fmt.Errorf("sheet %s cell %s: %w", w.sheet, cell, err)
	}
}
