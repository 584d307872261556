package tabular

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

type stubFetcher struct {
	data map[string][]byte
	err  error
}

func (s stubFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.data[location], nil
}

func xlsxBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseCSV(t *testing.T) {
	data := []byte("\xef\xbb\xbfState,MSN,2021,2022\nTX,CLPRB,\"1,000\",\"2,500\"\nCA,WYTCB,5\n")

	table, err := ParseCSV(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"State", "MSN", "2021", "2022"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2,500", table.Rows[0][3])
	assert.Len(t, table.Rows[1], 3)
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyDataset)
}

func TestParseXLSX(t *testing.T) {
	data := xlsxBytes(t, [][]any{
		{"State", "2022"},
		{"TX", 12345},
		{"US", 99999},
	})

	table, err := ParseXLSX(data)
	require.NoError(t, err)

	assert.Equal(t, []string{"State", "2022"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"TX", "12345"}, table.Rows[0])
}

func TestParseXLSX_Corrupt(t *testing.T) {
	_, err := ParseXLSX([]byte("not a workbook"))
	assert.Error(t, err)
}

func TestParse_DispatchesOnExtension(t *testing.T) {
	csvTable, err := Parse([]byte("State,2022\nTX,1\n"), ".csv")
	require.NoError(t, err)
	assert.Equal(t, "TX", csvTable.Rows[0][0])

	xlsxTable, err := Parse(xlsxBytes(t, [][]any{{"State", "2022"}, {"NY", 3}}), ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, "NY", xlsxTable.Rows[0][0])
}

func TestTableColumn(t *testing.T) {
	table := Table{Header: []string{" state ", "MSN", "2022"}}

	idx, err := table.Column("State")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = table.Column("2021")
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestConsumptionRows(t *testing.T) {
	table := Table{
		Header: []string{"State", "2021", "2022"},
		Rows: [][]string{
			{"TX", "1", "2"},
			{"CA", "3"},
		},
	}

	rows, err := ConsumptionRows(table, "2022")
	require.NoError(t, err)

	assert.Equal(t, []domain.RawConsumptionRow{
		{Line: 2, State: "TX", Value: "2"},
		{Line: 3, State: "CA", Value: ""},
	}, rows)
}

func TestConsumptionRows_MissingYear(t *testing.T) {
	table := Table{Header: []string{"State", "2021"}}

	_, err := ConsumptionRows(table, "2022")
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestProductionRows(t *testing.T) {
	table := Table{
		Header: []string{"State", "MSN", "2022"},
		Rows:   [][]string{{"WY", "CLPRB", "7,000"}},
	}

	rows, err := ProductionRows(table, "2022")
	require.NoError(t, err)

	assert.Equal(t, []domain.RawProductionRow{
		{Line: 2, State: "WY", MSN: "CLPRB", Value: "7,000"},
	}, rows)
}

func TestProductionRows_MissingMSN(t *testing.T) {
	table := Table{Header: []string{"State", "2022"}}

	_, err := ProductionRows(table, "2022")
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestSource(t *testing.T) {
	fetcher := stubFetcher{data: map[string][]byte{
		"consumption.csv": []byte("State,2022\nTX,10\n"),
		"production.xlsx": xlsxBytes(t, [][]any{{"State", "MSN", "2022"}, {"TX", "NUEGP", "4"}}),
	}}

	consumption, err := NewSource(fetcher, "consumption.csv", "2022").ConsumptionRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.RawConsumptionRow{{Line: 2, State: "TX", Value: "10"}}, consumption)

	production, err := NewSource(fetcher, "production.xlsx", "2022").ProductionRows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.RawProductionRow{{Line: 2, State: "TX", MSN: "NUEGP", Value: "4"}}, production)
}

func TestSource_FetchError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewSource(stubFetcher{err: boom}, "x.csv", "2022").ConsumptionRows(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSource_MissingColumnNamesLocation(t *testing.T) {
	fetcher := stubFetcher{data: map[string][]byte{"c.csv": []byte("State,2021\nTX,1\n")}}

	_, err := NewSource(fetcher, "c.csv", "2022").ConsumptionRows(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingColumn)
	assert.Contains(t, err.Error(), "c.csv")
}

func TestBuildProfilesXLSX(t *testing.T) {
	ratio := 1.5
	profiles := []domain.StateEnergyProfile{
		domain.NewProfile("TX", 200, domain.SourceMix{Coal: 100, Wind: 200}),
		{Abbreviation: "ZZ", Category: domain.CategoryLowProducer, ProductionConsumptionRatio: nil},
	}
	profiles[0].ProductionConsumptionRatio = &ratio

	data, err := BuildProfilesXLSX(profiles)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{profilesSheet, mixSheet}, f.GetSheetList())

	rows, err := f.GetRows(profilesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, profileHeaders, rows[0])
	assert.Equal(t, "TX", rows[1][0])
	assert.Equal(t, "Texas", rows[1][1])
	assert.Equal(t, "1.5", rows[1][4])
	assert.Equal(t, string(domain.CategoryHighProducer), rows[1][5])

	mix, err := f.GetRows(mixSheet)
	require.NoError(t, err)
	require.Len(t, mix, 3)
	assert.Equal(t, "Coal (GWh)", mix[0][1])
	assert.Equal(t, "100", mix[1][1])
	assert.Equal(t, "33.3", mix[1][2])
}

func TestWorkbookRenderer(t *testing.T) {
	data := domain.MapData{Features: []domain.StateFeature{
		{Profile: domain.NewProfile("CA", 10, domain.SourceMix{Solar: 5}), HasProfile: true},
		{HasProfile: false},
	}}

	r := WorkbookRenderer{}
	assert.Equal(t, WorkbookFile, r.Name())

	out, err := r.Render(context.Background(), data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(profilesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSheetWriter_KeepsFirstError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	w := &sheetWriter{f: f, sheet: "Sheet1"}
	w.set(1, 1, "ok")
	require.NoError(t, w.err)

	w.set(0, 1, "bad column")
	require.Error(t, w.err)
	first := w.err

	w.set(1, 2, "after failure")
	assert.Equal(t, first, w.err)
	v, err := f.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Empty(t, v, "no writes after the first error")

	missing := &sheetWriter{f: f, sheet: "absent"}
	missing.set(1, 1, "x")
	require.Error(t, missing.err)
	assert.Contains(t, missing.err.Error(), "absent")
}
