// Command genmock writes deterministic synthetic inputs for offline runs and
// tests: a consumption table, a production table and a grid of square state
// boundaries. The tables carry the rows a real SEDS extract has that the
// pipeline must drop: national totals, DC, unmapped MSN codes and "(NA)" values.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock -year 2022 -format xlsx
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// productionMSN are the codes written per state. PAPRB (crude oil) is not
// mapped and must be dropped.
var productionMSN = []string{"CLPRB", "NGMPB", "NUEGP", "WYTCB", "SOTCB", "PAPRB"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data/mock", "directory to write the generated files into")
	year := flag.String("year", "2022", "year column to fill; the previous year is added as a distractor")
	format := flag.String("format", "csv", "table format: csv or xlsx")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *format != "csv" && *format != "xlsx" {
		flag.Usage()
		return fmt.Errorf("unsupported -format %q", *format)
	}
	y, err := strconv.Atoi(*year)
	if err != nil {
		return fmt.Errorf("invalid -year %q: %w", *year, err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	header := []string{"State", strconv.Itoa(y - 1), *year}
	consumption, production := generateTables(rng)

	consPath := filepath.Join(*outDir, "energy_indicators."+*format)
	prodPath := filepath.Join(*outDir, "Energy_Production."+*format)
	write := writeCSV
	if *format == "xlsx" {
		write = writeXLSX
	}
	if err := write(consPath, header, consumption); err != nil {
		return err
	}
	prodHeader := []string{"State", "MSN", header[1], header[2]}
	if err := write(prodPath, prodHeader, production); err != nil {
		return err
	}

	boundsPath := filepath.Join(*outDir, "us-states.json")
	if err := writeBoundaries(boundsPath); err != nil {
		return err
	}

	fmt.Printf("Wrote %d consumption rows to %s\n", len(consumption), consPath)
	fmt.Printf("Wrote %d production rows to %s\n", len(production), prodPath)
	fmt.Printf("Wrote %d boundaries to %s\n", len(domain.StateAbbreviations()), boundsPath)
	return nil
}

// generateTables returns consumption rows (State, prev, year) and production
// rows (State, MSN, prev, year).
func generateTables(rng *rand.Rand) (consumption, production [][]string) {
	var total float64
	for i, abbr := range domain.StateAbbreviations() {
		c := 50_000 + rng.Float64()*1_500_000
		total += c
		value := formatThousands(c)
		if i == 7 {
			value = "(NA)"
		}
		consumption = append(consumption, []string{abbr, formatThousands(c * 0.97), value})

		for _, msn := range productionMSN {
			v := rng.Float64() * c * 0.6
			if rng.IntN(4) == 0 {
				v = 0
			}
			production = append(production, []string{abbr, msn, formatThousands(v * 0.95), formatThousands(v)})
		}
	}
	consumption = append(consumption,
		[]string{"DC", "30,000", "31,250"},
		[]string{"US", formatThousands(total * 0.97), formatThousands(total)},
	)
	production = append(production,
		[]string{"US", "CLPRB", "1", "1"},
		[]string{"X3", "NGMPB", "1", "1"},
	)
	return consumption, production
}

// formatThousands renders a rounded value with comma separators, as SEDS
// extracts do.
func formatThousands(v float64) string {
	s := strconv.FormatInt(int64(v+0.5), 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeXLSX(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	return f.SaveAs(path)
}

// writeBoundaries lays the 50 states out as 1.6-degree squares on a 10-wide
// grid over the continental U.S.
func writeBoundaries(path string) error {
	fc := geojson.NewFeatureCollection()
	for i, abbr := range domain.StateAbbreviations() {
		name, _ := domain.StateName(abbr)
		x, y := -124+float64(i%10)*6, 26+float64(i/10)*4.5
		f := geojson.NewFeature(orb.Polygon{{{x, y}, {x + 1.6, y}, {x + 1.6, y + 1.6}, {x, y + 1.6}, {x, y}}})
		f.ID = abbr
		f.Properties["name"] = name
		fc.Append(f)
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
