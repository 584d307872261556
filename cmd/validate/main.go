// Command validate checks the integrity of an emitted feature GeoJSON: one
// feature per state, no aggregate rows, internally consistent metrics and
// classifications, and, when the input tables are given, agreement with a
// fresh aggregation of those tables.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -features docs/state_energy_features.geojson \
//	  -consumption data/mock/energy_indicators.csv \
//	  -production data/mock/Energy_Production.csv \
//	  -year 2022
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/state-energy-map/internal/adapter/fetch"
	"github.com/couchcryptid/state-energy-map/internal/adapter/tabular"
	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// expectedStates is the number of features a complete map carries.
const expectedStates = 50

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

type options struct {
	features    string
	consumption string
	production  string
	year        string
	noSolar     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.features, "features", "docs/state_energy_features.geojson", "feature GeoJSON written by energymap build")
	flag.StringVar(&opts.consumption, "consumption", "", "consumption table to cross-check (optional)")
	flag.StringVar(&opts.production, "production", "", "production table to cross-check (optional)")
	flag.StringVar(&opts.year, "year", "2022", "year column of the input tables")
	flag.BoolVar(&opts.noSolar, "no-solar", false, "the build ran with INCLUDE_SOLAR=false")
	flag.Parse()

	if (opts.consumption == "") != (opts.production == "") {
		flag.Usage()
		os.Exit(1)
	}
	if code := run(os.Stdout, opts); code != 0 {
		os.Exit(code)
	}
}

// stateProps is one feature's properties keyed by abbreviation.
type stateProps map[string]geojson.Properties

func run(out io.Writer, opts options) int {
	fmt.Fprintln(out, "=== State Energy Map Integrity Validation ===")
	fmt.Fprintln(out)

	data, err := os.ReadFile(opts.features)
	if err != nil {
		fmt.Fprintf(out, "FATAL: read features: %v\n", err)
		return 1
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		fmt.Fprintf(out, "FATAL: parse features: %v\n", err)
		return 1
	}

	shape, states := validateShape(fc)
	phases := []*phase{
		shape,
		validateArithmetic(states),
		validateClassification(states),
	}

	if opts.consumption != "" {
		profiles, err := aggregateInputs(opts)
		if err != nil {
			fmt.Fprintf(out, "FATAL: aggregate inputs: %v\n", err)
			return 1
		}
		phases = append(phases, validateInputParity(states, profiles))
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}
	fmt.Fprintf(out, "\nFeatures: %d\n", len(fc.Features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateShape(fc *geojson.FeatureCollection) (*phase, stateProps) {
	p := &phase{name: "Feature collection shape"}
	states := make(stateProps, len(fc.Features))

	if len(fc.Features) != expectedStates {
		p.errorf("expected %d features, got %d", expectedStates, len(fc.Features))
	}
	for i, f := range fc.Features {
		abbr := f.Properties.MustString("abbreviation", "")
		name := f.Properties.MustString("name", "")
		switch {
		case domain.IsAggregateID(abbr) || domain.IsAggregateID(name):
			p.errorf("feature[%d]: aggregate row %q leaked into the map", i, name)
			continue
		case abbr == "":
			p.errorf("feature[%d]: %q has no abbreviation", i, name)
			continue
		}
		if want, ok := domain.StateName(abbr); !ok || want != name {
			p.errorf("feature[%d]: abbreviation %s does not match name %q", i, abbr, name)
		}
		if _, dup := states[abbr]; dup {
			p.errorf("feature[%d]: duplicate state %s", i, abbr)
		}
		if f.Geometry == nil {
			p.errorf("%s: missing geometry", abbr)
		}
		states[abbr] = f.Properties
	}
	return p, states
}

func validateArithmetic(states stateProps) *phase {
	p := &phase{name: "Profile arithmetic"}
	for abbr, props := range states {
		consumption := props.MustFloat64("consumption", 0)
		total := props.MustFloat64("total_production", 0)

		var sum, shareSum float64
		for _, s := range domain.Sources {
			v := props.MustFloat64(s.Key(), 0)
			if v < 0 {
				p.errorf("%s: negative %s production %g", abbr, s, v)
			}
			sum += v
			shareSum += props.MustFloat64(s.Key()+"_pct", 0)
		}
		if math.Abs(sum-total) > 0.01 {
			p.errorf("%s: sources sum to %g but total_production is %g", abbr, sum, total)
		}
		switch {
		case total > 0 && math.Abs(shareSum-100) > 0.5:
			p.errorf("%s: shares sum to %.1f, want 100", abbr, shareSum)
		case total == 0 && shareSum != 0:
			p.errorf("%s: shares sum to %.1f with no production", abbr, shareSum)
		}

		score := props.MustFloat64("vulnerability_score", 0)
		if score < 0 || score > 1 {
			p.errorf("%s: vulnerability_score %g outside [0, 1]", abbr, score)
		}
		if want := domain.VulnerabilityScore(consumption, total); math.Abs(score-want) > 1e-9 {
			p.errorf("%s: vulnerability_score %g, want %g", abbr, score, want)
		}

		ratio, hasRatio := props["ratio"].(float64)
		switch {
		case consumption == 0 && hasRatio:
			p.errorf("%s: ratio %g set with zero consumption", abbr, ratio)
		case consumption > 0 && props["has_profile"] == true && !hasRatio:
			p.errorf("%s: ratio missing", abbr)
		case hasRatio && math.Abs(ratio-total/consumption) > 1e-9:
			p.errorf("%s: ratio %g, want %g", abbr, ratio, total/consumption)
		}
	}
	return p
}

func validateClassification(states stateProps) *phase {
	p := &phase{name: "Classification consistency"}
	for abbr, props := range states {
		fill := props.MustString("fill", "")
		if props["has_profile"] != true {
			if fill != domain.FallbackColor {
				p.errorf("%s: no profile but fill %s, want %s", abbr, fill, domain.FallbackColor)
			}
			continue
		}

		consumption := props.MustFloat64("consumption", 0)
		total := props.MustFloat64("total_production", 0)
		category := domain.Category(props.MustString("category", ""))
		status := domain.Status(props.MustString("status", ""))

		want := domain.NewProfile(abbr, consumption, domain.SourceMix{Coal: total})
		if category != want.Category {
			p.errorf("%s: category %q, want %q", abbr, category, want.Category)
		}
		if status != want.Status {
			p.errorf("%s: status %q, want %q", abbr, status, want.Status)
		}
		if fill == domain.FallbackColor {
			p.errorf("%s: profiled state rendered with the fallback fill", abbr)
		}
	}
	return p
}

func validateInputParity(states stateProps, profiles []domain.StateEnergyProfile) *phase {
	p := &phase{name: "Input parity"}
	seen := make(map[string]bool, len(profiles))
	for _, want := range profiles {
		seen[want.Abbreviation] = true
		props, ok := states[want.Abbreviation]
		if !ok {
			p.errorf("%s: profile in inputs but no feature", want.Abbreviation)
			continue
		}
		if props["has_profile"] != true {
			p.errorf("%s: profile in inputs but feature has none", want.Abbreviation)
			continue
		}
		if got := props.MustFloat64("consumption", 0); math.Abs(got-want.Consumption) > 0.01 {
			p.errorf("%s: consumption %g, inputs give %g", want.Abbreviation, got, want.Consumption)
		}
		if got := props.MustFloat64("total_production", 0); math.Abs(got-want.TotalProduction) > 0.01 {
			p.errorf("%s: total_production %g, inputs give %g", want.Abbreviation, got, want.TotalProduction)
		}
	}
	for abbr, props := range states {
		if props["has_profile"] == true && !seen[abbr] {
			p.errorf("%s: feature has a profile the inputs do not produce", abbr)
		}
	}
	return p
}

// ── Input aggregation ──

func aggregateInputs(opts options) ([]domain.StateEnergyProfile, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetcher := fetch.New(30*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	consRows, err := tabular.NewSource(fetcher, opts.consumption, opts.year).ConsumptionRows(ctx)
	if err != nil {
		return nil, err
	}
	prodRows, err := tabular.NewSource(fetcher, opts.production, opts.year).ProductionRows(ctx)
	if err != nil {
		return nil, err
	}

	consumption, _ := domain.NormalizeConsumption(consRows)
	production, _ := domain.NormalizeProduction(prodRows, domain.NormalizeOptions{IncludeSolar: !opts.noSolar})
	return domain.BuildProfiles(consumption, production), nil
}
