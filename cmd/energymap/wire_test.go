package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/state-energy-map/internal/adapter/chart"
	"github.com/couchcryptid/state-energy-map/internal/adapter/fetch"
	"github.com/couchcryptid/state-energy-map/internal/adapter/geo"
	"github.com/couchcryptid/state-energy-map/internal/adapter/htmlmap"
	"github.com/couchcryptid/state-energy-map/internal/adapter/report"
	"github.com/couchcryptid/state-energy-map/internal/adapter/tabular"
	"github.com/couchcryptid/state-energy-map/internal/config"
	"github.com/couchcryptid/state-energy-map/internal/observability"
	"github.com/couchcryptid/state-energy-map/internal/pipeline"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func names(rs []pipeline.Renderer) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name()
	}
	return out
}

func TestBuildRenderers(t *testing.T) {
	fetcher := fetch.New(time.Second, discardLogger())

	tests := []struct {
		name string
		edit func(*config.Config)
		want []string
	}{
		{
			name: "defaults",
			edit: func(*config.Config) {},
			want: []string{htmlmap.MapFile, geo.FeaturesFile, tabular.WorkbookFile, chart.StaticMapFile},
		},
		{
			name: "minimal",
			edit: func(c *config.Config) {
				c.ExportXLSX = false
				c.RenderStatic = false
			},
			want: []string{htmlmap.MapFile, geo.FeaturesFile},
		},
		{
			name: "report",
			edit: func(c *config.Config) {
				c.RenderReport = true
				c.PopupChartKind = config.ChartPie
			},
			want: []string{htmlmap.MapFile, geo.FeaturesFile, tabular.WorkbookFile, chart.StaticMapFile, report.ReportFile},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.edit(&cfg)

			rs, err := buildRenderers(context.Background(), &cfg, fetcher, discardLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(rs))
		})
	}
}

func TestBuildRenderers_InsightsFile(t *testing.T) {
	fetcher := fetch.New(time.Second, discardLogger())
	cfg := config.Defaults()
	cfg.RenderReport = true

	cfg.InsightsFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err := buildRenderers(context.Background(), &cfg, fetcher, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INSIGHTS_FILE")

	cfg.InsightsFile = filepath.Join(t.TempDir(), "insights.txt")
	require.NoError(t, os.WriteFile(cfg.InsightsFile, []byte("Texas leads."), 0o600))
	_, err = buildRenderers(context.Background(), &cfg, fetcher, discardLogger())
	assert.NoError(t, err)
}

func TestWire(t *testing.T) {
	cfg := config.Defaults()
	cfg.KafkaBrokers = []string{"localhost:9092"}

	app, err := wire(context.Background(), &cfg, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	defer app.close()

	assert.NotNil(t, app.pipeline)
	assert.Len(t, app.closers, 1)
	assert.Error(t, app.pipeline.CheckReadiness(context.Background()))
}

func TestWire_UnknownPalette(t *testing.T) {
	cfg := config.Defaults()
	cfg.ColorPalette = "rainbow"

	_, err := wire(context.Background(), &cfg, discardLogger(), observability.NewMetricsForTesting())
	assert.Error(t, err)
}
