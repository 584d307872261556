package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/state-energy-map/internal/adapter/chart"
	"github.com/couchcryptid/state-energy-map/internal/adapter/fetch"
	"github.com/couchcryptid/state-energy-map/internal/adapter/geo"
	"github.com/couchcryptid/state-energy-map/internal/adapter/htmlmap"
	kafkaadapter "github.com/couchcryptid/state-energy-map/internal/adapter/kafka"
	"github.com/couchcryptid/state-energy-map/internal/adapter/report"
	"github.com/couchcryptid/state-energy-map/internal/adapter/tabular"
	"github.com/couchcryptid/state-energy-map/internal/config"
	"github.com/couchcryptid/state-energy-map/internal/domain"
	"github.com/couchcryptid/state-energy-map/internal/observability"
	"github.com/couchcryptid/state-energy-map/internal/pipeline"
)

type application struct {
	pipeline *pipeline.Pipeline
	closers  []func() error
	logger   *slog.Logger
}

func (a *application) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Error("close error", "error", err)
		}
	}
}

// wire assembles the pipeline and its adapters from configuration.
func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*application, error) {
	palette, err := domain.PaletteByName(cfg.ColorPalette)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(cfg.FetchTimeout, logger)
	src := pipeline.Sources{
		Boundaries:  geo.NewBoundarySource(fetcher, cfg.BoundariesSource, logger),
		Consumption: tabular.NewSource(fetcher, cfg.ConsumptionSource, cfg.DataYear),
		Production:  tabular.NewSource(fetcher, cfg.ProductionSource, cfg.DataYear),
	}

	renderers, err := buildRenderers(ctx, cfg, fetcher, logger)
	if err != nil {
		return nil, err
	}

	app := &application{logger: logger}

	var publisher pipeline.ProfilePublisher
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		app.closers = append(app.closers, writer.Close)
		publisher = writer
		logger.Info("kafka profile sink enabled", "topic", cfg.KafkaProfileTopic, "brokers", cfg.KafkaBrokers)
	}

	opts := pipeline.Options{
		Year:      cfg.DataYear,
		OutputDir: cfg.OutputDir,
		Palette:   palette,
		Normalize: domain.NormalizeOptions{IncludeSolar: cfg.IncludeSolar},
	}
	app.pipeline = pipeline.New(src, renderers, publisher, opts, logger, metrics)
	return app, nil
}

// buildRenderers returns the enabled renderers. The interactive map and the
// feature GeoJSON are always produced.
func buildRenderers(ctx context.Context, cfg *config.Config, fetcher *fetch.Fetcher, logger *slog.Logger) ([]pipeline.Renderer, error) {
	mix, err := chart.NewMixChart(string(cfg.PopupChartKind))
	if err != nil {
		return nil, err
	}

	renderers := []pipeline.Renderer{
		htmlmap.NewRenderer(mix, logger),
		geo.FeatureRenderer{},
	}
	if cfg.ExportXLSX {
		renderers = append(renderers, tabular.WorkbookRenderer{})
	}
	if cfg.RenderStatic {
		renderers = append(renderers, chart.StaticMapRenderer{})
	}
	if cfg.RenderReport {
		var insights string
		if cfg.InsightsFile != "" {
			data, err := fetcher.Fetch(ctx, cfg.InsightsFile)
			if err != nil {
				return nil, fmt.Errorf("read INSIGHTS_FILE: %w", err)
			}
			insights = string(data)
		}
		opts := report.Options{
			Author:    cfg.ReportAuthor,
			Course:    cfg.ReportCourse,
			HostedURL: cfg.HostedMapURL,
			Insights:  insights,
		}
		renderers = append(renderers, report.NewRenderer(chart.StaticMapRenderer{}, opts, logger))
	}
	return renderers, nil
}
