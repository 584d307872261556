package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/state-energy-map/internal/adapter/http"
	"github.com/couchcryptid/state-energy-map/internal/adapter/htmlmap"
	"github.com/couchcryptid/state-energy-map/internal/observability"
)

func runBuild(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	app, err := wire(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer app.close()

	_, runErr := app.pipeline.Run(ctx)
	pushMetrics(metrics)
	return runErr
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	app, err := wire(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer app.close()

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.OutputDir, htmlmap.MapFile, app.pipeline, logger)

	// Start HTTP server so /healthz answers while the first build runs.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if _, err := app.pipeline.Run(ctx); err != nil {
		logger.Error("build failed, /readyz stays unavailable", "error", err)
	} else {
		logger.Info("preview ready", "url", "http://localhost"+cfg.HTTPAddr+"/")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// pushMetrics sends the run's metrics to the Pushgateway when one is configured.
func pushMetrics(metrics *observability.Metrics) {
	if cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()
	if err := metrics.Push(ctx, cfg.PushgatewayURL); err != nil {
		logger.Warn("metrics push failed", "url", cfg.PushgatewayURL, "error", err)
	}
}
