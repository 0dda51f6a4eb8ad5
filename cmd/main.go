package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/trackmap/internal/config"
	"github.com/UnknownOlympus/trackmap/internal/metrics"
	"github.com/UnknownOlympus/trackmap/internal/render"
	"github.com/UnknownOlympus/trackmap/internal/repository"
	"github.com/UnknownOlympus/trackmap/internal/service"
	"github.com/UnknownOlympus/trackmap/internal/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	repo := repository.NewRepository(afero.NewOsFs(), logger)

	readers := make(map[source.Type]source.Reader)
	for _, typ := range []source.Type{source.TypeKML, source.TypeKMZ, source.TypeGPX} {
		reader, err := source.NewReader(source.ReaderConfig{
			Type:       typ,
			Repository: repo,
			ExtractKMZ: cfg.ExtractKMZ,
			Logger:     logger,
		})
		if err != nil {
			log.Fatalf("Failed to create %s reader: %v", typ, err)
		}
		readers[typ] = reader
	}

	renderer, err := render.NewLeafletRenderer(cfg.Zoom, render.DefaultBasemaps, logger)
	if err != nil {
		log.Fatalf("Failed to create map renderer: %v", err)
	}

	visualizer := service.NewVisualizerService(
		logger,
		repo,
		readers,
		renderer,
		appMetrics,
		cfg.Workers,
		cfg.OutputMode,
		cfg.IncludeGPX,
	)

	logger.InfoContext(ctx, "Scanning track directory", "dir", cfg.Directory, "output_mode", cfg.OutputMode)

	report, runErr := visualizer.Run(ctx, cfg.Directory)
	stop()

	if err = metrics.WriteTextfile(cfg.MetricsFile, reg); err != nil {
		logger.Error("Failed to export metrics", "error", err)
	}

	if report != nil {
		if failed := report.Failed(); len(failed) > 0 {
			logger.Warn("Some track files were skipped", "skipped", len(failed), "read", len(report.Batch.Tracks))
		}
	}

	switch {
	case runErr == nil:
		logger.Info("Run finished",
			"tracks", len(report.Batch.Tracks),
			"points", report.Batch.PointCount(),
			"artifacts", len(report.Artifacts),
		)
	case errors.Is(runErr, service.ErrNoData):
		// Nothing to draw is not a failure.
	default:
		logger.Error("Run failed", "error", runErr)
		os.Exit(1)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

// dropTime removes the timestamp; the log collector stamps lines itself.
func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
