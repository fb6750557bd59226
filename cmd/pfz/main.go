package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/pfz-engine/internal/adapter/erddap"
	httpadapter "github.com/couchcryptid/pfz-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/pfz-engine/internal/adapter/kafka"
	"github.com/couchcryptid/pfz-engine/internal/adapter/openmeteo"
	typhoonadapter "github.com/couchcryptid/pfz-engine/internal/adapter/typhoon"
	"github.com/couchcryptid/pfz-engine/internal/config"
	"github.com/couchcryptid/pfz-engine/internal/domain"
	"github.com/couchcryptid/pfz-engine/internal/observability"
	"github.com/couchcryptid/pfz-engine/internal/predictor"
)

// readiness answers readyz once the collaborators are wired. Upstream
// health shows up in stage-failure metrics instead of probe flapping.
type readiness struct{}

func (readiness) CheckReadiness(context.Context) error { return nil }

// alertingCalculator publishes qualifying predictions to Kafka after
// scoring. Publish failures are logged, never surfaced to the caller.
type alertingCalculator struct {
	inner  httpadapter.Calculator
	alerts *kafkaadapter.AlertWriter
	logger *slog.Logger
}

func (a *alertingCalculator) Predict(ctx context.Context, lat, lon float64, days int) (predictor.Prediction, error) {
	pred, err := a.inner.Predict(ctx, lat, lon, days)
	if err != nil {
		return pred, err
	}
	if _, err := a.alerts.Publish(ctx, pred); err != nil {
		a.logger.Warn("alert publish failed", "error", err)
	}
	return pred, nil
}

func (a *alertingCalculator) PredictGrid(ctx context.Context, box domain.BoundingBox, resolution float64, days int) ([]predictor.GridCell, error) {
	return a.inner.PredictGrid(ctx, box, resolution, days)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Satellite sources with shared-nothing per-field caches.
	sst := erddap.NewCachedSource(
		erddap.NewClient(erddap.SST, cfg.ERDDAPBaseURL, cfg.ERDDAPTimeout, metrics, logger),
		erddap.SST.Name, cfg.ERDDAPCacheSize, metrics)
	chla := erddap.NewCachedSource(
		erddap.NewClient(erddap.Chla, cfg.ERDDAPBaseURL, cfg.ERDDAPTimeout, metrics, logger),
		erddap.Chla.Name, cfg.ERDDAPCacheSize, metrics)
	ssh := erddap.NewCachedSource(
		erddap.NewClient(erddap.SSH, cfg.ERDDAPBaseURL, cfg.ERDDAPTimeout, metrics, logger),
		erddap.SSH.Name, cfg.ERDDAPCacheSize, metrics)

	weather := openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.OpenMeteoTimeout, metrics, logger)

	sources := predictor.Sources{
		SSTPoint: sst,
		SSTArea:  sst,
		ChlaArea: chla,
		SSHArea:  ssh,
		Weather:  weather,
	}

	// Typhoon feed (feature-flagged via TYPHOON_ENABLED / TYPHOON_FEED_URL).
	var typhoons predictor.TyphoonSource
	if cfg.TyphoonEnabled {
		typhoons = typhoonadapter.NewClient(cfg.TyphoonFeedURL, cfg.TyphoonTimeout, metrics, logger)
		metrics.TyphoonEnabled.Set(1)
		logger.Info("typhoon monitoring enabled", "feed", cfg.TyphoonFeedURL)
	} else {
		logger.Info("typhoon monitoring disabled")
	}

	// Kafka alerts (feature-flagged via ALERTS_ENABLED).
	var alerts *kafkaadapter.AlertWriter
	if cfg.AlertsEnabled {
		alerts = kafkaadapter.NewAlertWriter(cfg, metrics, logger)
		logger.Info("alert publishing enabled",
			"topic", cfg.KafkaAlertTopic, "threshold", cfg.AlertScoreThreshold)
	} else {
		logger.Info("alert publishing disabled")
	}

	factory := func(species string, vessel domain.VesselType) httpadapter.Calculator {
		opts := []predictor.Option{predictor.WithVessel(vessel)}
		if species != "" {
			opts = append(opts, predictor.WithSpecies(species))
		}
		if typhoons != nil {
			opts = append(opts, predictor.WithTyphoonSource(typhoons))
		}
		var calc httpadapter.Calculator = predictor.New(sources, logger, metrics, opts...)
		if alerts != nil {
			calc = &alertingCalculator{inner: calc, alerts: alerts, logger: logger}
		}
		return calc
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Factory:        factory,
		Weather:        weather,
		Ready:          readiness{},
		DefaultVessel:  domain.ParseVesselType(cfg.DefaultVessel),
		ForecastDays:   cfg.ForecastDays,
		GridResolution: cfg.GridResolution,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if alerts != nil {
		if err := alerts.Close(); err != nil {
			logger.Error("alert writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
