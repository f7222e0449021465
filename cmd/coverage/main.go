package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/hospital-coverage/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hospital-coverage/internal/adapter/kafka"
	"github.com/couchcryptid/hospital-coverage/internal/adapter/nominatim"
	"github.com/couchcryptid/hospital-coverage/internal/adapter/overpass"
	"github.com/couchcryptid/hospital-coverage/internal/config"
	"github.com/couchcryptid/hospital-coverage/internal/coverage"
	"github.com/couchcryptid/hospital-coverage/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	finder := overpass.NewClient(cfg.OverpassURL, cfg.OverpassTimeout, cfg.OverpassRate, metrics, logger)
	geocoder := nominatim.NewCachedGeocoder(
		nominatim.NewClient(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, metrics, logger),
		cfg.GeocodeCacheSize,
		metrics,
	)
	opts := []coverage.Option{coverage.WithGeocoder(geocoder)}

	// Analysis events are published only when KAFKA_ENABLED=true.
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		opts = append(opts, coverage.WithSink(publisher))
		logger.Info("analysis publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("analysis publishing disabled")
	}

	analyzer := coverage.NewAnalyzer(finder, logger, metrics, opts...)
	session := coverage.NewSession()
	srv := httpadapter.NewServer(cfg.HTTPAddr, analyzer, session, finder, cfg.CORSAllowedOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
