package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/shiptrack/internal/health"
	"github.com/vladislavdragonenkov/shiptrack/internal/metrics"
	"github.com/vladislavdragonenkov/shiptrack/internal/service/rest"
	"github.com/vladislavdragonenkov/shiptrack/internal/service/shipment"
	"github.com/vladislavdragonenkov/shiptrack/internal/storage/postgres"
	"github.com/vladislavdragonenkov/shiptrack/internal/token"
	"github.com/vladislavdragonenkov/shiptrack/internal/version"
)

// Run собирает зависимости и держит HTTP API до отмены контекста.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	if cfg.TokenSecret == "" {
		return errors.New("token secret is required (SHIPTRACK_TOKEN_SECRET or STREAM_SECRET_KEY)")
	}

	healthHandler := healthcheck.NewHandler(version.GetVersion())

	repo, store, err := initStorage(ctx, cfg, healthHandler, logger)
	if err != nil {
		return err
	}

	tokens := token.NewService(cfg.TokenSecret, cfg.TokenTTL)

	publisher, kafkaPublisher, err := initFeedPublisher(cfg, logger)
	if err != nil {
		closeStore(store, logger)
		return err
	}

	apiMetrics := metrics.NewAPIMetrics()

	svc := shipment.NewService(repo, tokens, publisher, shipment.Options{
		ActivityObject: cfg.ActivityObject,
		AllowlistOnly:  cfg.ActivityAllowlist,
		Metrics:        apiMetrics,
	}, logger.WithField("layer", "service"))

	restServer := rest.NewServer(svc, tokens, apiMetrics, logger.WithField("layer", "http"))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{Addr: cfg.APIAddr, Handler: restServer.Handler()}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.APIAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	shutdown := func() {
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		if kafkaPublisher != nil {
			if err := kafkaPublisher.Close(); err != nil {
				logger.WithError(err).Warn("failed to close kafka publisher")
			} else {
				logger.Info("kafka publisher closed")
			}
		}
		closeStore(store, logger)
	}

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdown()
		return ctx.Err()
	case err := <-errCh:
		shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func closeStore(store *postgres.Store, logger *log.Entry) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.WithError(err).Warn("failed to close postgres store")
	}
}

// startMetricsServer запускает служебный HTTP-сервер: метрики и health-пробы.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
