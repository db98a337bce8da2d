package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	papicache "github.com/radieske/live-auction-platform-poc/internal/publicapi/cache"
	"github.com/radieske/live-auction-platform-poc/internal/publicapi/httpapi"
	"github.com/radieske/live-auction-platform-poc/internal/publicapi/repo"
	"github.com/radieske/live-auction-platform-poc/internal/publicapi/ws"
	sharedcache "github.com/radieske/live-auction-platform-poc/internal/shared/cache"
	"github.com/radieske/live-auction-platform-poc/internal/shared/config"
	"github.com/radieske/live-auction-platform-poc/internal/shared/db"
	"github.com/radieske/live-auction-platform-poc/internal/shared/logger"
	"github.com/radieske/live-auction-platform-poc/internal/shared/metrics"
	"github.com/radieske/live-auction-platform-poc/internal/snapshot"
	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com o ledger Postgres (somente leitura nesse serviço)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com o Redis (canal de invalidação)
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// Métricas Prometheus
	snapshotBuilds := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "public_api_snapshot_builds_total", Help: "snapshots reconstruídos"})
	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "public_api_invalidations_total", Help: "invalidações recebidas por tipo"},
		[]string{"change_type"})
	prometheus.MustRegister(snapshotBuilds, invalidations)

	defaultPolicy, err := cfg.DefaultPolicy()
	if err != nil {
		log.Fatal("default bid policy", zap.Error(err))
	}

	readRepo := repo.NewReadRepo(pg, defaultPolicy)
	builder := snapshot.NewBuilder(readRepo)

	snapCache := papicache.NewSnapshotCache(log, func(ctx context.Context, eventID string) (*snapshot.PublicSnapshot, error) {
		snap, err := builder.Build(ctx, eventID)
		if err == nil {
			snapshotBuilds.Inc()
		}
		return snap, err
	})

	// Hub WebSocket: viewers se inscrevem por evento e recebem o push de invalidação
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	hub.OnUnsubscribe = func(eventID string) {
		// último viewer saiu: descarta a entrada do cache
		snapCache.Unsubscribe(eventID)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// assina os canais de invalidação e entrega pro cache e pro hub
	ws.StartRedisSubscriber(ctx, redisClient, log,
		func(inv events.Invalidation) {
			invalidations.WithLabelValues(inv.ChangeType).Inc()
			snapCache.OnInvalidation(inv)
		},
		hub.Broadcast,
	)

	// servidor de métricas e health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(hctx context.Context) error {
		if err := pg.PingContext(hctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(hctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	defer metricsSrv.Close()
	log.Info("metrics/health server started", zap.String("port", cfg.MetricsPort))

	api := &httpapi.API{
		Log:      log,
		ReadRepo: readRepo,
		Cache:    snapCache,
		Hub:      hub,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("public api listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
	log.Info("public api stopped")
}
