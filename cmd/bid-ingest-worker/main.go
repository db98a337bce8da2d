package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/internal/ingest/consumer"
	"github.com/radieske/live-auction-platform-poc/internal/ingest/pubsub"
	"github.com/radieske/live-auction-platform-poc/internal/ingest/repo"
	sharedcache "github.com/radieske/live-auction-platform-poc/internal/shared/cache"
	"github.com/radieske/live-auction-platform-poc/internal/shared/config"
	"github.com/radieske/live-auction-platform-poc/internal/shared/db"
	sharedkafka "github.com/radieske/live-auction-platform-poc/internal/shared/kafka"
	"github.com/radieske/live-auction-platform-poc/internal/shared/logger"
	"github.com/radieske/live-auction-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres (ledger) e Redis (invalidação)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	defaultPolicy, err := cfg.DefaultPolicy()
	if err != nil {
		log.Fatal("default bid policy", zap.Error(err))
	}

	ledger := repo.NewPostgres(pg, defaultPolicy)
	broadcaster := pubsub.NewBroadcaster(redisClient, log)

	// Consumers Kafka (consumer group bid-ingest)
	bidReader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicBidPlaced, "bid-ingest")
	defer bidReader.Close()
	voteReader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicVoteCast, "bid-ingest")
	defer voteReader.Close()
	artReader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicArtUpdated, "bid-ingest")
	defer artReader.Close()

	bidDLQ := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBidPlacedDLQ)
	defer bidDLQ.Close()
	voteDLQ := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicVoteCastDLQ)
	defer voteDLQ.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_messages_consumed_total", Help: "mensagens consumidas"}, []string{"kind"})
	persisted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_ledger_writes_total", Help: "escritas no ledger"}, []string{"kind"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_rejected_total", Help: "rejeitados na admissão"}, []string{"kind"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persisted, rejected, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		BidReader:   bidReader,
		VoteReader:  voteReader,
		ArtReader:   artReader,
		Repo:        ledger,
		Broadcaster: broadcaster,
		BidDLQ:      bidDLQ,
		VoteDLQ:     voteDLQ,
		OnConsumed:  func(kind string) { consumed.WithLabelValues(kind).Inc() },
		OnPersist:   func(kind string) { persisted.WithLabelValues(kind).Inc() },
		OnRejected:  func(kind string) { rejected.WithLabelValues(kind).Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	defer metricsSrv.Close()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("bid-ingest-worker started")
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("bid-ingest-worker stopped")
}
