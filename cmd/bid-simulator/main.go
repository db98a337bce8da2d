package main

import (
	"context"
	"math/rand"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/internal/ingest/publisher"
	"github.com/radieske/live-auction-platform-poc/internal/shared/config"
	"github.com/radieske/live-auction-platform-poc/internal/shared/logger"
	"github.com/radieske/live-auction-platform-poc/internal/shared/metrics"
	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
)

// Catálogo fixo de eventos/obras simulados para geração de tráfego
var eventCatalog = []struct {
	EventID  string
	Artworks []string
}{
	{EventID: "AB1234", Artworks: []string{"art-01", "art-02", "art-03"}},
	{EventID: "AB5678", Artworks: []string{"art-11", "art-12"}},
}

// Métricas Prometheus para monitoramento da geração
var (
	bidsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_bids_sent_total",
		Help: "Total de lances simulados publicados",
	})
	votesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_votes_sent_total",
		Help: "Total de votos simulados publicados",
	})
)

// estado por obra: o simulador sobe o lance acima do último que ele mesmo
// enviou, imitando um pregão disputado
type artworkSim struct {
	mu   sync.Mutex
	last decimal.Decimal
}

func (a *artworkSim) nextBid(rng *rand.Rand) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	// incremento de 10–30% sobre o último lance
	pct := decimal.NewFromInt(int64(10 + rng.Intn(21)))
	inc := a.last.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	floor := decimal.NewFromInt(10)
	if inc.LessThan(floor) {
		inc = floor
	}
	a.last = a.last.Add(inc)
	return a.last
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(bidsSent, votesSent)

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	bidPub := publisher.NewKafkaPublisher(brokers, cfg.TopicBidPlaced, log)
	defer bidPub.Close()
	votePub := publisher.NewKafkaPublisher(brokers, cfg.TopicVoteCast, log)
	defer votePub.Close()

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return nil // o simulador não tem dependência crítica própria
	})
	defer metricsSrv.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sims := make(map[string]*artworkSim)
	for _, ev := range eventCatalog {
		for _, art := range ev.Artworks {
			sims[art] = &artworkSim{last: decimal.NewFromInt(int64(40 + rng.Intn(60)))}
		}
	}

	log.Info("bid-simulator started",
		zap.Int("events", len(eventCatalog)),
		zap.Int("artworks", len(sims)),
	)

	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("bid-simulator stopped")
			return
		case <-ticker.C:
			ev := eventCatalog[rng.Intn(len(eventCatalog))]
			art := ev.Artworks[rng.Intn(len(ev.Artworks))]

			if rng.Intn(3) == 0 {
				// um voto a cada ~3 ticks
				vote := events.VoteCast{
					ArtworkID: art,
					EventID:   ev.EventID,
					VoterRef:  randomRef(rng, "voter"),
					Weight:    decimal.NewFromInt(1),
					Round:     1,
					Easel:     1 + rng.Intn(2),
					CastAt:    time.Now().UTC(),
				}
				if err := votePub.PublishJSON(ctx, ev.EventID, vote); err == nil {
					votesSent.Inc()
				}
				continue
			}

			bid := events.BidPlaced{
				ArtworkID: art,
				EventID:   ev.EventID,
				Amount:    sims[art].nextBid(rng),
				BidderRef: randomRef(rng, "bidder"),
				PlacedAt:  time.Now().UTC(),
			}
			if err := bidPub.PublishJSON(ctx, ev.EventID, bid); err == nil {
				bidsSent.Inc()
			}
		}
	}
}

func randomRef(rng *rand.Rand, prefix string) string {
	const digits = "0123456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = digits[rng.Intn(len(digits))]
	}
	return prefix + "-" + string(b)
}
