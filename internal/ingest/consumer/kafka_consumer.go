package consumer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/internal/auction"
	"github.com/radieske/live-auction-platform-poc/internal/ingest/pubsub"
	"github.com/radieske/live-auction-platform-poc/internal/ingest/repo"
	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
)

// Processor consome lances, votos e mudanças de obra do Kafka, grava no
// ledger Postgres e publica a invalidação no canal do evento após cada commit.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log         *zap.Logger
	BidReader   *kafka.Reader
	VoteReader  *kafka.Reader
	ArtReader   *kafka.Reader
	Repo        *repo.Postgres
	Broadcaster *pubsub.Broadcaster

	BidDLQ  *kafka.Writer // lances rejeitados na admissão
	VoteDLQ *kafka.Writer

	OnConsumed func(kind string) // métricas (counter++)
	OnPersist  func(kind string) // métricas
	OnRejected func(kind string) // métricas: rejeitados na admissão
	OnError    func(stage string) // métricas por fase
}

// Run inicia um loop de consumo por tópico e bloqueia até o contexto encerrar
func (p *Processor) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); p.consumeLoop(ctx, "bid", p.BidReader, p.handleBid) }()
	go func() { defer wg.Done(); p.consumeLoop(ctx, "vote", p.VoteReader, p.handleVote) }()
	go func() { defer wg.Done(); p.consumeLoop(ctx, "art", p.ArtReader, p.handleArt) }()
	wg.Wait()
	return ctx.Err()
}

func (p *Processor) consumeLoop(ctx context.Context, kind string, r *kafka.Reader, handle func(context.Context, kafka.Message)) {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.String("kind", kind), zap.Error(err))
			p.metricError("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed(kind) // callback de métrica: mensagem consumida
		}
		handle(ctx, m)
	}
}

// handleBid valida a admissão do lance contra o mínimo corrente, appenda no
// ledger e emite a invalidação. Lance abaixo do mínimo vai pra DLQ — a
// rejeição acontece aqui, na escrita; o agregador nunca rejeita retroativamente.
func (p *Processor) handleBid(ctx context.Context, m kafka.Message) {
	var ev events.BidPlaced
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		p.Log.Warn("invalid bid message", zap.Error(err))
		p.metricError("decode")
		return
	}

	policy, err := p.Repo.GetEventPolicy(ctx, ev.EventID)
	if err != nil {
		p.Log.Warn("event policy fetch failed", zap.String("event_id", ev.EventID), zap.Error(err))
		p.metricError("policy")
		return
	}

	leader, err := p.Repo.GetArtworkLeader(ctx, ev.ArtworkID)
	if err != nil {
		p.Log.Warn("artwork leader fetch failed", zap.String("artwork_id", ev.ArtworkID), zap.Error(err))
		p.metricError("leader")
		return
	}

	minimum, err := auction.NextMinimum(leader, policy)
	if err != nil {
		p.Log.Error("minimum next bid policy misconfigured",
			zap.String("event_id", ev.EventID), zap.Error(err))
		p.metricError("policy")
		return
	}

	if err := auction.ValidateBid(ev.Amount, minimum); err != nil {
		p.Log.Info("bid rejected at admission",
			zap.String("artwork_id", ev.ArtworkID),
			zap.String("amount", ev.Amount.String()),
			zap.String("minimum", minimum.MinimumAmount.String()),
		)
		p.sendToDLQ(ctx, p.BidDLQ, m)
		if p.OnRejected != nil {
			p.OnRejected("bid")
		}
		return
	}

	if _, _, err := p.Repo.InsertBidEvent(ctx, ev); err != nil {
		p.Log.Warn("bid insert failed", zap.Error(err))
		p.metricError("db_insert")
		return
	}
	if p.OnPersist != nil {
		p.OnPersist("bid")
	}

	// escrita confirmada: notifica os assinantes do evento
	p.Broadcaster.Publish(ctx, ev.EventID, events.ChangeBid, pubsub.ChangeDetails{
		ArtworkID: ev.ArtworkID,
	})
}

func (p *Processor) handleVote(ctx context.Context, m kafka.Message) {
	var ev events.VoteCast
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		p.Log.Warn("invalid vote message", zap.Error(err))
		p.metricError("decode")
		return
	}

	if ev.Weight.IsNegative() || ev.CastAt.IsZero() {
		p.Log.Info("vote rejected at admission",
			zap.String("artwork_id", ev.ArtworkID),
			zap.String("weight", ev.Weight.String()),
		)
		p.sendToDLQ(ctx, p.VoteDLQ, m)
		if p.OnRejected != nil {
			p.OnRejected("vote")
		}
		return
	}

	if _, err := p.Repo.InsertVoteEvent(ctx, ev); err != nil {
		p.Log.Warn("vote insert failed", zap.Error(err))
		p.metricError("db_insert")
		return
	}
	if p.OnPersist != nil {
		p.OnPersist("vote")
	}

	p.Broadcaster.Publish(ctx, ev.EventID, events.ChangeVote, pubsub.ChangeDetails{
		ArtworkID: ev.ArtworkID,
		Round:     ev.Round,
		Easel:     ev.Easel,
	})
}

func (p *Processor) handleArt(ctx context.Context, m kafka.Message) {
	var ev events.ArtUpdated
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		p.Log.Warn("invalid art message", zap.Error(err))
		p.metricError("decode")
		return
	}

	if err := p.Repo.UpsertArtworkStatus(ctx, ev); err != nil {
		p.Log.Warn("artwork status upsert failed", zap.Error(err))
		p.metricError("db_upsert")
		return
	}
	if p.OnPersist != nil {
		p.OnPersist("art")
	}

	p.Broadcaster.Publish(ctx, ev.EventID, events.ChangeArt, pubsub.ChangeDetails{
		ArtworkID: ev.ArtworkID,
		Round:     ev.Round,
		Easel:     ev.Easel,
	})
}

func (p *Processor) sendToDLQ(ctx context.Context, w *kafka.Writer, m kafka.Message) {
	if w == nil {
		return
	}
	dlqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := w.WriteMessages(dlqCtx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		p.Log.Warn("dlq write failed", zap.Error(err))
		p.metricError("dlq")
	}
}

func (p *Processor) metricError(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}
