package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
	"github.com/radieske/live-auction-platform-poc/pkg/contracts/topics"
)

// ChangeDetails carrega os campos opcionais de uma notificação de invalidação
type ChangeDetails struct {
	ArtworkID string
	Round     int
	Easel     int
}

// Broadcaster publica mensagens de invalidação no canal Redis Pub/Sub do
// evento após cada escrita confirmada no ledger. Múltiplos publicadores
// concorrentes não precisam de coordenação: a sequência vem de um INCR
// atômico no Redis e as mensagens são consumidas de forma idempotente.
type Broadcaster struct {
	r   *redis.Client
	log *zap.Logger

	// Now permite fixar o relógio em teste; nil usa time.Now
	Now func() time.Time
}

func NewBroadcaster(r *redis.Client, log *zap.Logger) *Broadcaster {
	return &Broadcaster{r: r, log: log}
}

// Publish emite a notificação tipada do evento. Chamada síncrona logo depois
// do commit; falha de publicação NUNCA derruba a escrita original — o erro é
// logado e engolido, porque o dado já está no ledger e a consequência de uma
// notificação perdida é só cache obsoleto até a próxima mudança ou refresh
// manual. Entrega at-least-once, sem ordem total garantida.
func (b *Broadcaster) Publish(ctx context.Context, eventID, changeType string, details ChangeDetails) {
	seq, err := b.r.Incr(ctx, topics.InvalidationSeqKey(eventID)).Result()
	if err != nil {
		b.log.Warn("invalidation sequence incr failed, notification dropped",
			zap.String("event_id", eventID), zap.Error(err))
		return
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	msg := events.Invalidation{
		EventID:    eventID,
		ChangeType: changeType,
		ArtworkID:  details.ArtworkID,
		Round:      details.Round,
		Easel:      details.Easel,
		Sequence:   seq,
		EmittedAt:  now().UTC(),
	}

	payload, _ := json.Marshal(msg)
	if err := b.r.Publish(ctx, topics.InvalidationChannel(eventID), payload).Err(); err != nil {
		b.log.Warn("invalidation publish failed, notification dropped",
			zap.String("event_id", eventID),
			zap.String("change_type", changeType),
			zap.Int64("sequence", seq),
			zap.Error(err),
		)
	}
}
