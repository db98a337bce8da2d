package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
)

// InvalidationPattern casa todos os canais de invalidação por evento
// (um canal lógico por eventID, ver topics.InvalidationChannel)
const InvalidationPattern = "auction_invalidate_*"

// InvalidationSink recebe cada mensagem de invalidação decodificada.
// Na prática: SnapshotCache.OnInvalidation e Hub.Broadcast.
type InvalidationSink func(events.Invalidation)

// StartRedisSubscriber inicia uma goroutine que escuta os canais de
// invalidação via Redis Pub/Sub e entrega cada mensagem aos sinks.
//
// Funcionamento:
// - PSubscribe no padrão de canais por evento
// - Desserializa o payload para events.Invalidation
// - Entrega na ordem recebida; dedup por sequência é responsabilidade do sink
func StartRedisSubscriber(ctx context.Context, r *redis.Client, log *zap.Logger, sinks ...InvalidationSink) {
	sub := r.PSubscribe(ctx, InvalidationPattern)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var inv events.Invalidation
				if err := json.Unmarshal([]byte(msg.Payload), &inv); err != nil {
					log.Warn("invalidation unmarshal failed",
						zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				for _, sink := range sinks {
					sink(inv)
				}
			}
		}
	}()
}
