package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
	"github.com/radieske/live-auction-platform-poc/pkg/contracts/topics"
)

func newTestBroadcaster(t *testing.T) (*Broadcaster, *redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBroadcaster(client, zap.NewNop()), client, mr
}

func TestPublish_DeliversTypedMessageOnEventChannel(t *testing.T) {
	b, client, _ := newTestBroadcaster(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, topics.InvalidationChannel("AB1234"))
	defer sub.Close()
	_, err := sub.Receive(ctx) // aguarda a confirmação da inscrição
	require.NoError(t, err)

	b.Publish(ctx, "AB1234", events.ChangeBid, ChangeDetails{ArtworkID: "art-1", Round: 2, Easel: 1})

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var inv events.Invalidation
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &inv))
	assert.Equal(t, "AB1234", inv.EventID)
	assert.Equal(t, events.ChangeBid, inv.ChangeType)
	assert.Equal(t, "art-1", inv.ArtworkID)
	assert.Equal(t, 2, inv.Round)
	assert.Equal(t, int64(1), inv.Sequence)
	assert.False(t, inv.EmittedAt.IsZero())
}

func TestPublish_SequenceIsMonotonicPerEvent(t *testing.T) {
	b, client, _ := newTestBroadcaster(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		b.Publish(ctx, "AB1234", events.ChangeVote, ChangeDetails{})
	}
	b.Publish(ctx, "AB9999", events.ChangeBid, ChangeDetails{})

	seqA, err := client.Get(ctx, topics.InvalidationSeqKey("AB1234")).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), seqA)

	// sequência é por evento, não global
	seqB, err := client.Get(ctx, topics.InvalidationSeqKey("AB9999")).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(1), seqB)
}

func TestPublish_FailureIsSwallowed(t *testing.T) {
	b, _, mr := newTestBroadcaster(t)

	// Redis fora do ar: a escrita original já aconteceu, então Publish não
	// pode propagar erro — a notificação é simplesmente perdida
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NotPanics(t, func() {
		b.Publish(ctx, "AB1234", events.ChangeBid, ChangeDetails{ArtworkID: "art-1"})
	})
}
