package ws

import (
	"context"
	"encoding/json"
	"sync"
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

func TestRedisSubscriber_DeliversInvalidationsToSinks(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []events.Invalidation
	sink := func(inv events.Invalidation) {
		mu.Lock()
		got = append(got, inv)
		mu.Unlock()
	}

	StartRedisSubscriber(ctx, client, zap.NewNop(), sink)

	// a inscrição via PSubscribe é assíncrona; espera antes de publicar
	time.Sleep(100 * time.Millisecond)

	msg := events.Invalidation{
		EventID:    "AB1234",
		ChangeType: events.ChangeBid,
		ArtworkID:  "art-1",
		Sequence:   7,
		EmittedAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, client.Publish(ctx, topics.InvalidationChannel("AB1234"), payload).Err())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "AB1234", got[0].EventID)
	assert.Equal(t, int64(7), got[0].Sequence)
}

func TestRedisSubscriber_SkipsMalformedPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	StartRedisSubscriber(ctx, client, zap.NewNop(), func(events.Invalidation) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, client.Publish(ctx, topics.InvalidationChannel("AB1234"), "not json").Err())

	good, _ := json.Marshal(events.Invalidation{EventID: "AB1234", ChangeType: events.ChangeVote, Sequence: 1})
	require.NoError(t, client.Publish(ctx, topics.InvalidationChannel("AB1234"), good).Err())

	// só a mensagem válida chega ao sink
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, 2*time.Second, 10*time.Millisecond)
}
