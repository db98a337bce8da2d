package auction

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bid(artwork string, amount int64, at time.Time, seq int64) BidEvent {
	return BidEvent{
		ArtworkID: artwork,
		EventID:   "AB1234",
		Amount:    decimal.NewFromInt(amount),
		PlacedAt:  at,
		Seq:       seq,
	}
}

func TestComputeLeader_Empty(t *testing.T) {
	state := ComputeLeader("art-1", nil)

	assert.Nil(t, state.CurrentBid)
	assert.Nil(t, state.LeaderAsOf)
	assert.Equal(t, 0, state.CurrentBidCount)
}

func TestComputeLeader_MaxWins(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	t2 := t1.Add(1 * time.Minute)
	t3 := t1.Add(2 * time.Minute)

	// lance máximo no meio da sequência: [100@T1, 150@T2, 120@T3]
	events := []BidEvent{
		bid("art-1", 100, t1, 1),
		bid("art-1", 150, t2, 2),
		bid("art-1", 120, t3, 3),
	}

	state := ComputeLeader("art-1", events)

	require.NotNil(t, state.CurrentBid)
	assert.True(t, state.CurrentBid.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 3, state.CurrentBidCount)
	require.NotNil(t, state.LeaderAsOf)
	assert.True(t, state.LeaderAsOf.Equal(t2))
}

func TestComputeLeader_TieGoesToEarliest(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	t2 := t1.Add(1 * time.Minute)

	events := []BidEvent{
		bid("art-1", 200, t2, 2),
		bid("art-1", 200, t1, 1), // chegou primeiro ao valor máximo
	}

	state := ComputeLeader("art-1", events)

	require.NotNil(t, state.LeaderAsOf)
	assert.True(t, state.LeaderAsOf.Equal(t1))
}

func TestComputeLeader_TieSameTimestampUsesSeq(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	events := []BidEvent{
		{ArtworkID: "art-1", Amount: decimal.NewFromInt(200), PlacedAt: t1, Seq: 9},
		{ArtworkID: "art-1", Amount: decimal.NewFromInt(200), PlacedAt: t1, Seq: 4},
	}

	state := ComputeLeader("art-1", events)

	require.NotNil(t, state.CurrentBid)
	assert.Equal(t, 2, state.CurrentBidCount)
	// mesmo timestamp: Seq menor venceu, LeaderAsOf é t1 de qualquer forma
	assert.True(t, state.LeaderAsOf.Equal(t1))
}

func TestComputeLeader_OrderIndependent(t *testing.T) {
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	events := []BidEvent{
		bid("art-1", 100, base, 1),
		bid("art-1", 150, base.Add(time.Minute), 2),
		bid("art-1", 120, base.Add(2*time.Minute), 3),
		bid("art-1", 150, base.Add(3*time.Minute), 4),
		bid("art-1", 90, base.Add(4*time.Minute), 5),
	}

	want := ComputeLeader("art-1", events)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]BidEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := ComputeLeader("art-1", shuffled)
		assert.True(t, got.CurrentBid.Equal(*want.CurrentBid))
		assert.Equal(t, want.CurrentBidCount, got.CurrentBidCount)
		assert.True(t, got.LeaderAsOf.Equal(*want.LeaderAsOf))
	}
}

func TestComputeLeader_FlagsInvalidRecordsWithoutCorruptingAggregate(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	events := []BidEvent{
		bid("art-1", 100, t1, 1),
		{ArtworkID: "art-1", Amount: decimal.NewFromInt(-5), PlacedAt: t1, Seq: 2}, // valor inválido
		{ArtworkID: "art-1", Amount: decimal.NewFromInt(300), Seq: 3},              // sem timestamp
	}

	state := ComputeLeader("art-1", events)

	assert.Equal(t, 2, state.FlaggedCount)
	assert.Equal(t, 1, state.CurrentBidCount)
	require.NotNil(t, state.CurrentBid)
	assert.True(t, state.CurrentBid.Equal(decimal.NewFromInt(100)))
}

func TestValidateBid(t *testing.T) {
	minimum := MinimumNextBid{MinimumAmount: decimal.NewFromInt(165)}

	err := ValidateBid(decimal.NewFromInt(165), minimum)
	assert.NoError(t, err)

	err = ValidateBid(decimal.NewFromInt(160), minimum)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = ValidateBid(decimal.Zero, minimum)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
