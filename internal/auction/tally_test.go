package auction

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vote(artwork string, weight string, round, easel int) VoteEvent {
	return VoteEvent{
		ArtworkID: artwork,
		EventID:   "AB1234",
		VoterRef:  "voter",
		Weight:    decimal.RequireFromString(weight),
		Round:     round,
		Easel:     easel,
		CastAt:    time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
	}
}

func TestTallyVotes_SumsAndCounts(t *testing.T) {
	events := []VoteEvent{
		vote("art-a", "1", 1, 1),
		vote("art-a", "2.5", 1, 1),
		vote("art-b", "1", 1, 2),
	}

	standings, flagged := TallyVotes(events, TallyScope{Round: 1})

	require.Len(t, standings, 2)
	assert.Equal(t, 0, flagged)

	assert.Equal(t, "art-a", standings[0].ArtworkID)
	assert.Equal(t, 2, standings[0].RawVotes)
	assert.True(t, standings[0].WeightedScore.Equal(decimal.RequireFromString("3.5")))
	assert.Equal(t, 1, standings[0].Rank)

	assert.Equal(t, "art-b", standings[1].ArtworkID)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestTallyVotes_FiltersRoundAndEasel(t *testing.T) {
	events := []VoteEvent{
		vote("art-a", "1", 1, 1),
		vote("art-a", "1", 2, 1), // outra rodada
		vote("art-b", "1", 1, 2), // outro cavalete
	}

	easel := 1
	standings, _ := TallyVotes(events, TallyScope{Round: 1, Easel: &easel})

	require.Len(t, standings, 1)
	assert.Equal(t, "art-a", standings[0].ArtworkID)
	assert.Equal(t, 1, standings[0].RawVotes)
}

func TestTallyVotes_TieBrokenByArtworkID(t *testing.T) {
	// empate total de peso e contagem: desempate por artwork_id ascendente
	events := []VoteEvent{
		vote("art-b", "1", 1, 2),
		vote("art-b", "1", 1, 2),
		vote("art-b", "1", 1, 2),
		vote("art-a", "1", 1, 1),
		vote("art-a", "1", 1, 1),
		vote("art-a", "1", 1, 1),
	}

	standings, _ := TallyVotes(events, TallyScope{Round: 1})

	require.Len(t, standings, 2)
	assert.Equal(t, "art-a", standings[0].ArtworkID)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "art-b", standings[1].ArtworkID)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestTallyVotes_RawVotesBreakWeightTie(t *testing.T) {
	// mesmo peso total (3), mas art-b com mais votos individuais
	events := []VoteEvent{
		vote("art-a", "3", 1, 1),
		vote("art-b", "1", 1, 2),
		vote("art-b", "1", 1, 2),
		vote("art-b", "1", 1, 2),
	}

	standings, _ := TallyVotes(events, TallyScope{Round: 1})

	require.Len(t, standings, 2)
	assert.Equal(t, "art-b", standings[0].ArtworkID)
	assert.Equal(t, "art-a", standings[1].ArtworkID)
}

func TestTallyVotes_RankIsTotalOrder(t *testing.T) {
	// todas com peso zero: ranking ainda é ordem total, sem ranks repetidos
	var events []VoteEvent
	for i := 0; i < 8; i++ {
		events = append(events, vote(fmt.Sprintf("art-%d", i), "0", 1, i))
	}

	standings, _ := TallyVotes(events, TallyScope{Round: 1})

	require.Len(t, standings, 8)
	seen := make(map[int]bool)
	for _, s := range standings {
		assert.False(t, seen[s.Rank], "rank %d duplicado", s.Rank)
		seen[s.Rank] = true
	}
}

func TestTallyVotes_ExcludesNegativeWeights(t *testing.T) {
	events := []VoteEvent{
		vote("art-a", "1", 1, 1),
		vote("art-a", "-1", 1, 1),
	}

	standings, flagged := TallyVotes(events, TallyScope{Round: 1})

	assert.Equal(t, 1, flagged)
	require.Len(t, standings, 1)
	assert.Equal(t, 1, standings[0].RawVotes)
	assert.True(t, standings[0].WeightedScore.Equal(decimal.NewFromInt(1)))
}
