package auction

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TallyVotes apura os votos de uma rodada (e cavalete, quando informado).
// Pura sobre o conjunto de eventos fornecido.
//
// WeightedScore = soma dos pesos por obra; RawVotes = contagem de votos.
// Ranking: WeightedScore desc, empate por RawVotes desc, empate final por
// ArtworkID asc — ordem total determinística, nenhuma obra compartilha rank.
// Votos com peso negativo são excluídos e contados no retorno flagged.
func TallyVotes(events []VoteEvent, scope TallyScope) (standings []ArtworkVoteStanding, flagged int) {
	type agg struct {
		raw   int
		score decimal.Decimal
	}
	byArtwork := make(map[string]*agg)

	for i := range events {
		ev := &events[i]
		if ev.Round != scope.Round {
			continue
		}
		if scope.Easel != nil && ev.Easel != *scope.Easel {
			continue
		}
		if ev.Weight.IsNegative() {
			flagged++
			continue
		}

		a, ok := byArtwork[ev.ArtworkID]
		if !ok {
			a = &agg{score: decimal.Zero}
			byArtwork[ev.ArtworkID] = a
		}
		a.raw++
		a.score = a.score.Add(ev.Weight)
	}

	standings = make([]ArtworkVoteStanding, 0, len(byArtwork))
	for id, a := range byArtwork {
		standings = append(standings, ArtworkVoteStanding{
			ArtworkID:     id,
			RawVotes:      a.raw,
			WeightedScore: a.score,
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if cmp := standings[i].WeightedScore.Cmp(standings[j].WeightedScore); cmp != 0 {
			return cmp > 0
		}
		if standings[i].RawVotes != standings[j].RawVotes {
			return standings[i].RawVotes > standings[j].RawVotes
		}
		return standings[i].ArtworkID < standings[j].ArtworkID
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings, flagged
}
