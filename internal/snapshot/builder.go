package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/live-auction-platform-poc/internal/auction"
)

// Builder compõe LeaderAggregator + VoteTally + metadata do evento num
// PublicSnapshot. Sem estado mutável próprio: seguro pra chamadas concorrentes.
type Builder struct {
	Ledger Ledger

	// Now permite fixar o relógio em teste; nil usa time.Now
	Now func() time.Time
}

func NewBuilder(ledger Ledger) *Builder {
	return &Builder{Ledger: ledger}
}

// Build monta o snapshot público de um evento: lê lances e votos do ledger,
// deriva o líder por obra, calcula o lance mínimo seguinte e apura a rodada
// ativa. A chamada inteira é uma leitura lógica única — nunca mistura duas
// leituras distintas do ledger pra mesma obra — e não executa escrita alguma,
// então cancelamento via ctx não deixa efeito pendente.
func (b *Builder) Build(ctx context.Context, eventID string) (*PublicSnapshot, error) {
	meta, err := b.Ledger.GetEventMetadata(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: event metadata: %v", ErrUpstreamUnavailable, err)
	}

	bids, err := b.Ledger.ListBidEvents(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: list bids: %v", ErrUpstreamUnavailable, err)
	}

	votes, err := b.Ledger.ListVoteEvents(ctx, eventID, meta.ActiveRound)
	if err != nil {
		return nil, fmt.Errorf("%w: list votes: %v", ErrUpstreamUnavailable, err)
	}

	bidsByArtwork := make(map[string][]auction.BidEvent)
	for _, ev := range bids {
		bidsByArtwork[ev.ArtworkID] = append(bidsByArtwork[ev.ArtworkID], ev)
	}

	standings, _ := auction.TallyVotes(votes, auction.TallyScope{Round: meta.ActiveRound})
	standingByArtwork := make(map[string]auction.ArtworkVoteStanding, len(standings))
	for _, s := range standings {
		standingByArtwork[s.ArtworkID] = s
	}

	// união das obras com lances e das obras com votos
	artworkIDs := make(map[string]struct{})
	for id := range bidsByArtwork {
		artworkIDs[id] = struct{}{}
	}
	for id := range standingByArtwork {
		artworkIDs[id] = struct{}{}
	}

	artworks := make([]ArtworkSummary, 0, len(artworkIDs))
	for id := range artworkIDs {
		leader := auction.ComputeLeader(id, bidsByArtwork[id])

		minimum, err := auction.NextMinimum(leader, meta.Policy)
		if err != nil {
			return nil, fmt.Errorf("minimum next bid for artwork %s: %w", id, err)
		}

		summary := ArtworkSummary{
			ArtworkID:      id,
			CurrentBid:     leader.CurrentBid,
			BidCount:       leader.CurrentBidCount,
			LeaderAsOf:     leader.LeaderAsOf,
			MinimumNextBid: minimum.MinimumAmount,
			Increment:      minimum.Increment,
			WeightedScore:  decimal.Zero,
			FlaggedBids:    leader.FlaggedCount,
		}
		if s, ok := standingByArtwork[id]; ok {
			summary.VoteRank = s.Rank
			summary.RawVotes = s.RawVotes
			summary.WeightedScore = s.WeightedScore
		}
		artworks = append(artworks, summary)
	}

	sort.Slice(artworks, func(i, j int) bool {
		return artworks[i].ArtworkID < artworks[j].ArtworkID
	})

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	return &PublicSnapshot{
		EventID:        meta.EventID,
		Name:           meta.Name,
		CurrencyCode:   meta.CurrencyCode,
		CurrencySymbol: meta.CurrencySymbol,
		ActiveRound:    meta.ActiveRound,
		Artworks:       artworks,
		GeneratedAt:    now().UTC(),
	}, nil
}
