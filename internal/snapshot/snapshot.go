package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/live-auction-platform-poc/internal/auction"
)

var (
	// ErrEventNotFound indica evento sem metadata no colaborador (404 na API).
	ErrEventNotFound = errors.New("event not found")

	// ErrUpstreamUnavailable indica ledger ou metadata inalcançável (503 na API).
	// Nunca degrada pra snapshot vazio: zero lances quando o estado real é
	// "desconhecido" seria um bug de corretude.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// EventMetadata é o registro estático do evento vindo do colaborador de metadata.
type EventMetadata struct {
	EventID        string
	Name           string
	CurrencyCode   string
	CurrencySymbol string
	ActiveRound    int
	Policy         auction.PolicyConfig
}

// Ledger é a interface de leitura do colaborador de armazenamento.
// As listas retornadas refletem uma leitura consistente de ponto-no-tempo.
type Ledger interface {
	ListBidEvents(ctx context.Context, eventID string) ([]auction.BidEvent, error)
	ListVoteEvents(ctx context.Context, eventID string, round int) ([]auction.VoteEvent, error)
	GetEventMetadata(ctx context.Context, eventID string) (EventMetadata, error)
}

// ArtworkSummary é a visão pública denormalizada de uma obra.
type ArtworkSummary struct {
	ArtworkID      string           `json:"artwork_id"`
	CurrentBid     *decimal.Decimal `json:"current_bid"`
	BidCount       int              `json:"bid_count"`
	LeaderAsOf     *time.Time       `json:"leader_as_of,omitempty"`
	MinimumNextBid decimal.Decimal  `json:"minimum_next_bid"`
	Increment      decimal.Decimal  `json:"increment"`
	VoteRank       int              `json:"vote_rank,omitempty"`
	RawVotes       int              `json:"raw_votes"`
	WeightedScore  decimal.Decimal  `json:"weighted_score"`
	FlaggedBids    int              `json:"flagged_bids,omitempty"`
}

// PublicSnapshot é a composição derivada servida aos clientes públicos.
// Nunca é persistida; cada Build é uma leitura fresca do ledger.
type PublicSnapshot struct {
	EventID        string           `json:"event_id"`
	Name           string           `json:"name"`
	CurrencyCode   string           `json:"currency_code"`
	CurrencySymbol string           `json:"currency_symbol"`
	ActiveRound    int              `json:"active_round"`
	Artworks       []ArtworkSummary `json:"artworks"`
	GeneratedAt    time.Time        `json:"generated_at"`
}
