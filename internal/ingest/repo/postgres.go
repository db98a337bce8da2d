package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/live-auction-platform-poc/internal/auction"
	"github.com/radieske/live-auction-platform-poc/pkg/contracts/events"
)

// Postgres é o lado de escrita do ledger: só appends, nenhum update de lance
// ou voto. A serialização de escritas concorrentes contra a mesma obra é do
// banco; o core só garante que o agregador reporta o máximo do que ficou.
type Postgres struct {
	DB *sql.DB
	// Política default do serviço pra eventos sem política própria
	Defaults auction.PolicyConfig
}

func NewPostgres(db *sql.DB, defaults auction.PolicyConfig) *Postgres {
	return &Postgres{DB: db, Defaults: defaults}
}

// InsertBidEvent appenda um lance no ledger e retorna id e sequência de inserção
func (p *Postgres) InsertBidEvent(ctx context.Context, e events.BidPlaced) (id string, seq int64, err error) {
	id = uuid.NewString()
	const q = `
		INSERT INTO bid_events (id, artwork_id, event_id, amount, placed_at, bidder_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq;
	`
	err = p.DB.QueryRowContext(ctx, q,
		id, e.ArtworkID, e.EventID, e.Amount, e.PlacedAt, e.BidderRef,
	).Scan(&seq)
	if err != nil {
		return "", 0, fmt.Errorf("insert bid event: %w", err)
	}
	return id, seq, nil
}

// InsertVoteEvent appenda um voto no ledger. A unicidade por votante/rodada é
// responsabilidade do colaborador a montante; aqui não há dedup.
func (p *Postgres) InsertVoteEvent(ctx context.Context, e events.VoteCast) (string, error) {
	id := uuid.NewString()
	const q = `
		INSERT INTO vote_events (id, artwork_id, event_id, voter_ref, weight, round, easel, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	if _, err := p.DB.ExecContext(ctx, q,
		id, e.ArtworkID, e.EventID, e.VoterRef, e.Weight, e.Round, e.Easel, e.CastAt,
	); err != nil {
		return "", fmt.Errorf("insert vote event: %w", err)
	}
	return id, nil
}

// UpsertArtworkStatus registra mudança de estado de uma obra (ativação,
// encerramento, troca de cavalete)
func (p *Postgres) UpsertArtworkStatus(ctx context.Context, e events.ArtUpdated) error {
	const q = `
		INSERT INTO artworks (artwork_id, event_id, status, round, easel, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (artwork_id) DO UPDATE SET
		  status     = EXCLUDED.status,
		  round      = EXCLUDED.round,
		  easel      = EXCLUDED.easel,
		  updated_at = EXCLUDED.updated_at;
	`
	if _, err := p.DB.ExecContext(ctx, q,
		e.ArtworkID, e.EventID, e.Status, e.Round, e.Easel, e.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert artwork status: %w", err)
	}
	return nil
}

// GetEventPolicy lê a política de lance mínimo do evento. Colunas não
// preenchidas caem nos defaults do serviço (POLICY_*).
func (p *Postgres) GetEventPolicy(ctx context.Context, eventID string) (auction.PolicyConfig, error) {
	const q = `
		SELECT opening_minimum, increment_floor, increment_percent, minor_unit_places
		FROM events
		WHERE eid = $1;
	`
	var opening, floor decimal.NullDecimal
	var percent, places sql.NullInt64
	err := p.DB.QueryRowContext(ctx, q, eventID).Scan(&opening, &floor, &percent, &places)
	if err != nil {
		return auction.PolicyConfig{}, fmt.Errorf("get event policy: %w", err)
	}

	var openingPtr, floorPtr *decimal.Decimal
	var percentPtr *int
	var placesPtr *int32
	if opening.Valid {
		openingPtr = &opening.Decimal
	}
	if floor.Valid {
		floorPtr = &floor.Decimal
	}
	if percent.Valid {
		v := int(percent.Int64)
		percentPtr = &v
	}
	if places.Valid {
		v := int32(places.Int64)
		placesPtr = &v
	}
	return auction.ResolvePolicy(p.Defaults, openingPtr, floorPtr, percentPtr, placesPtr), nil
}

// GetArtworkLeader deriva o líder corrente de uma obra direto do ledger
// (máximo e contagem), usado na admissão de lances novos
func (p *Postgres) GetArtworkLeader(ctx context.Context, artworkID string) (auction.ArtworkLeaderState, error) {
	const q = `
		SELECT COALESCE(MAX(amount), 0), COUNT(*)
		FROM bid_events
		WHERE artwork_id = $1 AND amount > 0;
	`
	var maxAmount decimal.Decimal
	var count int
	if err := p.DB.QueryRowContext(ctx, q, artworkID).Scan(&maxAmount, &count); err != nil {
		return auction.ArtworkLeaderState{}, fmt.Errorf("get artwork leader: %w", err)
	}

	state := auction.ArtworkLeaderState{ArtworkID: artworkID, CurrentBidCount: count}
	if count > 0 {
		state.CurrentBid = &maxAmount
	}
	return state, nil
}
