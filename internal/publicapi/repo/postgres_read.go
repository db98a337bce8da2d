package repo

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/radieske/live-auction-platform-poc/internal/auction"
	"github.com/radieske/live-auction-platform-poc/internal/publicapi/dto"
	"github.com/radieske/live-auction-platform-poc/internal/snapshot"
)

// ReadRepo é o lado de leitura do ledger no Postgres.
// Implementa snapshot.Ledger; cada query individual é uma leitura consistente
// de ponto-no-tempo (visibilidade de snapshot do Postgres), como o Builder exige.
type ReadRepo struct {
	DB *sql.DB
	// Política default do serviço pra eventos sem política própria
	Defaults auction.PolicyConfig
}

func NewReadRepo(db *sql.DB, defaults auction.PolicyConfig) *ReadRepo {
	return &ReadRepo{DB: db, Defaults: defaults}
}

// GetEventMetadata busca o registro estático do evento. As colunas da política
// são opcionais; ausências caem nos defaults do serviço.
// sql.ErrNoRows vira snapshot.ErrEventNotFound.
func (r *ReadRepo) GetEventMetadata(ctx context.Context, eventID string) (snapshot.EventMetadata, error) {
	const q = `
		SELECT eid, name, currency_code, currency_symbol, active_round,
		       opening_minimum, increment_floor, increment_percent, minor_unit_places
		FROM events
		WHERE eid = $1;
	`
	var meta snapshot.EventMetadata
	var opening, floor decimal.NullDecimal
	var percent, places sql.NullInt64
	err := r.DB.QueryRowContext(ctx, q, eventID).Scan(
		&meta.EventID, &meta.Name, &meta.CurrencyCode, &meta.CurrencySymbol,
		&meta.ActiveRound,
		&opening, &floor, &percent, &places,
	)
	if err == sql.ErrNoRows {
		return snapshot.EventMetadata{}, snapshot.ErrEventNotFound
	}
	if err != nil {
		return snapshot.EventMetadata{}, err
	}
	meta.Policy = auction.ResolvePolicy(r.Defaults,
		nullDecimalPtr(opening), nullDecimalPtr(floor),
		nullIntPtr(percent), nullInt32Ptr(places))
	return meta, nil
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullInt32Ptr(n sql.NullInt64) *int32 {
	if !n.Valid {
		return nil
	}
	v := int32(n.Int64)
	return &v
}

// ListBidEvents retorna todos os lances de um evento, sem agregação.
func (r *ReadRepo) ListBidEvents(ctx context.Context, eventID string) ([]auction.BidEvent, error) {
	const q = `
		SELECT id, artwork_id, event_id, amount, placed_at, seq, bidder_ref
		FROM bid_events
		WHERE event_id = $1
		ORDER BY placed_at, seq;
	`
	rows, err := r.DB.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auction.BidEvent
	for rows.Next() {
		var ev auction.BidEvent
		if err := rows.Scan(&ev.ID, &ev.ArtworkID, &ev.EventID, &ev.Amount,
			&ev.PlacedAt, &ev.Seq, &ev.BidderRef); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ListVoteEvents retorna os votos de um evento numa rodada.
func (r *ReadRepo) ListVoteEvents(ctx context.Context, eventID string, round int) ([]auction.VoteEvent, error) {
	const q = `
		SELECT id, artwork_id, event_id, voter_ref, weight, round, easel, cast_at
		FROM vote_events
		WHERE event_id = $1 AND round = $2
		ORDER BY cast_at;
	`
	rows, err := r.DB.QueryContext(ctx, q, eventID, round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auction.VoteEvent
	for rows.Next() {
		var ev auction.VoteEvent
		if err := rows.Scan(&ev.ID, &ev.ArtworkID, &ev.EventID, &ev.VoterRef,
			&ev.Weight, &ev.Round, &ev.Easel, &ev.CastAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ListBidHistory é o passthrough de auditoria do admin: histórico bruto e
// ordenado de lances, sem passar pela agregação. O filtro por obra é opcional.
func (r *ReadRepo) ListBidHistory(ctx context.Context, eventID string, artworkID string) ([]dto.BidHistoryEntry, error) {
	const q = `
		SELECT id, artwork_id, amount, placed_at, seq, bidder_ref
		FROM bid_events
		WHERE event_id = $1 AND ($2 = '' OR artwork_id = $2)
		ORDER BY placed_at DESC, seq DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q, eventID, artworkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.BidHistoryEntry
	for rows.Next() {
		var e dto.BidHistoryEntry
		var amount decimal.Decimal
		if err := rows.Scan(&e.ID, &e.ArtworkID, &amount, &e.PlacedAt, &e.Seq, &e.BidderRef); err != nil {
			return nil, err
		}
		e.Amount = amount
		out = append(out, e)
	}
	return out, rows.Err()
}
