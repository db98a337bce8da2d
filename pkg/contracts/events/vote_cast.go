package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evento publicado no tópico "vote_cast".
// A unicidade (um voto por votante por rodada) é garantida a montante;
// o core não deduplica.
type VoteCast struct {
	ArtworkID string          `json:"artwork_id"`
	EventID   string          `json:"event_id"`
	VoterRef  string          `json:"voter_ref"`
	Weight    decimal.Decimal `json:"weight"`
	Round     int             `json:"round"`
	Easel     int             `json:"easel"`
	CastAt    time.Time       `json:"cast_at"`
}
