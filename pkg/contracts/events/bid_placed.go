package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evento publicado no tópico "bid_placed" pelos apps de lance.
// O worker de ingestão valida e grava no ledger; a admissão (valor mínimo)
// acontece lá, não no produtor.
type BidPlaced struct {
	ArtworkID string          `json:"artwork_id"`
	EventID   string          `json:"event_id"`
	Amount    decimal.Decimal `json:"amount"`
	BidderRef string          `json:"bidder_ref"`
	PlacedAt  time.Time       `json:"placed_at"`
}
