package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidHistoryEntry é uma linha do histórico bruto servido ao console admin
type BidHistoryEntry struct {
	ID        string          `json:"id"`
	ArtworkID string          `json:"artwork_id"`
	Amount    decimal.Decimal `json:"amount"`
	PlacedAt  time.Time       `json:"placed_at"`
	Seq       int64           `json:"seq"`
	BidderRef string          `json:"bidder_ref"`
}

// BidHistoryResponse agrupa o histórico de um evento
type BidHistoryResponse struct {
	EventID   string            `json:"event_id"`
	ArtworkID string            `json:"artwork_id,omitempty"`
	Bids      []BidHistoryEntry `json:"bids"`
}

// ErrorResponse é o corpo de erro estruturado das APIs de leitura
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
