package events

import "time"

// Tipos de mudança carregados numa mensagem de invalidação.
const (
	ChangeBid  = "bid"
	ChangeVote = "vote"
	ChangeArt  = "art"
)

// Invalidation é a mensagem publicada no canal Redis Pub/Sub do evento após
// cada escrita bem-sucedida no ledger. Entrega at-least-once: consumidores
// usam Sequence (monotônica por evento) para descartar duplicatas e mensagens
// fora de ordem já superadas. A mensagem sinaliza "algo mudou, releia" —
// nunca carrega o novo estado.
type Invalidation struct {
	EventID    string    `json:"event_id"`
	ChangeType string    `json:"change_type"` // bid | vote | art
	ArtworkID  string    `json:"artwork_id,omitempty"`
	Round      int       `json:"round,omitempty"`
	Easel      int       `json:"easel,omitempty"`
	Sequence   int64     `json:"sequence"`
	EmittedAt  time.Time `json:"emitted_at"`
}
