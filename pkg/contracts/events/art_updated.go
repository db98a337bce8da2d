package events

import "time"

// Evento publicado no tópico "art_updated" quando o estado de uma obra muda
// (ativação para leilão, encerramento, troca de cavalete).
type ArtUpdated struct {
	ArtworkID string    `json:"artwork_id"`
	EventID   string    `json:"event_id"`
	Status    string    `json:"status"` // "active" | "closed" | "hidden"
	Round     int       `json:"round,omitempty"`
	Easel     int       `json:"easel,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
