package topics

const (
	// Lances e votos submetidos pelos apps públicos
	BidPlaced = "bid_placed"
	VoteCast  = "vote_cast"

	// Alterações de estado de obras (ativação, encerramento do leilão)
	ArtUpdated = "art_updated"

	// DLQs
	BidPlacedDLQ = "bid_placed_dlq"
	VoteCastDLQ  = "vote_cast_dlq"
)

// InvalidationChannel retorna o canal Redis Pub/Sub de invalidação de cache de um evento.
// Um canal lógico por evento; obra/rodada/cavalete viajam como campos da mensagem.
func InvalidationChannel(eventID string) string {
	return "auction_invalidate_" + eventID
}

// InvalidationSeqKey retorna a chave Redis usada para gerar a sequência
// monotônica de mensagens de invalidação de um evento (INCR).
func InvalidationSeqKey(eventID string) string {
	return "invalidation:seq:" + eventID
}
