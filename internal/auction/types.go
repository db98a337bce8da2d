package auction

import (
	"time"

	"github.com/shopspring/decimal"
)

// BidEvent é um lance individual já gravado no ledger (imutável).
// Ordenação: PlacedAt, com Seq (sequência de inserção) como desempate.
type BidEvent struct {
	ID        string
	ArtworkID string
	EventID   string
	Amount    decimal.Decimal
	PlacedAt  time.Time
	Seq       int64
	BidderRef string
}

// VoteEvent é um voto individual já gravado no ledger (imutável).
// Um votante pode votar em várias rodadas; o core não deduplica.
type VoteEvent struct {
	ID        string
	ArtworkID string
	EventID   string
	VoterRef  string
	Weight    decimal.Decimal
	Round     int
	Easel     int
	CastAt    time.Time
}

// ArtworkLeaderState é o estado derivado do líder de uma obra.
// Nunca é persistido: recalculado a cada leitura a partir do ledger,
// então não existe linha derivada que possa ficar obsoleta.
// CurrentBid nil significa "sem lances".
type ArtworkLeaderState struct {
	ArtworkID       string
	CurrentBid      *decimal.Decimal
	CurrentBidCount int
	LeaderAsOf      *time.Time

	// FlaggedCount conta registros históricos inválidos (valor não positivo,
	// timestamp ausente) excluídos do agregado. O ledger é append-only e
	// precisa continuar exibível mesmo se uma escrita ruim passou.
	FlaggedCount int
}

// MinimumNextBid é o lance mínimo aceitável derivado do líder atual.
type MinimumNextBid struct {
	MinimumAmount    decimal.Decimal
	Increment        decimal.Decimal
	IncrementPercent int
}

// PolicyConfig configura a política de lance mínimo de um evento.
type PolicyConfig struct {
	OpeningMinimum   decimal.Decimal
	IncrementFloor   decimal.Decimal
	IncrementPercent int

	// Casas decimais da menor unidade da moeda do evento (2 = centavos).
	MinorUnitPlaces int32
}

// TallyScope delimita a apuração de votos: rodada obrigatória, cavalete opcional.
type TallyScope struct {
	Round int
	Easel *int
}

// ArtworkVoteStanding é a posição de uma obra na apuração de uma rodada.
type ArtworkVoteStanding struct {
	ArtworkID     string
	RawVotes      int
	WeightedScore decimal.Decimal
	Rank          int
}
