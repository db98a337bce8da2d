package auction

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ComputeLeader deriva o estado do líder de uma obra a partir dos lances do ledger.
// Função pura: sem efeitos colaterais, segura pra chamar concorrente e repetidamente,
// e independente da ordem do slice de entrada.
//
// CurrentBid = max(amount); CurrentBidCount = quantidade de lances (não de
// licitantes distintos). Quando dois lances empatam no valor máximo, o de
// PlacedAt mais antigo chegou primeiro àquele valor e define LeaderAsOf
// (Seq desempata timestamps idênticos).
//
// Registros históricos inválidos não derrubam o cálculo: são excluídos e
// contados em FlaggedCount.
func ComputeLeader(artworkID string, events []BidEvent) ArtworkLeaderState {
	state := ArtworkLeaderState{ArtworkID: artworkID}

	var best *BidEvent
	for i := range events {
		ev := &events[i]

		if !ev.Amount.IsPositive() || ev.PlacedAt.IsZero() {
			state.FlaggedCount++
			continue
		}

		state.CurrentBidCount++

		if best == nil {
			best = ev
			continue
		}
		switch cmp := ev.Amount.Cmp(best.Amount); {
		case cmp > 0:
			best = ev
		case cmp == 0:
			// empate no valor: o mais antigo foi o primeiro a alcançá-lo
			if ev.PlacedAt.Before(best.PlacedAt) ||
				(ev.PlacedAt.Equal(best.PlacedAt) && ev.Seq < best.Seq) {
				best = ev
			}
		}
	}

	if best != nil {
		amount := best.Amount
		asOf := best.PlacedAt
		state.CurrentBid = &amount
		state.LeaderAsOf = &asOf
	}

	return state
}

// ValidateBid faz a checagem de admissão de um lance novo, antes da escrita no
// ledger. O agregador em si nunca rejeita dado histórico retroativamente; essa
// checagem pertence ao caminho de escrita.
func ValidateBid(amount decimal.Decimal, minimum MinimumNextBid) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: bid amount %s is not positive", ErrInvalidInput, amount)
	}
	if amount.LessThan(minimum.MinimumAmount) {
		return fmt.Errorf("%w: bid amount %s below minimum %s",
			ErrInvalidInput, amount, minimum.MinimumAmount)
	}
	return nil
}
